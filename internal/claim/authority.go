package claim

import (
	"errors"
	"sort"
)

// PermissionAdmin is the workspace permission that grants hosting authority
// for every session type.
const PermissionAdmin = "admin"

// Role is a workspace-scoped role held by a user.
type Role struct {
	ID          string
	IsOwnerRole bool
	Permissions []string
}

// SessionType describes a category of recurring session and the roles that
// are allowed to host it.
type SessionType struct {
	ID             string
	HostingRoleIDs []string
}

// ErrNotAuthorized indicates the acting role carries no hosting authority for
// the session type.
var ErrNotAuthorized = errors.New("claim: role is not authorized to host this session")

// EffectiveRole resolves the role that determines a user's authority within a
// workspace. Owner-flagged roles take precedence over any other assignment;
// remaining ties break on role ID so the result is stable regardless of input
// order. The boolean is false when the user holds no role at all, which
// callers must treat as no authority.
func EffectiveRole(roles []Role) (Role, bool) {
	if len(roles) == 0 {
		return Role{}, false
	}

	ordered := make([]Role, len(roles))
	copy(ordered, roles)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].IsOwnerRole != ordered[j].IsOwnerRole {
			return ordered[i].IsOwnerRole
		}
		return ordered[i].ID < ordered[j].ID
	})

	return ordered[0], true
}

// Authorize reports whether the role may claim (host) a session of the given
// type. Authority is granted when any of the following hold: the role is the
// workspace owner role, the role carries the admin permission, or the role is
// listed in the session type's hosting roles.
func Authorize(role Role, sessionType SessionType) error {
	if role.IsOwnerRole {
		return nil
	}
	for _, permission := range role.Permissions {
		if permission == PermissionAdmin {
			return nil
		}
	}
	for _, hostingRoleID := range sessionType.HostingRoleIDs {
		if hostingRoleID != "" && hostingRoleID == role.ID {
			return nil
		}
	}
	return ErrNotAuthorized
}
