package persistence

import "context"
import "time"

// WorkspaceRepository exposes lookups for tenant workspaces.
type WorkspaceRepository interface {
	CreateWorkspace(ctx context.Context, workspace Workspace) error
	GetWorkspace(ctx context.Context, id int64) (Workspace, error)
}

// UserRepository exposes CRUD operations for member accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// RoleRepository stores workspace roles and user assignments.
type RoleRepository interface {
	CreateRole(ctx context.Context, role Role) error
	GetRole(ctx context.Context, id string) (Role, error)
	ListWorkspaceRoles(ctx context.Context, workspaceID int64) ([]Role, error)
	// ListUserRoles returns the roles a user holds within a workspace,
	// ordered owner-flagged roles first.
	ListUserRoles(ctx context.Context, userID int64, workspaceID int64) ([]Role, error)
	AssignRole(ctx context.Context, userID int64, roleID string) error
	UnassignRole(ctx context.Context, userID int64, roleID string) error
}

// SessionTypeRepository stores session type catalog entries.
type SessionTypeRepository interface {
	CreateSessionType(ctx context.Context, sessionType SessionType) error
	GetSessionType(ctx context.Context, id string) (SessionType, error)
	ListSessionTypes(ctx context.Context, workspaceID int64) ([]SessionType, error)
	DeleteSessionType(ctx context.Context, id string) error
}

// ScheduleRepository stores recurring weekly schedule templates.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, workspaceID int64) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// SessionFilter narrows session instance queries.
type SessionFilter struct {
	WorkspaceID int64
	From        *time.Time
	To          *time.Time
}

// SessionRepository stores materialized session instances. The store enforces
// a uniqueness constraint on (session_type_id, date); UpsertSession relies on
// it to make find-or-create atomic.
type SessionRepository interface {
	// UpsertSession inserts the session or, when a row already exists for
	// (SessionTypeID, Date), overwrites that row's owner. The stored Date and
	// StartedAt of an existing row are preserved. Returns the resulting row.
	UpsertSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	FindSessionByInstant(ctx context.Context, sessionTypeID string, date time.Time) (Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
}

// AuthSessionRepository stores bearer-token login session state.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}
