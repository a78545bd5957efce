package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// RoleRepository implements persistence.RoleRepository using SQLite. Permission
// sets are stored as a comma separated list; permission names never contain
// commas.
type RoleRepository struct {
	pool *ConnectionPool
}

// NewRoleRepository creates a new SQLite role repository.
func NewRoleRepository(pool *ConnectionPool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// CreateRole inserts a new workspace role.
func (r *RoleRepository) CreateRole(ctx context.Context, role persistence.Role) error {
	if role.ID == "" || role.WorkspaceID <= 0 || role.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO roles (id, workspace_id, name, is_owner_role, permissions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		role.ID,
		role.WorkspaceID,
		role.Name,
		boolToInt(role.IsOwnerRole),
		encodePermissions(role.Permissions),
		formatTime(role.CreatedAt),
		formatTime(role.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// GetRole retrieves a role by id.
func (r *RoleRepository) GetRole(ctx context.Context, id string) (persistence.Role, error) {
	if id == "" {
		return persistence.Role{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, workspace_id, name, is_owner_role, permissions, created_at, updated_at
		 FROM roles WHERE id = ?`, id)
	return scanRole(row)
}

// ListWorkspaceRoles returns every role defined in a workspace, owner roles
// first, then by id.
func (r *RoleRepository) ListWorkspaceRoles(ctx context.Context, workspaceID int64) ([]persistence.Role, error) {
	if workspaceID <= 0 {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, workspace_id, name, is_owner_role, permissions, created_at, updated_at
		 FROM roles WHERE workspace_id = ?
		 ORDER BY is_owner_role DESC, id ASC`, workspaceID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

// ListUserRoles returns the roles a user holds within a workspace, owner roles
// first, then by id. The ordering lets callers resolve the user's effective
// role by taking the first element.
func (r *RoleRepository) ListUserRoles(ctx context.Context, userID int64, workspaceID int64) ([]persistence.Role, error) {
	if userID <= 0 || workspaceID <= 0 {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT r.id, r.workspace_id, r.name, r.is_owner_role, r.permissions, r.created_at, r.updated_at
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ? AND r.workspace_id = ?
		 ORDER BY r.is_owner_role DESC, r.id ASC`, userID, workspaceID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()
	return collectRoles(rows)
}

// AssignRole grants a role to a user. Assigning an already held role is a
// no-op.
func (r *RoleRepository) AssignRole(ctx context.Context, userID int64, roleID string) error {
	if userID <= 0 || roleID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)
		 ON CONFLICT(user_id, role_id) DO NOTHING`,
		userID, roleID)
	return mapSQLiteError(err)
}

// UnassignRole revokes a role from a user.
func (r *RoleRepository) UnassignRole(ctx context.Context, userID int64, roleID string) error {
	if userID <= 0 || roleID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.DB().ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id = ? AND role_id = ?", userID, roleID)
	if err != nil {
		return mapSQLiteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanRole(row rowScanner) (persistence.Role, error) {
	var role persistence.Role
	var isOwner int
	var permissions, createdAt, updatedAt string
	err := row.Scan(&role.ID, &role.WorkspaceID, &role.Name, &isOwner, &permissions, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Role{}, mapSQLiteError(err)
	}

	role.IsOwnerRole = isOwner != 0
	role.Permissions = decodePermissions(permissions)
	if role.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Role{}, err
	}
	if role.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Role{}, err
	}
	return role, nil
}

func collectRoles(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]persistence.Role, error) {
	var roles []persistence.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func encodePermissions(permissions []string) string {
	return strings.Join(permissions, ",")
}

func decodePermissions(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
