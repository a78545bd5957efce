package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// SessionTypeRepository implements persistence.SessionTypeRepository using
// SQLite. Hosting role links live in the session_type_hosting_roles join table
// and are written together with the type in one transaction.
type SessionTypeRepository struct {
	pool *ConnectionPool
}

// NewSessionTypeRepository creates a new SQLite session type repository.
func NewSessionTypeRepository(pool *ConnectionPool) *SessionTypeRepository {
	return &SessionTypeRepository{pool: pool}
}

// CreateSessionType inserts a session type and its hosting role links.
func (r *SessionTypeRepository) CreateSessionType(ctx context.Context, sessionType persistence.SessionType) error {
	if sessionType.ID == "" || sessionType.WorkspaceID <= 0 || sessionType.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if sessionType.CreatedAt.IsZero() {
		sessionType.CreatedAt = now
	}
	sessionType.UpdatedAt = now

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_types (id, workspace_id, name, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			sessionType.ID,
			sessionType.WorkspaceID,
			sessionType.Name,
			formatTime(sessionType.CreatedAt),
			formatTime(sessionType.UpdatedAt),
		)
		if err != nil {
			return err
		}

		for _, roleID := range sessionType.HostingRoleIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO session_type_hosting_roles (session_type_id, role_id) VALUES (?, ?)",
				sessionType.ID, roleID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return mapSQLiteError(err)
}

// GetSessionType retrieves a session type with its hosting role ids.
func (r *SessionTypeRepository) GetSessionType(ctx context.Context, id string) (persistence.SessionType, error) {
	if id == "" {
		return persistence.SessionType{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, workspace_id, name, created_at, updated_at
		 FROM session_types WHERE id = ?`, id)
	sessionType, err := scanSessionType(row)
	if err != nil {
		return persistence.SessionType{}, err
	}

	if sessionType.HostingRoleIDs, err = r.hostingRoleIDs(ctx, id); err != nil {
		return persistence.SessionType{}, err
	}
	return sessionType, nil
}

// ListSessionTypes returns all session types in a workspace ordered by
// creation time, each with its hosting role ids attached.
func (r *SessionTypeRepository) ListSessionTypes(ctx context.Context, workspaceID int64) ([]persistence.SessionType, error) {
	if workspaceID <= 0 {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, workspace_id, name, created_at, updated_at
		 FROM session_types WHERE workspace_id = ?
		 ORDER BY created_at ASC, id ASC`, workspaceID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var sessionTypes []persistence.SessionType
	for rows.Next() {
		sessionType, err := scanSessionType(rows)
		if err != nil {
			return nil, err
		}
		sessionTypes = append(sessionTypes, sessionType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessionTypes {
		if sessionTypes[i].HostingRoleIDs, err = r.hostingRoleIDs(ctx, sessionTypes[i].ID); err != nil {
			return nil, err
		}
	}
	return sessionTypes, nil
}

// DeleteSessionType removes a session type. Hosting role links, schedules and
// materialized sessions cascade.
func (r *SessionTypeRepository) DeleteSessionType(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM session_types WHERE id = ?", id)
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

func (r *SessionTypeRepository) hostingRoleIDs(ctx context.Context, sessionTypeID string) ([]string, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT role_id FROM session_type_hosting_roles
		 WHERE session_type_id = ? ORDER BY role_id ASC`, sessionTypeID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var roleIDs []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, mapSQLiteError(err)
		}
		roleIDs = append(roleIDs, roleID)
	}
	return roleIDs, rows.Err()
}

func scanSessionType(row rowScanner) (persistence.SessionType, error) {
	var sessionType persistence.SessionType
	var createdAt, updatedAt string
	err := row.Scan(&sessionType.ID, &sessionType.WorkspaceID, &sessionType.Name, &createdAt, &updatedAt)
	if err != nil {
		return persistence.SessionType{}, mapSQLiteError(err)
	}

	if sessionType.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.SessionType{}, err
	}
	if sessionType.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.SessionType{}, err
	}
	return sessionType, nil
}
