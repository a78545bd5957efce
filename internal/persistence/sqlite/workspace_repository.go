package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// WorkspaceRepository implements persistence.WorkspaceRepository using SQLite.
type WorkspaceRepository struct {
	pool *ConnectionPool
}

// NewWorkspaceRepository creates a new SQLite workspace repository.
func NewWorkspaceRepository(pool *ConnectionPool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// CreateWorkspace inserts a new workspace.
func (r *WorkspaceRepository) CreateWorkspace(ctx context.Context, workspace persistence.Workspace) error {
	if workspace.ID <= 0 || workspace.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if workspace.CreatedAt.IsZero() {
		workspace.CreatedAt = now
	}
	workspace.UpdatedAt = now

	_, err := r.pool.DB().ExecContext(ctx,
		"INSERT INTO workspaces (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		workspace.ID,
		workspace.Name,
		formatTime(workspace.CreatedAt),
		formatTime(workspace.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// GetWorkspace retrieves a workspace by id.
func (r *WorkspaceRepository) GetWorkspace(ctx context.Context, id int64) (persistence.Workspace, error) {
	if id <= 0 {
		return persistence.Workspace{}, persistence.ErrNotFound
	}

	var workspace persistence.Workspace
	var createdAt, updatedAt string
	err := r.pool.DB().QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM workspaces WHERE id = ?", id,
	).Scan(&workspace.ID, &workspace.Name, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Workspace{}, mapSQLiteError(err)
	}

	if workspace.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Workspace{}, err
	}
	if workspace.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Workspace{}, err
	}
	return workspace, nil
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("invalid stored timestamp: " + value)
	}
	return ts, nil
}

func formatNullableTime(ts *time.Time) sql.NullString {
	if ts == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*ts), Valid: true}
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	ts, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
