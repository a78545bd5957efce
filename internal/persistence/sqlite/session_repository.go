package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
// The idx_sessions_type_date unique index makes the claim upsert atomic: two
// racing claims for the same instant land on the same row.
type SessionRepository struct {
	pool  *ConnectionPool
	retry *RetryHelper
}

// NewSessionRepository creates a new SQLite session repository. The claim
// upsert is retried with backoff while the database reports lock contention.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, retry: NewRetryHelper(DefaultRetryConfig())}
}

// UpsertSession inserts a session row or, when one already exists for the
// (session type, date) pair, overwrites that row's owner. The existing row's
// id, date and started_at are preserved.
func (r *SessionRepository) UpsertSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.SessionTypeID == "" || session.Date.IsZero() {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = session.Date
	}
	session.UpdatedAt = now

	var stored persistence.Session
	err := r.retry.WithRetry(ctx, func() error {
		row := r.pool.DB().QueryRowContext(ctx,
			`INSERT INTO sessions (id, session_type_id, date, owner_id, started_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(session_type_id, date) DO UPDATE SET
				owner_id = excluded.owner_id,
				updated_at = excluded.updated_at
			 RETURNING id, session_type_id, date, owner_id, started_at, created_at, updated_at`,
			session.ID,
			session.SessionTypeID,
			formatTime(session.Date),
			nullableInt64(session.OwnerID),
			formatTime(session.StartedAt),
			formatTime(session.CreatedAt),
			formatTime(session.UpdatedAt),
		)
		var scanErr error
		stored, scanErr = scanSession(row)
		return scanErr
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return stored, nil
}

// GetSession retrieves a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, session_type_id, date, owner_id, started_at, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// FindSessionByInstant retrieves the session materialized for a session type
// at an exact instant.
func (r *SessionRepository) FindSessionByInstant(ctx context.Context, sessionTypeID string, date time.Time) (persistence.Session, error) {
	if sessionTypeID == "" || date.IsZero() {
		return persistence.Session{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, session_type_id, date, owner_id, started_at, created_at, updated_at
		 FROM sessions WHERE session_type_id = ? AND date = ?`,
		sessionTypeID, formatTime(date))
	return scanSession(row)
}

// ListSessions returns a workspace's sessions ordered by date, optionally
// bounded by the filter's inclusive From and To instants.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.Session, error) {
	if filter.WorkspaceID <= 0 {
		return nil, persistence.ErrNotFound
	}

	query := `SELECT s.id, s.session_type_id, s.date, s.owner_id, s.started_at, s.created_at, s.updated_at
		 FROM sessions s
		 JOIN session_types st ON st.id = s.session_type_id
		 WHERE st.workspace_id = ?`
	args := []any{filter.WorkspaceID}
	if filter.From != nil {
		query += " AND s.date >= ?"
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		query += " AND s.date <= ?"
		args = append(args, formatTime(*filter.To))
	}
	query += " ORDER BY s.date ASC, s.id ASC"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var ownerID sql.NullInt64
	var date, startedAt, createdAt, updatedAt string
	err := row.Scan(&session.ID, &session.SessionTypeID, &date, &ownerID, &startedAt, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}

	if ownerID.Valid {
		session.OwnerID = &ownerID.Int64
	}
	if session.Date, err = parseTime(date); err != nil {
		return persistence.Session{}, err
	}
	if session.StartedAt, err = parseTime(startedAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

func nullableInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}
