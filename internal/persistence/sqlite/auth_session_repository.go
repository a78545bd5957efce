package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// AuthSessionRepository implements persistence.AuthSessionRepository using
// SQLite.
type AuthSessionRepository struct {
	pool *ConnectionPool
}

// NewAuthSessionRepository creates a new SQLite auth session repository.
func NewAuthSessionRepository(pool *ConnectionPool) *AuthSessionRepository {
	return &AuthSessionRepository{pool: pool}
}

// CreateAuthSession inserts a login session and returns the persisted row.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session persistence.AuthSession) (persistence.AuthSession, error) {
	if session.ID == "" || session.UserID <= 0 || session.Token == "" {
		return persistence.AuthSession{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO auth_sessions (id, user_id, token, expires_at, revoked_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatNullableTime(session.RevokedAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.AuthSession{}, mapSQLiteError(err)
	}
	return session, nil
}

// GetAuthSession retrieves a login session by its bearer token.
func (r *AuthSessionRepository) GetAuthSession(ctx context.Context, token string) (persistence.AuthSession, error) {
	if token == "" {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, revoked_at, created_at, updated_at
		 FROM auth_sessions WHERE token = ?`, token)
	return scanAuthSession(row)
}

// RevokeAuthSession stamps a login session revoked and returns the updated
// row. Revoking twice keeps the earliest revocation time.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (persistence.AuthSession, error) {
	if token == "" {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`UPDATE auth_sessions
		 SET revoked_at = COALESCE(revoked_at, ?), updated_at = ?
		 WHERE token = ?
		 RETURNING id, user_id, token, expires_at, revoked_at, created_at, updated_at`,
		formatTime(revokedAt), formatTime(time.Now().UTC()), token)
	return scanAuthSession(row)
}

// DeleteExpiredAuthSessions removes every login session that expired at or
// before the reference instant.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.DB().ExecContext(ctx,
		"DELETE FROM auth_sessions WHERE expires_at <= ?", formatTime(reference))
	return mapSQLiteError(err)
}

func scanAuthSession(row rowScanner) (persistence.AuthSession, error) {
	var session persistence.AuthSession
	var revokedAt sql.NullString
	var expiresAt, createdAt, updatedAt string
	err := row.Scan(&session.ID, &session.UserID, &session.Token, &expiresAt, &revokedAt, &createdAt, &updatedAt)
	if err != nil {
		return persistence.AuthSession{}, mapSQLiteError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	return session, nil
}
