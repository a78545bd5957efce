package sqlite

import (
	"context"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool *ConnectionPool
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new member account.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID <= 0 || user.Username == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, token_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.DisplayName,
		user.TokenHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return mapSQLiteError(err)
}

// UpdateUser overwrites the mutable fields of an existing account.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID <= 0 {
		return persistence.ErrNotFound
	}

	result, err := r.pool.DB().ExecContext(ctx,
		`UPDATE users SET username = ?, display_name = ?, token_hash = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.DisplayName,
		user.TokenHash,
		formatTime(time.Now().UTC()),
		user.ID,
	)
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

// GetUser retrieves an account by id.
func (r *UserRepository) GetUser(ctx context.Context, id int64) (persistence.User, error) {
	if id <= 0 {
		return persistence.User{}, persistence.ErrNotFound
	}

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, username, display_name, token_hash, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns all accounts ordered by id.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, username, display_name, token_hash, created_at, updated_at
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes an account by id.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return persistence.ErrNotFound
	}

	result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string
	err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.TokenHash, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapSQLiteError(err)
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
