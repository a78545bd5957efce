package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/workspace-sessions/internal/persistence/sqlite/migration"
)

// Storage bundles the SQLite backed repositories behind one database handle.
// It implements every repository interface in the persistence package.
type Storage struct {
	*WorkspaceRepository
	*UserRepository
	*RoleRepository
	*SessionTypeRepository
	*ScheduleRepository
	*SessionRepository
	*AuthSessionRepository

	pool *ConnectionPool
}

// Open connects to the SQLite database at the given DSN.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		WorkspaceRepository:   NewWorkspaceRepository(pool),
		UserRepository:        NewUserRepository(pool),
		RoleRepository:        NewRoleRepository(pool),
		SessionTypeRepository: NewSessionTypeRepository(pool),
		ScheduleRepository:    NewScheduleRepository(pool),
		SessionRepository:     NewSessionRepository(pool),
		AuthSessionRepository: NewAuthSessionRepository(pool),
		pool:                  pool,
	}, nil
}

// Migrate applies all pending schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return migration.NewManager(s.pool.DB(), nil).Apply(ctx)
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DB exposes the underlying handle for tests and maintenance tooling.
func (s *Storage) DB() *sql.DB {
	return s.pool.DB()
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}
