package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Manager applies registered migrations to a database.
type Manager struct {
	db         *sql.DB
	migrations []Migration
}

// NewManager builds a Manager for the given database and migration set. A nil
// migration slice defaults to the embedded registry.
func NewManager(db *sql.DB, migrations []Migration) *Manager {
	if migrations == nil {
		migrations = Registry()
	}
	return &Manager{db: db, migrations: migrations}
}

// Apply runs all pending migrations in version order. Each migration executes
// inside its own transaction together with its schema_migrations record.
func (m *Manager) Apply(ctx context.Context) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("migration manager not configured")
	}

	ordered := make([]Migration, len(m.migrations))
	copy(ordered, m.migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Version == ordered[i-1].Version {
			return ErrOutOfOrder
		}
	}

	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	known := make(map[int]struct{}, len(ordered))
	for _, migration := range ordered {
		known[migration.Version] = struct{}{}
	}
	for version := range applied {
		if _, ok := known[version]; !ok {
			return fmt.Errorf("%w: version %d", ErrUnknownApplied, version)
		}
	}

	for _, migration := range ordered {
		if _, ok := applied[migration.Version]; ok {
			continue
		}
		if err := m.applyOne(ctx, migration); err != nil {
			return &ApplyError{Version: migration.Version, Name: migration.Name, Err: err}
		}
	}

	return nil
}

// Applied returns the migration records stored in the database.
func (m *Manager) Applied(ctx context.Context) ([]Record, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var appliedAt string
		if err := rows.Scan(&record.Version, &record.Name, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, fmt.Errorf("failed to parse applied_at: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (m *Manager) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func (m *Manager) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func (m *Manager) applyOne(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("execution failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		migration.Version, migration.Name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("recording failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
