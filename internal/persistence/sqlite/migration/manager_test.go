package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.TempDir()+"/migrations.db?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManager_Apply(t *testing.T) {
	t.Run("applies the embedded registry", func(t *testing.T) {
		db := openTestDB(t)
		manager := NewManager(db, nil)

		if err := manager.Apply(context.Background()); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		records, err := manager.Applied(context.Background())
		if err != nil {
			t.Fatalf("Applied returned error: %v", err)
		}
		if len(records) != len(Registry()) {
			t.Fatalf("expected %d applied migrations, got %d", len(Registry()), len(records))
		}

		// Spot check that the uniqueness constraint backing the claim upsert
		// made it into the schema.
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_sessions_type_date'").Scan(&name)
		if err != nil {
			t.Fatalf("expected idx_sessions_type_date to exist: %v", err)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		db := openTestDB(t)
		manager := NewManager(db, nil)

		if err := manager.Apply(context.Background()); err != nil {
			t.Fatalf("first Apply returned error: %v", err)
		}
		if err := manager.Apply(context.Background()); err != nil {
			t.Fatalf("second Apply returned error: %v", err)
		}
	})

	t.Run("applies only pending migrations", func(t *testing.T) {
		db := openTestDB(t)
		first := []Migration{{Version: 1, Name: "one", SQL: "CREATE TABLE one (id INTEGER PRIMARY KEY)"}}
		if err := NewManager(db, first).Apply(context.Background()); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		both := append(first, Migration{Version: 2, Name: "two", SQL: "CREATE TABLE two (id INTEGER PRIMARY KEY)"})
		if err := NewManager(db, both).Apply(context.Background()); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		for _, table := range []string{"one", "two"} {
			var name string
			if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name); err != nil {
				t.Fatalf("expected table %q to exist: %v", table, err)
			}
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		db := openTestDB(t)
		migrations := []Migration{
			{Version: 1, Name: "one", SQL: "CREATE TABLE one (id INTEGER PRIMARY KEY)"},
			{Version: 1, Name: "dup", SQL: "CREATE TABLE dup (id INTEGER PRIMARY KEY)"},
		}

		err := NewManager(db, migrations).Apply(context.Background())
		if !errors.Is(err, ErrOutOfOrder) {
			t.Fatalf("expected ErrOutOfOrder, got %v", err)
		}
	})

	t.Run("rejects unknown applied versions", func(t *testing.T) {
		db := openTestDB(t)
		applied := []Migration{
			{Version: 1, Name: "one", SQL: "CREATE TABLE one (id INTEGER PRIMARY KEY)"},
			{Version: 2, Name: "two", SQL: "CREATE TABLE two (id INTEGER PRIMARY KEY)"},
		}
		if err := NewManager(db, applied).Apply(context.Background()); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		err := NewManager(db, applied[:1]).Apply(context.Background())
		if !errors.Is(err, ErrUnknownApplied) {
			t.Fatalf("expected ErrUnknownApplied, got %v", err)
		}
	})

	t.Run("rolls back failed migrations", func(t *testing.T) {
		db := openTestDB(t)
		migrations := []Migration{
			{Version: 1, Name: "broken", SQL: "CREATE TABLE broken (id INTEGER PRIMARY KEY); INVALID SQL"},
		}

		err := NewManager(db, migrations).Apply(context.Background())
		var applyErr *ApplyError
		if !errors.As(err, &applyErr) {
			t.Fatalf("expected ApplyError, got %v", err)
		}
		if applyErr.Version != 1 {
			t.Fatalf("expected version 1 in error, got %d", applyErr.Version)
		}

		records, recErr := NewManager(db, migrations).Applied(context.Background())
		if recErr != nil {
			t.Fatalf("Applied returned error: %v", recErr)
		}
		if len(records) != 0 {
			t.Fatalf("expected no applied records after rollback, got %d", len(records))
		}
	})
}

func TestRegistryOrdering(t *testing.T) {
	t.Parallel()

	registry := Registry()
	if len(registry) == 0 {
		t.Fatal("expected at least one registered migration")
	}
	for i, migration := range registry {
		if want := i + 1; migration.Version != want {
			t.Fatalf("expected version %d at position %d, got %d", want, i, migration.Version)
		}
		if migration.Name == "" || migration.SQL == "" {
			t.Fatalf("migration %d is missing a name or SQL", migration.Version)
		}
	}
}

func TestApplyErrorMessage(t *testing.T) {
	t.Parallel()

	underlying := errors.New("boom")
	err := &ApplyError{Version: 3, Name: "add index", Err: underlying}
	if got := err.Error(); got != fmt.Sprintf("migration 3 (add index) failed: %v", underlying) {
		t.Fatalf("unexpected message: %q", got)
	}
	if !errors.Is(err, underlying) {
		t.Fatal("expected ApplyError to unwrap to the underlying error")
	}
}
