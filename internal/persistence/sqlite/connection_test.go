package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/example/workspace-sessions/internal/persistence"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      4 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetryHelperWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries lock contention until the operation succeeds", func(t *testing.T) {
		helper := NewRetryHelper(testRetryConfig())

		attempts := 0
		err := helper.WithRetry(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected the retried operation to succeed: %v", err)
		}
		if attempts != 3 {
			t.Fatalf("expected 3 attempts, got %d", attempts)
		}
	})

	t.Run("gives up after the retry budget is exhausted", func(t *testing.T) {
		helper := NewRetryHelper(testRetryConfig())

		attempts := 0
		err := helper.WithRetry(ctx, func() error {
			attempts++
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		})
		if err == nil {
			t.Fatal("expected an error after exhausting retries")
		}
		if attempts != 4 {
			t.Fatalf("expected 4 attempts (initial plus 3 retries), got %d", attempts)
		}
	})

	t.Run("does not retry constraint violations", func(t *testing.T) {
		helper := NewRetryHelper(testRetryConfig())

		attempts := 0
		err := helper.WithRetry(ctx, func() error {
			attempts++
			return errors.New("UNIQUE constraint failed: sessions.session_type_id, sessions.date")
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if attempts != 1 {
			t.Fatalf("expected a single attempt, got %d", attempts)
		}
	})

	t.Run("does not retry missing rows", func(t *testing.T) {
		helper := NewRetryHelper(testRetryConfig())

		attempts := 0
		err := helper.WithRetry(ctx, func() error {
			attempts++
			return sql.ErrNoRows
		})
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if attempts != 1 {
			t.Fatalf("expected a single attempt, got %d", attempts)
		}
	})

	t.Run("stops waiting when the context is cancelled", func(t *testing.T) {
		helper := NewRetryHelper(testRetryConfig())
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := helper.WithRetry(cancelled, func() error {
			attempts++
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if attempts != 1 {
			t.Fatalf("expected a single attempt before the cancelled wait, got %d", attempts)
		}
	})
}

func TestConnectionPoolPing(t *testing.T) {
	pool, err := NewConnectionPool("file:" + t.TempDir() + "/ping.db")
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("expected the open pool to answer a ping: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("failed to close pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err == nil {
		t.Fatal("expected a ping against a closed pool to fail")
	}
}
