package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"WORKSPACE_HTTP_PORT",
			"WORKSPACE_SQLITE_DSN",
			"WORKSPACE_SESSION_TTL",
			"WORKSPACE_SHUTDOWN_TIMEOUT",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:workspace.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("WORKSPACE_HTTP_PORT", "9090")
		t.Setenv("WORKSPACE_SQLITE_DSN", "file:/tmp/workspace.db")
		t.Setenv("WORKSPACE_SESSION_TTL", "12h")
		t.Setenv("WORKSPACE_SHUTDOWN_TIMEOUT", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/workspace.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Fatalf("expected shutdown timeout 30s, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("errors on invalid values", func(t *testing.T) {
		t.Setenv("WORKSPACE_HTTP_PORT", "not-a-port")
		t.Setenv("WORKSPACE_SESSION_TTL", "-5m")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"WORKSPACE_HTTP_PORT", "WORKSPACE_SESSION_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected error to name %s, got %q", key, err.Error())
			}
		}
	})
}
