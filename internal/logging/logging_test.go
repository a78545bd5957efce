package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil logger from empty context, got %v", got)
	}

	logger := NewJSONLogger(&bytes.Buffer{}, slog.LevelInfo)
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatal("expected the attached logger to round-trip")
	}
}

func TestNewJSONLoggerEmitsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)
	logger.Info("started", "port", 8080)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "started" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
}
