package application

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: ErrUnauthorized, want: "forbidden"},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "invalid schedule", err: ErrInvalidSchedule, want: "invalid_schedule"},
		{name: "conflict", err: ErrConflict, want: "conflict"},
		{name: "already exists", err: ErrAlreadyExists, want: "already_exists"},
		{name: "invalid credentials", err: ErrInvalidCredentials, want: "invalid_credentials"},
		{name: "session expired", err: ErrSessionExpired, want: "session_expired"},
		{name: "session revoked", err: ErrSessionRevoked, want: "session_revoked"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"field": "bad"}}, want: "validation"},
		{name: "unknown", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
