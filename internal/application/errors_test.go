package application

import (
	"errors"
	"testing"

	"github.com/example/workspace-sessions/internal/persistence"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if (&ValidationError{}).HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if !(&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_Add(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}
}

func TestMapRepoError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil passes through", in: nil, want: nil},
		{name: "repo not found", in: persistence.ErrNotFound, want: ErrNotFound},
		{name: "application not found", in: ErrNotFound, want: ErrNotFound},
		{name: "duplicate", in: persistence.ErrDuplicate, want: ErrAlreadyExists},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mapRepoError(tt.in); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("foreign key violations become validation errors", func(t *testing.T) {
		t.Parallel()
		var vErr *ValidationError
		if !errors.As(mapRepoError(persistence.ErrForeignKeyViolation), &vErr) {
			t.Fatal("expected a ValidationError")
		}
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		t.Parallel()
		underlying := errors.New("boom")
		if got := mapRepoError(underlying); !errors.Is(got, underlying) {
			t.Fatalf("expected passthrough, got %v", got)
		}
	})
}
