package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfOrder is returned when the registry contains versions that are
	// not strictly increasing.
	ErrOutOfOrder = errors.New("migration versions must be strictly increasing")
	// ErrUnknownApplied is returned when the database records a migration the
	// registry no longer contains.
	ErrUnknownApplied = errors.New("database contains a migration unknown to this build")
)

// ApplyError wraps a failure while executing a specific migration.
type ApplyError struct {
	Version int
	Name    string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
