package migration

import "time"

// Migration is a single versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Record captures an applied migration as stored in schema_migrations.
type Record struct {
	Version   int
	Name      string
	AppliedAt time.Time
}
