package persistence

import "time"

// Workspace represents a tenant (one managed group) in the storage layer.
type Workspace struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User represents a member account. The ID is the platform user identifier.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	TokenHash   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Role represents a workspace-scoped role with its permission set.
type Role struct {
	ID          string
	WorkspaceID int64
	Name        string
	IsOwnerRole bool
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionType represents a category of recurring session and the roles
// authorized to host it.
type SessionType struct {
	ID             string
	WorkspaceID    int64
	Name           string
	HostingRoleIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Schedule represents a recurring weekly session template. Hour and Minute
// are UTC wall-clock values. WorkspaceID is resolved from the owning session
// type on reads and ignored on writes.
type Schedule struct {
	ID            string
	SessionTypeID string
	WorkspaceID   int64
	Weekdays      []time.Weekday
	Hour          int
	Minute        int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents one concrete dated occurrence materialized from a
// schedule. Date is the canonical UTC instant and, together with
// SessionTypeID, forms the natural uniqueness key.
type Session struct {
	ID            string
	SessionTypeID string
	Date          time.Time
	OwnerID       *int64
	StartedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuthSession represents a bearer-token login session persisted for a user.
type AuthSession struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
