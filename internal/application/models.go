package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID int64
}

// Role represents a workspace-scoped role held by a user.
type Role struct {
	ID          string
	WorkspaceID int64
	Name        string
	IsOwnerRole bool
	Permissions []string
}

// SessionType represents a category of recurring session.
type SessionType struct {
	ID             string
	WorkspaceID    int64
	Name           string
	HostingRoleIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Schedule represents a recurring weekly session template. Hour and Minute
// are UTC wall-clock values.
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

// Session represents one concrete dated occurrence of a session type.
type Session struct {
	ID            string
	SessionTypeID string
	Date          time.Time
	OwnerID       *int64
	StartedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionWithType pairs a session instance with its session type so callers
// can render and authorize against the hosting roles.
type SessionWithType struct {
	Session Session
	Type    SessionType
}

// ClaimSessionParams wraps the data required to claim a session occurrence.
type ClaimSessionParams struct {
	Principal   Principal
	WorkspaceID int64
	ScheduleID  string
	Date        time.Time
}

// ClaimResult captures the outcome of a committed claim.
type ClaimResult struct {
	Session Session
	Type    SessionType
}

// ScheduleInput captures caller provided schedule template fields.
type ScheduleInput struct {
	SessionTypeID string
	Weekdays      []time.Weekday
	Hour          int
	Minute        int
}

// CreateScheduleParams wraps the data required to author a schedule.
type CreateScheduleParams struct {
	Principal   Principal
	WorkspaceID int64
	Input       ScheduleInput
}

// SessionTypeInput captures caller provided session type fields.
type SessionTypeInput struct {
	Name           string
	HostingRoleIDs []string
}

// CreateSessionTypeParams wraps the data required to create a session type.
type CreateSessionTypeParams struct {
	Principal   Principal
	WorkspaceID int64
	Input       SessionTypeInput
}

// ListSessionsParams wraps the data required to list session instances.
type ListSessionsParams struct {
	Principal   Principal
	WorkspaceID int64
	From        *time.Time
	To          *time.Time
}

// User represents a member account exposed by the application services.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User      User
	TokenHash string
}

// AuthSession represents an authenticated bearer session issued to a user.
type AuthSession struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	UserID int64
	Token  string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User    User
	Session AuthSession
}
