package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workspace-sessions/internal/application"
	"github.com/example/workspace-sessions/internal/persistence"
)

var (
	userCounter        uint64
	roleCounter        uint64
	sessionTypeCounter uint64
	scheduleCounter    uint64
	sessionCounter     uint64
	authSessionCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// DefaultWorkspaceID is the workspace all fixtures attach to unless overridden.
const DefaultWorkspaceID int64 = 1

// NewWorkspace returns a deterministic workspace record.
func NewWorkspace() persistence.Workspace {
	return persistence.Workspace{
		ID:        DefaultWorkspaceID,
		Name:      "Workspace 001",
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic member account that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID          int64
	Username    string
	DisplayName string
	TokenHash   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:          int64(1000 + idx),
		Username:    fmt.Sprintf("member-%03d", idx),
		DisplayName: fmt.Sprintf("Member %03d", idx),
		TokenHash:   fmt.Sprintf("hash-%03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id int64) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserTokenHash overrides the generated token hash.
func WithUserTokenHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.TokenHash = hash
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Username:    f.Username,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:      f.Application(),
		TokenHash: f.TokenHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Username:    f.Username,
		DisplayName: f.DisplayName,
		TokenHash:   f.TokenHash,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Role fixtures -----------------------------

// RoleFixture represents a deterministic workspace role.
type RoleFixture struct {
	ID          string
	WorkspaceID int64
	Name        string
	IsOwnerRole bool
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleOption configures the generated role fixture.
type RoleOption func(*RoleFixture)

// NewRoleFixture returns a deterministic role fixture with optional overrides.
func NewRoleFixture(opts ...RoleOption) RoleFixture {
	idx := atomic.AddUint64(&roleCounter, 1)
	fixture := RoleFixture{
		ID:          fmt.Sprintf("role-%03d", idx),
		WorkspaceID: DefaultWorkspaceID,
		Name:        fmt.Sprintf("Role %03d", idx),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoleID overrides the generated role ID.
func WithRoleID(id string) RoleOption {
	return func(f *RoleFixture) {
		f.ID = id
	}
}

// WithRoleWorkspace sets the owning workspace.
func WithRoleWorkspace(workspaceID int64) RoleOption {
	return func(f *RoleFixture) {
		f.WorkspaceID = workspaceID
	}
}

// WithRoleName overrides the generated role name.
func WithRoleName(name string) RoleOption {
	return func(f *RoleFixture) {
		f.Name = name
	}
}

// AsOwnerRole marks the role as the workspace owner role.
func AsOwnerRole() RoleOption {
	return func(f *RoleFixture) {
		f.IsOwnerRole = true
	}
}

// WithRolePermissions sets the permission names granted by the role.
func WithRolePermissions(permissions ...string) RoleOption {
	return func(f *RoleFixture) {
		f.Permissions = append([]string(nil), permissions...)
	}
}

// Application returns the fixture as an application.Role value.
func (f RoleFixture) Application() application.Role {
	return application.Role{
		ID:          f.ID,
		WorkspaceID: f.WorkspaceID,
		Name:        f.Name,
		IsOwnerRole: f.IsOwnerRole,
		Permissions: append([]string(nil), f.Permissions...),
	}
}

// Persistence returns the fixture as a persistence.Role value.
func (f RoleFixture) Persistence() persistence.Role {
	return persistence.Role{
		ID:          f.ID,
		WorkspaceID: f.WorkspaceID,
		Name:        f.Name,
		IsOwnerRole: f.IsOwnerRole,
		Permissions: append([]string(nil), f.Permissions...),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// -------------------------- Session type fixtures ------------------------

// SessionTypeFixture represents a deterministic session type record.
type SessionTypeFixture struct {
	ID             string
	WorkspaceID    int64
	Name           string
	HostingRoleIDs []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionTypeOption configures the generated session type fixture.
type SessionTypeOption func(*SessionTypeFixture)

// NewSessionTypeFixture returns a deterministic session type fixture with
// optional overrides.
func NewSessionTypeFixture(opts ...SessionTypeOption) SessionTypeFixture {
	idx := atomic.AddUint64(&sessionTypeCounter, 1)
	fixture := SessionTypeFixture{
		ID:          fmt.Sprintf("type-%03d", idx),
		WorkspaceID: DefaultWorkspaceID,
		Name:        fmt.Sprintf("Session Type %03d", idx),
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionTypeID overrides the generated session type ID.
func WithSessionTypeID(id string) SessionTypeOption {
	return func(f *SessionTypeFixture) {
		f.ID = id
	}
}

// WithSessionTypeWorkspace sets the owning workspace.
func WithSessionTypeWorkspace(workspaceID int64) SessionTypeOption {
	return func(f *SessionTypeFixture) {
		f.WorkspaceID = workspaceID
	}
}

// WithSessionTypeName overrides the generated name.
func WithSessionTypeName(name string) SessionTypeOption {
	return func(f *SessionTypeFixture) {
		f.Name = name
	}
}

// WithHostingRoles sets the roles authorized to host the type.
func WithHostingRoles(roleIDs ...string) SessionTypeOption {
	return func(f *SessionTypeFixture) {
		f.HostingRoleIDs = append([]string(nil), roleIDs...)
	}
}

// Application returns the fixture as an application.SessionType value.
func (f SessionTypeFixture) Application() application.SessionType {
	return application.SessionType{
		ID:             f.ID,
		WorkspaceID:    f.WorkspaceID,
		Name:           f.Name,
		HostingRoleIDs: append([]string(nil), f.HostingRoleIDs...),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.SessionType value.
func (f SessionTypeFixture) Persistence() persistence.SessionType {
	return persistence.SessionType{
		ID:             f.ID,
		WorkspaceID:    f.WorkspaceID,
		Name:           f.Name,
		HostingRoleIDs: append([]string(nil), f.HostingRoleIDs...),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// --------------------------- Schedule fixtures ---------------------------

// ScheduleFixture represents a deterministic recurring schedule template.
type ScheduleFixture struct {
	ID            string
	SessionTypeID string
	WorkspaceID   int64
	Weekdays      []time.Weekday
	Hour          int
	Minute        int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*ScheduleFixture)

// NewScheduleFixture returns a deterministic schedule fixture with optional
// overrides. The default recurs Mondays at 18:00 UTC.
func NewScheduleFixture(opts ...ScheduleOption) ScheduleFixture {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	fixture := ScheduleFixture{
		ID:            fmt.Sprintf("schedule-%03d", idx),
		SessionTypeID: fmt.Sprintf("type-%03d", idx),
		WorkspaceID:   DefaultWorkspaceID,
		Weekdays:      []time.Weekday{time.Monday},
		Hour:          18,
		Minute:        0,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithScheduleID overrides the schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.ID = id
	}
}

// WithScheduleSessionType sets the owning session type ID.
func WithScheduleSessionType(id string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.SessionTypeID = id
	}
}

// WithScheduleWorkspace sets the resolved workspace.
func WithScheduleWorkspace(workspaceID int64) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.WorkspaceID = workspaceID
	}
}

// WithScheduleWeekdays sets the recurrence weekdays.
func WithScheduleWeekdays(days ...time.Weekday) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Weekdays = append([]time.Weekday(nil), days...)
	}
}

// WithScheduleStart sets the UTC wall-clock start time.
func WithScheduleStart(hour, minute int) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Hour = hour
		f.Minute = minute
	}
}

// Application returns the fixture as an application.Schedule value.
func (f ScheduleFixture) Application() application.Schedule {
	return application.Schedule{
		ID:            f.ID,
		SessionTypeID: f.SessionTypeID,
		WorkspaceID:   f.WorkspaceID,
		Weekdays:      append([]time.Weekday(nil), f.Weekdays...),
		Hour:          f.Hour,
		Minute:        f.Minute,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Schedule value.
func (f ScheduleFixture) Persistence() persistence.Schedule {
	return persistence.Schedule{
		ID:            f.ID,
		SessionTypeID: f.SessionTypeID,
		WorkspaceID:   f.WorkspaceID,
		Weekdays:      append([]time.Weekday(nil), f.Weekdays...),
		Hour:          f.Hour,
		Minute:        f.Minute,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic materialized session occurrence.
type SessionFixture struct {
	ID            string
	SessionTypeID string
	Date          time.Time
	OwnerID       *int64
	StartedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. The default date is the Monday after the reference time at
// 18:00 UTC.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	date := time.Date(2024, time.January, 8, 18, 0, 0, 0, time.UTC).
		Add(time.Duration(idx-1) * 7 * 24 * time.Hour)
	fixture := SessionFixture{
		ID:            fmt.Sprintf("session-%03d", idx),
		SessionTypeID: fmt.Sprintf("type-%03d", idx),
		Date:          date,
		StartedAt:     date,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionInstanceID overrides the session ID.
func WithSessionInstanceID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionSessionType sets the owning session type ID.
func WithSessionSessionType(id string) SessionOption {
	return func(f *SessionFixture) {
		f.SessionTypeID = id
	}
}

// WithSessionDate sets the canonical occurrence instant. StartedAt follows
// unless overridden afterwards.
func WithSessionDate(date time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.Date = date
		f.StartedAt = date
	}
}

// WithSessionOwner sets the claiming owner.
func WithSessionOwner(ownerID int64) SessionOption {
	return func(f *SessionFixture) {
		owner := ownerID
		f.OwnerID = &owner
	}
}

// WithoutSessionOwner clears the owner.
func WithoutSessionOwner() SessionOption {
	return func(f *SessionFixture) {
		f.OwnerID = nil
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:            f.ID,
		SessionTypeID: f.SessionTypeID,
		Date:          f.Date,
		OwnerID:       copyInt64Ptr(f.OwnerID),
		StartedAt:     f.StartedAt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:            f.ID,
		SessionTypeID: f.SessionTypeID,
		Date:          f.Date,
		OwnerID:       copyInt64Ptr(f.OwnerID),
		StartedAt:     f.StartedAt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// -------------------------- Auth session fixtures ------------------------

// AuthSessionFixture represents a deterministic login session record.
type AuthSessionFixture struct {
	ID        string
	UserID    int64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthSessionOption configures the generated auth session fixture.
type AuthSessionOption func(*AuthSessionFixture)

// NewAuthSessionFixture returns a deterministic auth session fixture with
// optional overrides.
func NewAuthSessionFixture(opts ...AuthSessionOption) AuthSessionFixture {
	idx := atomic.AddUint64(&authSessionCounter, 1)
	fixture := AuthSessionFixture{
		ID:        fmt.Sprintf("auth-%03d", idx),
		UserID:    int64(1000 + idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(8 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAuthSessionID overrides the auth session ID.
func WithAuthSessionID(id string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ID = id
	}
}

// WithAuthSessionUser sets the owning user ID.
func WithAuthSessionUser(userID int64) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.UserID = userID
	}
}

// WithAuthSessionToken overrides the bearer token.
func WithAuthSessionToken(token string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.Token = token
	}
}

// WithAuthSessionExpiresAt sets the expiration timestamp.
func WithAuthSessionExpiresAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ExpiresAt = t
	}
}

// WithAuthSessionRevokedAt sets the optional revoked timestamp.
func WithAuthSessionRevokedAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.AuthSession value.
func (f AuthSessionFixture) Application() application.AuthSession {
	return application.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.AuthSession value.
func (f AuthSessionFixture) Persistence() persistence.AuthSession {
	return persistence.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTimePtr(f.RevokedAt),
	}
}

func copyInt64Ptr(src *int64) *int64 {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
