package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/workspace-sessions/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ClaimServiceDeps captures dependencies for constructing a claim service.
type ClaimServiceDeps struct {
	Schedules    application.ScheduleDirectory
	SessionTypes application.SessionTypeDirectory
	Roles        application.RoleDirectory
	Sessions     application.SessionStore
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewClaimService builds a claim service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewClaimService(deps ClaimServiceDeps) *application.ClaimService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewClaimServiceWithLogger(
		deps.Schedules,
		deps.SessionTypes,
		deps.Roles,
		deps.Sessions,
		idGen,
		now,
		deps.Logger,
	)
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Schedules    application.ScheduleRepository
	SessionTypes application.SessionTypeRepository
	Roles        application.RoleDirectory
	Catalog      application.WorkspaceRoleCatalog
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied dependencies.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewScheduleServiceWithLogger(
		deps.Schedules,
		deps.SessionTypes,
		deps.Roles,
		deps.Catalog,
		idGen,
		now,
		deps.Logger,
	)
}

// SessionServiceDeps captures dependencies for constructing a session query
// service.
type SessionServiceDeps struct {
	Sessions     application.SessionStore
	SessionTypes application.SessionTypeDirectory
	Logger       *slog.Logger
}

// NewSessionService builds a session query service.
func (f *ServiceFactory) NewSessionService(deps SessionServiceDeps) *application.SessionService {
	return application.NewSessionServiceWithLogger(
		deps.Sessions,
		deps.SessionTypes,
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.AuthSessionRepository
	TokenVerify    application.TokenVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.TokenVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}
