package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes user credential lookup operations required by the auth service.
type CredentialStore interface {
	GetUserCredentials(ctx context.Context, userID int64) (UserCredentials, error)
}

// AuthSessionRepository captures the persistence interactions for issued bearer sessions.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, token string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}

// TokenVerifier compares a stored hash with a candidate API token.
type TokenVerifier func(hashedToken, token string) error

// AuthService coordinates token login and bearer session validation.
type AuthService struct {
	credentials    CredentialStore
	sessions       AuthSessionRepository
	verifyToken    TokenVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions AuthSessionRepository, verify TokenVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions AuthSessionRepository, verify TokenVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyToken
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyToken:    verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login verifies an API token and issues a new bearer session.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	logger := s.loggerWith(ctx, "Login", "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", result.Session.ID).InfoContext(ctx, "login succeeded")
	}()

	token := strings.TrimSpace(params.Token)
	if params.UserID <= 0 || token == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentials(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = mapRepoError(err)
		return
	}

	if err = s.verifyToken(creds.TokenHash, token); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	session := AuthSession{
		ID:        s.tokenGenerator(),
		UserID:    creds.User.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredAuthSessions(ctx, now); err != nil {
			err = mapRepoError(err)
			return
		}

		var persisted AuthSession
		persisted, err = s.sessions.CreateAuthSession(ctx, session)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		session = persisted
	}

	result = LoginResult{User: creds.User, Session: session}
	return
}

// ValidateSession resolves a bearer token into the acting principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.sessions == nil {
		return Principal{}, fmt.Errorf("auth session repository not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetAuthSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, mapRepoError(err)
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.After(now) {
		return Principal{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return Principal{}, ErrSessionExpired
	}

	return Principal{UserID: session.UserID}, nil
}

// RevokeOwnedSession invalidates a bearer token after verifying it belongs to
// the acting principal.
func (s *AuthService) RevokeOwnedSession(ctx context.Context, principal Principal, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth session repository not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNotFound
	}

	session, err := s.sessions.GetAuthSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return mapRepoError(err)
	}
	if session.UserID != principal.UserID {
		return ErrUnauthorized
	}

	return s.RevokeSession(ctx, token)
}

// RevokeSession invalidates a bearer token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) (err error) {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth session repository not configured")
	}

	logger := s.loggerWith(ctx, "RevokeSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session revocation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session revoked")
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNotFound
	}

	if _, err = s.sessions.RevokeAuthSession(ctx, token, s.now()); err != nil {
		err = mapRepoError(err)
	}
	return
}
