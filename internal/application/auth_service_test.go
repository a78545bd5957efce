package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type credentialStoreStub struct {
	creds map[int64]UserCredentials
	err   error
}

func (s *credentialStoreStub) GetUserCredentials(ctx context.Context, userID int64) (UserCredentials, error) {
	if s.err != nil {
		return UserCredentials{}, s.err
	}
	creds, ok := s.creds[userID]
	if !ok {
		return UserCredentials{}, ErrNotFound
	}
	return creds, nil
}

type authSessionRepoStub struct {
	sessions       map[string]AuthSession
	expiredDeletes int
}

func newAuthSessionRepoStub() *authSessionRepoStub {
	return &authSessionRepoStub{sessions: make(map[string]AuthSession)}
}

func (s *authSessionRepoStub) CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error) {
	s.sessions[session.Token] = session
	return session, nil
}

func (s *authSessionRepoStub) GetAuthSession(ctx context.Context, token string) (AuthSession, error) {
	session, ok := s.sessions[token]
	if !ok {
		return AuthSession{}, ErrNotFound
	}
	return session, nil
}

func (s *authSessionRepoStub) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error) {
	session, ok := s.sessions[token]
	if !ok {
		return AuthSession{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *authSessionRepoStub) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	s.expiredDeletes++
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

func plainTextVerifier(hashedToken, token string) error {
	if hashedToken != "hash:"+token {
		return ErrInvalidCredentials
	}
	return nil
}

func newAuthServiceFixture() (*credentialStoreStub, *authSessionRepoStub, *AuthService) {
	creds := &credentialStoreStub{creds: map[int64]UserCredentials{
		hostUserID: {
			User:      User{ID: hostUserID, Username: "host", DisplayName: "Host"},
			TokenHash: "hash:secret-token",
		},
	}}
	sessions := newAuthSessionRepoStub()

	counter := 0
	tokenGenerator := func() string {
		counter++
		return fmt.Sprintf("token-%03d", counter)
	}
	now := func() time.Time { return time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC) }

	service := NewAuthService(creds, sessions, plainTextVerifier, tokenGenerator, now, time.Hour)
	return creds, sessions, service
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("issues a bearer session for a valid token", func(t *testing.T) {
		t.Parallel()

		_, sessions, service := newAuthServiceFixture()
		result, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "secret-token"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.User.ID != hostUserID {
			t.Fatalf("expected user %d, got %d", hostUserID, result.User.ID)
		}
		if result.Session.Token == "" {
			t.Fatal("expected a generated bearer token")
		}
		want := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
		if !result.Session.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, result.Session.ExpiresAt)
		}
		if sessions.expiredDeletes != 1 {
			t.Fatal("expected expired sessions to be swept on login")
		}
		if _, ok := sessions.sessions[result.Session.Token]; !ok {
			t.Fatal("expected the session to be persisted")
		}
	})

	t.Run("rejects a wrong token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		_, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("hides unknown users behind the same failure", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		_, err := service.Login(ctx, LoginParams{UserID: 9999, Token: "secret-token"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects blank input", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		_, err := service.Login(ctx, LoginParams{UserID: 0, Token: "   "})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	login := func(t *testing.T) (*authSessionRepoStub, *AuthService, AuthSession) {
		t.Helper()
		_, sessions, service := newAuthServiceFixture()
		result, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "secret-token"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		return sessions, service, result.Session
	}

	t.Run("resolves the principal for a live session", func(t *testing.T) {
		t.Parallel()

		_, service, session := login(t)
		principal, err := service.ValidateSession(ctx, session.Token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if principal.UserID != hostUserID {
			t.Fatalf("expected principal %d, got %d", hostUserID, principal.UserID)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		t.Parallel()

		sessions, service, session := login(t)
		stored := sessions.sessions[session.Token]
		stored.ExpiresAt = time.Date(2024, time.July, 1, 8, 0, 0, 0, time.UTC)
		sessions.sessions[session.Token] = stored

		_, err := service.ValidateSession(ctx, session.Token)
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		t.Parallel()

		_, service, session := login(t)
		if err := service.RevokeSession(ctx, session.Token); err != nil {
			t.Fatalf("revoke failed: %v", err)
		}

		_, err := service.ValidateSession(ctx, session.Token)
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("reports an unknown token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		_, err := service.ValidateSession(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects a blank token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		_, err := service.ValidateSession(ctx, "  ")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("marks the session revoked", func(t *testing.T) {
		t.Parallel()

		sessions, service, session := func() (*authSessionRepoStub, *AuthService, AuthSession) {
			_, sessions, service := newAuthServiceFixture()
			result, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "secret-token"})
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			return sessions, service, result.Session
		}()

		if err := service.RevokeSession(ctx, session.Token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions.sessions[session.Token].RevokedAt == nil {
			t.Fatal("expected revoked_at to be set")
		}
	})

	t.Run("reports an unknown token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		err := service.RevokeSession(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAuthService_RevokeOwnedSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("owner revokes their own token", func(t *testing.T) {
		t.Parallel()

		_, sessions, service := newAuthServiceFixture()
		result, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "secret-token"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		if err := service.RevokeOwnedSession(ctx, Principal{UserID: hostUserID}, result.Session.Token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions.sessions[result.Session.Token].RevokedAt == nil {
			t.Fatal("expected revoked_at to be set")
		}
	})

	t.Run("rejects revocation of another user's token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		result, err := service.Login(ctx, LoginParams{UserID: hostUserID, Token: "secret-token"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		err = service.RevokeOwnedSession(ctx, Principal{UserID: outsiderID}, result.Session.Token)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("reports an unknown token", func(t *testing.T) {
		t.Parallel()

		_, _, service := newAuthServiceFixture()
		err := service.RevokeOwnedSession(ctx, Principal{UserID: hostUserID}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
