package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newSessionServiceFixture() (*sessionStoreStub, *sessionTypeDirStub, *SessionService) {
	store := newSessionStoreStub()
	types := &sessionTypeDirStub{types: map[string]SessionType{
		"T1": {ID: "T1", WorkspaceID: testWorkspaceID, Name: "Training"},
		"T2": {ID: "T2", WorkspaceID: testWorkspaceID, Name: "Tryout"},
	}}
	return store, types, NewSessionService(store, types)
}

func TestSessionService_ListSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("attaches the session type to each row", func(t *testing.T) {
		t.Parallel()

		store, _, service := newSessionServiceFixture()
		date := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
		owner := hostUserID
		store.rows["k1"] = Session{ID: "s1", SessionTypeID: "T1", Date: date, OwnerID: &owner, StartedAt: date}
		store.rows["k2"] = Session{ID: "s2", SessionTypeID: "T2", Date: date.Add(24 * time.Hour), StartedAt: date.Add(24 * time.Hour)}

		sessions, err := service.ListSessions(ctx, ListSessionsParams{WorkspaceID: testWorkspaceID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(sessions))
		}
		for _, session := range sessions {
			if session.Type.ID != session.Session.SessionTypeID {
				t.Fatalf("expected matching type, got session %q with type %q", session.Session.SessionTypeID, session.Type.ID)
			}
		}
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		t.Parallel()

		_, _, service := newSessionServiceFixture()
		from := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		to := from.Add(-time.Hour)

		_, err := service.ListSessions(ctx, ListSessionsParams{WorkspaceID: testWorkspaceID, From: &from, To: &to})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects a missing workspace id", func(t *testing.T) {
		t.Parallel()

		_, _, service := newSessionServiceFixture()
		_, err := service.ListSessions(ctx, ListSessionsParams{})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("returns nothing for an empty workspace", func(t *testing.T) {
		t.Parallel()

		_, _, service := newSessionServiceFixture()
		sessions, err := service.ListSessions(ctx, ListSessionsParams{WorkspaceID: testWorkspaceID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions) != 0 {
			t.Fatalf("expected no sessions, got %d", len(sessions))
		}
	})
}

func TestSessionService_GetSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns the session with its type", func(t *testing.T) {
		t.Parallel()

		store, _, service := newSessionServiceFixture()
		date := time.Date(2024, time.March, 4, 18, 0, 0, 0, time.UTC)
		store.rows["k1"] = Session{ID: "s1", SessionTypeID: "T1", Date: date, StartedAt: date}

		session, err := service.GetSession(ctx, testWorkspaceID, "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Session.ID != "s1" || session.Type.ID != "T1" {
			t.Fatalf("unexpected result: %+v", session)
		}
	})

	t.Run("hides sessions from other workspaces", func(t *testing.T) {
		t.Parallel()

		store, types, service := newSessionServiceFixture()
		types.types["T1"] = SessionType{ID: "T1", WorkspaceID: testWorkspaceID + 1}
		store.rows["k1"] = Session{ID: "s1", SessionTypeID: "T1"}

		_, err := service.GetSession(ctx, testWorkspaceID, "s1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reports unknown sessions", func(t *testing.T) {
		t.Parallel()

		_, _, service := newSessionServiceFixture()
		_, err := service.GetSession(ctx, testWorkspaceID, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
