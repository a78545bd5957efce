package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/workspace-sessions/internal/application"
	httptransport "github.com/example/workspace-sessions/internal/http"
	"github.com/example/workspace-sessions/internal/logging"
	"github.com/example/workspace-sessions/internal/persistence"
	"github.com/example/workspace-sessions/internal/persistence/sqlite"
)

func TestRandomHex(t *testing.T) {
	first := randomHex(16)
	second := randomHex(16)

	if len(first) != 32 || len(second) != 32 {
		t.Fatalf("expected 32 hex characters, got %d and %d", len(first), len(second))
	}
	if first == second {
		t.Fatal("expected distinct values from consecutive calls")
	}
	if fallback := randomHex(0); len(fallback) != 32 {
		t.Fatalf("expected the zero byte count to default to 16 bytes, got %d characters", len(fallback))
	}
}

// Wires the real storage, services, adapters and router together and walks the
// login -> claim flow end to end.
func TestServerWiring_LoginAndClaim(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewJSONLogger(&bytes.Buffer{}, slog.LevelError)

	storage, err := sqlite.Open(filepath.Join(t.TempDir(), "workspace.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tokenHash, err := application.CreateTokenHash("api-token", application.DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash token: %v", err)
	}
	if err := storage.CreateWorkspace(ctx, persistence.Workspace{ID: 1, Name: "Crew"}); err != nil {
		t.Fatalf("failed to seed workspace: %v", err)
	}
	if err := storage.CreateUser(ctx, persistence.User{ID: 100, Username: "host", DisplayName: "Host", TokenHash: tokenHash}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := storage.CreateRole(ctx, persistence.Role{ID: "role-host", WorkspaceID: 1, Name: "Host"}); err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
	if err := storage.AssignRole(ctx, 100, "role-host"); err != nil {
		t.Fatalf("failed to assign role: %v", err)
	}
	if err := storage.CreateSessionType(ctx, persistence.SessionType{ID: "type-1", WorkspaceID: 1, Name: "Training", HostingRoleIDs: []string{"role-host"}}); err != nil {
		t.Fatalf("failed to seed session type: %v", err)
	}
	if err := storage.CreateSchedule(ctx, persistence.Schedule{
		ID:            "sched-1",
		SessionTypeID: "type-1",
		Weekdays:      []time.Weekday{time.Monday},
		Hour:          18,
		Minute:        0,
	}); err != nil {
		t.Fatalf("failed to seed schedule: %v", err)
	}

	counter := 0
	idGenerator := func() string {
		counter++
		return fmt.Sprintf("generated-%d", counter)
	}
	now := time.Now

	scheduleRepo := newScheduleRepositoryAdapter(storage)
	sessionTypeRepo := newSessionTypeRepositoryAdapter(storage)
	roleDirectory := newRoleDirectoryAdapter(storage)
	sessionStore := newSessionStoreAdapter(storage)

	claimService := application.NewClaimServiceWithLogger(scheduleRepo, sessionTypeRepo, roleDirectory, sessionStore, idGenerator, now, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, sessionTypeRepo, roleDirectory, roleDirectory, idGenerator, now, logger)
	sessionService := application.NewSessionServiceWithLogger(sessionStore, sessionTypeRepo, logger)
	authService := application.NewAuthServiceWithLogger(
		newCredentialStoreAdapter(storage),
		newAuthSessionRepositoryAdapter(storage),
		nil,
		func() string { return randomHex(32) },
		now,
		time.Hour,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Schedules:    httptransport.NewScheduleHandler(scheduleService, logger),
		SessionTypes: httptransport.NewSessionTypeHandler(scheduleService, logger),
		Sessions:     httptransport.NewSessionHandler(sessionService, logger),
		Claims:       httptransport.NewClaimHandler(claimService, logger),
	})
	handler := httptransport.RequireSession(authService, logger, "/login")(router)

	loginBody := bytes.NewBufferString(`{"user_id": 100, "token": "api-token"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/login", loginBody)
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusCreated {
		t.Fatalf("expected login 201, got %d: %s", loginRec.Code, loginRec.Body.String())
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginRec.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a session token")
	}

	claimBody := bytes.NewBufferString(`{"date": "2024-03-04"}`)
	claimReq := httptest.NewRequest(http.MethodPost, "/workspaces/1/schedules/sched-1/claim", claimBody)
	claimReq.Header.Set("Authorization", "Bearer "+login.Token)
	claimRec := httptest.NewRecorder()
	handler.ServeHTTP(claimRec, claimReq)
	if claimRec.Code != http.StatusOK {
		t.Fatalf("expected claim 200, got %d: %s", claimRec.Code, claimRec.Body.String())
	}

	var claim struct {
		Success bool `json:"success"`
		Session struct {
			OwnerID *int64 `json:"owner_id"`
			Date    string `json:"date"`
		} `json:"session"`
	}
	if err := json.Unmarshal(claimRec.Body.Bytes(), &claim); err != nil {
		t.Fatalf("failed to decode claim response: %v", err)
	}
	if !claim.Success {
		t.Fatal("expected the claim response to report success")
	}
	if claim.Session.OwnerID == nil || *claim.Session.OwnerID != 100 {
		t.Fatalf("expected owner 100, got %v", claim.Session.OwnerID)
	}
	parsed, err := time.Parse(time.RFC3339, claim.Session.Date)
	if err != nil {
		t.Fatalf("failed to parse occurrence date %q: %v", claim.Session.Date, err)
	}
	want := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected occurrence at %v, got %v", want, parsed)
	}

	// Unauthenticated requests are rejected before reaching the router.
	anonReq := httptest.NewRequest(http.MethodGet, "/workspaces/1/sessions", nil)
	anonRec := httptest.NewRecorder()
	handler.ServeHTTP(anonRec, anonReq)
	if anonRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", anonRec.Code)
	}
}
