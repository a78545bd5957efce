package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-sessions/internal/application"
	"github.com/example/workspace-sessions/internal/config"
	httptransport "github.com/example/workspace-sessions/internal/http"
	"github.com/example/workspace-sessions/internal/logging"
	"github.com/example/workspace-sessions/internal/persistence"
	"github.com/example/workspace-sessions/internal/persistence/sqlite"
)

func main() {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Ping(context.Background()); err != nil {
		logger.Error("storage is unreachable", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	scheduleRepo := newScheduleRepositoryAdapter(storage)
	sessionTypeRepo := newSessionTypeRepositoryAdapter(storage)
	roleDirectory := newRoleDirectoryAdapter(storage)
	sessionStore := newSessionStoreAdapter(storage)
	credentialStore := newCredentialStoreAdapter(storage)
	authSessionRepo := newAuthSessionRepositoryAdapter(storage)

	claimService := application.NewClaimServiceWithLogger(scheduleRepo, sessionTypeRepo, roleDirectory, sessionStore, idGenerator, now, logger)
	scheduleService := application.NewScheduleServiceWithLogger(scheduleRepo, sessionTypeRepo, roleDirectory, roleDirectory, idGenerator, now, logger)
	sessionService := application.NewSessionServiceWithLogger(sessionStore, sessionTypeRepo, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, authSessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Schedules:    httptransport.NewScheduleHandler(scheduleService, logger),
		SessionTypes: httptransport.NewSessionTypeHandler(scheduleService, logger),
		Sessions:     httptransport.NewSessionHandler(sessionService, logger),
		Claims:       httptransport.NewClaimHandler(claimService, logger),
	})

	protected := httptransport.RequireSession(authService, logger, "/login")(router)
	handler := httptransport.RequestLogger(logger)(protected)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("workspace session API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type scheduleRepositoryAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleRepositoryAdapter(repo persistence.ScheduleRepository) *scheduleRepositoryAdapter {
	return &scheduleRepositoryAdapter{repo: repo}
}

func (a *scheduleRepositoryAdapter) CreateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	if err := a.repo.CreateSchedule(ctx, toPersistenceSchedule(schedule)); err != nil {
		return application.Schedule{}, err
	}
	stored, err := a.repo.GetSchedule(ctx, schedule.ID)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored), nil
}

func (a *scheduleRepositoryAdapter) GetSchedule(ctx context.Context, id string) (application.Schedule, error) {
	stored, err := a.repo.GetSchedule(ctx, id)
	if err != nil {
		return application.Schedule{}, err
	}
	return toApplicationSchedule(stored), nil
}

func (a *scheduleRepositoryAdapter) ListSchedules(ctx context.Context, workspaceID int64) ([]application.Schedule, error) {
	models, err := a.repo.ListSchedules(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	schedules := make([]application.Schedule, 0, len(models))
	for _, model := range models {
		schedules = append(schedules, toApplicationSchedule(model))
	}
	return schedules, nil
}

func (a *scheduleRepositoryAdapter) DeleteSchedule(ctx context.Context, id string) error {
	return a.repo.DeleteSchedule(ctx, id)
}

type sessionTypeRepositoryAdapter struct {
	repo persistence.SessionTypeRepository
}

func newSessionTypeRepositoryAdapter(repo persistence.SessionTypeRepository) *sessionTypeRepositoryAdapter {
	return &sessionTypeRepositoryAdapter{repo: repo}
}

func (a *sessionTypeRepositoryAdapter) CreateSessionType(ctx context.Context, sessionType application.SessionType) (application.SessionType, error) {
	if err := a.repo.CreateSessionType(ctx, toPersistenceSessionType(sessionType)); err != nil {
		return application.SessionType{}, err
	}
	stored, err := a.repo.GetSessionType(ctx, sessionType.ID)
	if err != nil {
		return application.SessionType{}, err
	}
	return toApplicationSessionType(stored), nil
}

func (a *sessionTypeRepositoryAdapter) GetSessionType(ctx context.Context, id string) (application.SessionType, error) {
	stored, err := a.repo.GetSessionType(ctx, id)
	if err != nil {
		return application.SessionType{}, err
	}
	return toApplicationSessionType(stored), nil
}

func (a *sessionTypeRepositoryAdapter) ListSessionTypes(ctx context.Context, workspaceID int64) ([]application.SessionType, error) {
	models, err := a.repo.ListSessionTypes(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	sessionTypes := make([]application.SessionType, 0, len(models))
	for _, model := range models {
		sessionTypes = append(sessionTypes, toApplicationSessionType(model))
	}
	return sessionTypes, nil
}

type roleDirectoryAdapter struct {
	repo persistence.RoleRepository
}

func newRoleDirectoryAdapter(repo persistence.RoleRepository) *roleDirectoryAdapter {
	return &roleDirectoryAdapter{repo: repo}
}

func (a *roleDirectoryAdapter) ListUserRoles(ctx context.Context, userID, workspaceID int64) ([]application.Role, error) {
	models, err := a.repo.ListUserRoles(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return toApplicationRoles(models), nil
}

func (a *roleDirectoryAdapter) ListWorkspaceRoles(ctx context.Context, workspaceID int64) ([]application.Role, error) {
	models, err := a.repo.ListWorkspaceRoles(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return toApplicationRoles(models), nil
}

type sessionStoreAdapter struct {
	repo persistence.SessionRepository
}

func newSessionStoreAdapter(repo persistence.SessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) UpsertSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpsertSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) ListSessions(ctx context.Context, workspaceID int64, from, to *time.Time) ([]application.Session, error) {
	models, err := a.repo.ListSessions(ctx, persistence.SessionFilter{
		WorkspaceID: workspaceID,
		From:        cloneTime(from),
		To:          cloneTime(to),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentials(ctx context.Context, userID int64) (application.UserCredentials, error) {
	stored, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:      toApplicationUser(stored),
		TokenHash: stored.TokenHash,
	}, nil
}

type authSessionRepositoryAdapter struct {
	repo persistence.AuthSessionRepository
}

func newAuthSessionRepositoryAdapter(repo persistence.AuthSessionRepository) *authSessionRepositoryAdapter {
	return &authSessionRepositoryAdapter{repo: repo}
}

func (a *authSessionRepositoryAdapter) CreateAuthSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	stored, err := a.repo.CreateAuthSession(ctx, toPersistenceAuthSession(session))
	if err != nil {
		return application.AuthSession{}, err
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) GetAuthSession(ctx context.Context, token string) (application.AuthSession, error) {
	stored, err := a.repo.GetAuthSession(ctx, token)
	if err != nil {
		return application.AuthSession{}, err
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (application.AuthSession, error) {
	stored, err := a.repo.RevokeAuthSession(ctx, token, revokedAt)
	if err != nil {
		return application.AuthSession{}, err
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredAuthSessions(ctx, reference)
}

func toApplicationSchedule(model persistence.Schedule) application.Schedule {
	return application.Schedule{
		ID:            model.ID,
		SessionTypeID: model.SessionTypeID,
		WorkspaceID:   model.WorkspaceID,
		Weekdays:      append([]time.Weekday(nil), model.Weekdays...),
		Hour:          model.Hour,
		Minute:        model.Minute,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceSchedule(schedule application.Schedule) persistence.Schedule {
	return persistence.Schedule{
		ID:            schedule.ID,
		SessionTypeID: schedule.SessionTypeID,
		WorkspaceID:   schedule.WorkspaceID,
		Weekdays:      append([]time.Weekday(nil), schedule.Weekdays...),
		Hour:          schedule.Hour,
		Minute:        schedule.Minute,
		CreatedAt:     schedule.CreatedAt,
		UpdatedAt:     schedule.UpdatedAt,
	}
}

func toApplicationSessionType(model persistence.SessionType) application.SessionType {
	return application.SessionType{
		ID:             model.ID,
		WorkspaceID:    model.WorkspaceID,
		Name:           model.Name,
		HostingRoleIDs: append([]string(nil), model.HostingRoleIDs...),
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func toPersistenceSessionType(sessionType application.SessionType) persistence.SessionType {
	return persistence.SessionType{
		ID:             sessionType.ID,
		WorkspaceID:    sessionType.WorkspaceID,
		Name:           sessionType.Name,
		HostingRoleIDs: append([]string(nil), sessionType.HostingRoleIDs...),
		CreatedAt:      sessionType.CreatedAt,
		UpdatedAt:      sessionType.UpdatedAt,
	}
}

func toApplicationRoles(models []persistence.Role) []application.Role {
	if len(models) == 0 {
		return nil
	}
	roles := make([]application.Role, 0, len(models))
	for _, model := range models {
		roles = append(roles, application.Role{
			ID:          model.ID,
			WorkspaceID: model.WorkspaceID,
			Name:        model.Name,
			IsOwnerRole: model.IsOwnerRole,
			Permissions: append([]string(nil), model.Permissions...),
		})
	}
	return roles
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:            model.ID,
		SessionTypeID: model.SessionTypeID,
		Date:          model.Date,
		OwnerID:       cloneInt64(model.OwnerID),
		StartedAt:     model.StartedAt,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:            session.ID,
		SessionTypeID: session.SessionTypeID,
		Date:          session.Date,
		OwnerID:       cloneInt64(session.OwnerID),
		StartedAt:     session.StartedAt,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Username:    model.Username,
		DisplayName: model.DisplayName,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationAuthSession(model persistence.AuthSession) application.AuthSession {
	return application.AuthSession{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceAuthSession(session application.AuthSession) persistence.AuthSession {
	return persistence.AuthSession{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
