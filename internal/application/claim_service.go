package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/workspace-sessions/internal/claim"
	"github.com/example/workspace-sessions/internal/persistence"
)

// ScheduleDirectory exposes schedule template lookups.
type ScheduleDirectory interface {
	GetSchedule(ctx context.Context, id string) (Schedule, error)
}

// SessionTypeDirectory exposes session type lookups.
type SessionTypeDirectory interface {
	GetSessionType(ctx context.Context, id string) (SessionType, error)
}

// RoleDirectory exposes role lookups for workspace members.
type RoleDirectory interface {
	ListUserRoles(ctx context.Context, userID int64, workspaceID int64) ([]Role, error)
}

// SessionStore captures the persistence interactions for session instances.
type SessionStore interface {
	UpsertSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, workspaceID int64, from, to *time.Time) ([]Session, error)
}

// ClaimService drives the claim flow: authorize the actor, resolve the
// canonical occurrence instant, and commit ownership on the materialized
// session row.
type ClaimService struct {
	schedules    ScheduleDirectory
	sessionTypes SessionTypeDirectory
	roles        RoleDirectory
	sessions     SessionStore
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewClaimService wires dependencies for claim operations.
func NewClaimService(schedules ScheduleDirectory, sessionTypes SessionTypeDirectory, roles RoleDirectory, sessions SessionStore, idGenerator func() string, now func() time.Time) *ClaimService {
	return NewClaimServiceWithLogger(schedules, sessionTypes, roles, sessions, idGenerator, now, nil)
}

// NewClaimServiceWithLogger constructs a ClaimService with a specified logger.
func NewClaimServiceWithLogger(schedules ScheduleDirectory, sessionTypes SessionTypeDirectory, roles RoleDirectory, sessions SessionStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClaimService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClaimService{
		schedules:    schedules,
		sessionTypes: sessionTypes,
		roles:        roles,
		sessions:     sessions,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// ClaimSession makes the acting user the owner of the session occurrence
// identified by a schedule and a target calendar date.
//
// The attempt walks requested -> authorized -> resolved -> committed. The
// session row is materialized lazily: the first claim for a given occurrence
// creates it, later claims overwrite the existing row's owner (last writer
// wins) without changing its date or start time. A raced duplicate create is
// retried once as an update before the failure is surfaced.
func (s *ClaimService) ClaimSession(ctx context.Context, params ClaimSessionParams) (result ClaimResult, err error) {
	if s == nil {
		err = fmt.Errorf("ClaimService is nil")
		return
	}
	if s.schedules == nil || s.sessionTypes == nil || s.roles == nil || s.sessions == nil {
		err = fmt.Errorf("claim service dependencies not configured")
		return
	}

	state := claim.StateRequested
	logger := s.loggerWith(ctx, "ClaimSession",
		"workspace_id", params.WorkspaceID,
		"schedule_id", params.ScheduleID,
		"user_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			state = claim.StateRejected
			logger.ErrorContext(ctx, "claim rejected", "state", state.String(), "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", result.Session.ID, "date", result.Session.Date).
			InfoContext(ctx, "claim committed", "state", state.String())
	}()

	if vErr := validateClaimParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	schedule, err := s.schedules.GetSchedule(ctx, params.ScheduleID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	sessionType, err := s.sessionTypes.GetSessionType(ctx, schedule.SessionTypeID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if sessionType.WorkspaceID != params.WorkspaceID {
		// Schedules are workspace-scoped; a cross-tenant id is indistinguishable
		// from a missing one.
		err = ErrNotFound
		return
	}

	effective, err := s.resolveEffectiveRole(ctx, params.Principal.UserID, params.WorkspaceID)
	if err != nil {
		return
	}

	if err = claim.Authorize(effective, toClaimSessionType(sessionType)); err != nil {
		err = ErrUnauthorized
		return
	}
	state = claim.StateAuthorized

	instant, err := claim.CanonicalInstant(toClaimSchedule(schedule), params.Date)
	if err != nil {
		if errors.Is(err, claim.ErrWeekdayNotScheduled) || errors.Is(err, claim.ErrInvalidSchedule) {
			err = ErrInvalidSchedule
		}
		return
	}
	state = claim.StateResolved

	owner := params.Principal.UserID
	candidate := Session{
		ID:            s.idGenerator(),
		SessionTypeID: schedule.SessionTypeID,
		Date:          instant,
		OwnerID:       &owner,
		StartedAt:     instant,
	}

	persisted, err := s.commitSession(ctx, candidate)
	if err != nil {
		return
	}
	state = claim.StateCommitted

	result = ClaimResult{Session: persisted, Type: sessionType}
	return
}

// commitSession persists ownership on the resolved occurrence. The store's
// upsert is atomic under the (session_type_id, date) unique index; if a store
// without native upsert reports a raced duplicate create, the write is
// retried once so it lands as an update against the now-existing row.
func (s *ClaimService) commitSession(ctx context.Context, candidate Session) (Session, error) {
	persisted, err := s.sessions.UpsertSession(ctx, candidate)
	if err == nil {
		return persisted, nil
	}
	if !errors.Is(err, persistence.ErrDuplicate) {
		return Session{}, mapRepoError(err)
	}

	persisted, err = s.sessions.UpsertSession(ctx, candidate)
	if err != nil {
		return Session{}, ErrConflict
	}
	return persisted, nil
}

func (s *ClaimService) resolveEffectiveRole(ctx context.Context, userID, workspaceID int64) (claim.Role, error) {
	roles, err := s.roles.ListUserRoles(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return claim.Role{}, ErrUnauthorized
		}
		return claim.Role{}, err
	}

	effective, ok := claim.EffectiveRole(toClaimRoles(roles))
	if !ok {
		// A user with no role in the workspace holds no authority.
		return claim.Role{}, ErrUnauthorized
	}
	return effective, nil
}

func (s *ClaimService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClaimService", operation, attrs...)
}

func validateClaimParams(params ClaimSessionParams) *ValidationError {
	vErr := &ValidationError{}
	if params.WorkspaceID <= 0 {
		vErr.add("workspace_id", "workspace id is required")
	}
	if params.ScheduleID == "" {
		vErr.add("schedule_id", "schedule id is required")
	}
	if params.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if params.Principal.UserID <= 0 {
		vErr.add("user_id", "acting user is required")
	}
	return vErr
}

func toClaimSchedule(schedule Schedule) claim.Schedule {
	return claim.Schedule{
		ID:            schedule.ID,
		SessionTypeID: schedule.SessionTypeID,
		Weekdays:      append([]time.Weekday(nil), schedule.Weekdays...),
		Hour:          schedule.Hour,
		Minute:        schedule.Minute,
	}
}

func toClaimSessionType(sessionType SessionType) claim.SessionType {
	return claim.SessionType{
		ID:             sessionType.ID,
		HostingRoleIDs: append([]string(nil), sessionType.HostingRoleIDs...),
	}
}

func toClaimRoles(roles []Role) []claim.Role {
	if len(roles) == 0 {
		return nil
	}
	out := make([]claim.Role, 0, len(roles))
	for _, role := range roles {
		out = append(out, claim.Role{
			ID:          role.ID,
			IsOwnerRole: role.IsOwnerRole,
			Permissions: append([]string(nil), role.Permissions...),
		})
	}
	return out
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "stored constraints were violated")
		return vErr
	}
	return err
}
