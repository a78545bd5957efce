package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/workspace-sessions/internal/claim"
)

// ScheduleRepository captures the persistence interactions for schedule templates.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, workspaceID int64) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// SessionTypeRepository captures the persistence interactions for session types.
type SessionTypeRepository interface {
	CreateSessionType(ctx context.Context, sessionType SessionType) (SessionType, error)
	GetSessionType(ctx context.Context, id string) (SessionType, error)
	ListSessionTypes(ctx context.Context, workspaceID int64) ([]SessionType, error)
}

// WorkspaceRoleCatalog exposes the roles defined within a workspace.
type WorkspaceRoleCatalog interface {
	ListWorkspaceRoles(ctx context.Context, workspaceID int64) ([]Role, error)
}

// ScheduleService orchestrates authoring of session types and their weekly
// schedules. Authoring is restricted to workspace owners and admins.
type ScheduleService struct {
	schedules    ScheduleRepository
	sessionTypes SessionTypeRepository
	roles        RoleDirectory
	catalog      WorkspaceRoleCatalog
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewScheduleService wires dependencies for schedule authoring operations.
func NewScheduleService(schedules ScheduleRepository, sessionTypes SessionTypeRepository, roles RoleDirectory, catalog WorkspaceRoleCatalog, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, sessionTypes, roles, catalog, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified logger.
func NewScheduleServiceWithLogger(schedules ScheduleRepository, sessionTypes SessionTypeRepository, roles RoleDirectory, catalog WorkspaceRoleCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:    schedules,
		sessionTypes: sessionTypes,
		roles:        roles,
		catalog:      catalog,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// CreateSchedule validates and persists a weekly schedule template.
func (s *ScheduleService) CreateSchedule(ctx context.Context, params CreateScheduleParams) (schedule Schedule, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil || s.sessionTypes == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSchedule",
		"workspace_id", params.WorkspaceID,
		"session_type_id", params.Input.SessionTypeID,
		"user_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "schedule creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", schedule.ID).InfoContext(ctx, "schedule created")
	}()

	if err = s.requireManager(ctx, params.Principal, params.WorkspaceID); err != nil {
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	if strings.TrimSpace(input.SessionTypeID) == "" {
		vErr.add("session_type_id", "session type is required")
	}
	validateScheduleCore(input, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	sessionType, err := s.sessionTypes.GetSessionType(ctx, input.SessionTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			vErr.add("session_type_id", "session type does not exist")
			err = vErr
			return
		}
		err = mapRepoError(err)
		return
	}
	if sessionType.WorkspaceID != params.WorkspaceID {
		vErr.add("session_type_id", "session type does not exist")
		err = vErr
		return
	}

	createdAt := s.now().UTC()
	candidate := Schedule{
		ID:            s.idGenerator(),
		SessionTypeID: input.SessionTypeID,
		WorkspaceID:   params.WorkspaceID,
		Weekdays:      normalizeWeekdays(input.Weekdays),
		Hour:          input.Hour,
		Minute:        input.Minute,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	schedule, err = s.schedules.CreateSchedule(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetSchedule retrieves a schedule template scoped to a workspace.
func (s *ScheduleService) GetSchedule(ctx context.Context, workspaceID int64, scheduleID string) (Schedule, error) {
	if s == nil || s.schedules == nil {
		return Schedule{}, fmt.Errorf("schedule repository not configured")
	}
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Schedule{}, mapRepoError(err)
	}
	if schedule.WorkspaceID != workspaceID {
		return Schedule{}, ErrNotFound
	}
	return schedule, nil
}

// ListSchedules enumerates schedule templates in a workspace ordered by
// creation time.
func (s *ScheduleService) ListSchedules(ctx context.Context, workspaceID int64) ([]Schedule, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}
	schedules, err := s.schedules.ListSchedules(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, mapRepoError(err)
	}

	ordered := make([]Schedule, len(schedules))
	copy(ordered, schedules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered, nil
}

// DeleteSchedule removes a schedule template after authorization.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, principal Principal, workspaceID int64, scheduleID string) (err error) {
	if s == nil || s.schedules == nil {
		return fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSchedule",
		"workspace_id", workspaceID,
		"schedule_id", scheduleID,
		"user_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "schedule deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule deleted")
	}()

	if err = s.requireManager(ctx, principal, workspaceID); err != nil {
		return
	}

	if _, err = s.GetSchedule(ctx, workspaceID, scheduleID); err != nil {
		return
	}

	if err = s.schedules.DeleteSchedule(ctx, scheduleID); err != nil {
		err = mapRepoError(err)
	}
	return
}

// CreateSessionType validates and persists a session type catalog entry.
func (s *ScheduleService) CreateSessionType(ctx context.Context, params CreateSessionTypeParams) (sessionType SessionType, err error) {
	if s == nil || s.sessionTypes == nil {
		err = fmt.Errorf("session type repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSessionType",
		"workspace_id", params.WorkspaceID,
		"user_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session type creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_type_id", sessionType.ID).InfoContext(ctx, "session type created")
	}()

	if err = s.requireManager(ctx, params.Principal, params.WorkspaceID); err != nil {
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hostingRoles := uniqueStrings(input.HostingRoleIDs)
	if len(hostingRoles) > 0 && s.catalog != nil {
		var known []Role
		known, err = s.catalog.ListWorkspaceRoles(ctx, params.WorkspaceID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		if missing := missingRoleIDs(hostingRoles, known); len(missing) > 0 {
			vErr.add("hosting_roles", fmt.Sprintf("unknown role ids: %s", strings.Join(missing, ", ")))
			err = vErr
			return
		}
	}

	createdAt := s.now().UTC()
	candidate := SessionType{
		ID:             s.idGenerator(),
		WorkspaceID:    params.WorkspaceID,
		Name:           strings.TrimSpace(input.Name),
		HostingRoleIDs: hostingRoles,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	sessionType, err = s.sessionTypes.CreateSessionType(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// ListSessionTypes enumerates the session type catalog of a workspace.
func (s *ScheduleService) ListSessionTypes(ctx context.Context, workspaceID int64) ([]SessionType, error) {
	if s == nil || s.sessionTypes == nil {
		return nil, fmt.Errorf("session type repository not configured")
	}
	sessionTypes, err := s.sessionTypes.ListSessionTypes(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, mapRepoError(err)
	}
	return sessionTypes, nil
}

// requireManager rejects principals whose effective role is neither the
// workspace owner role nor carries the admin permission.
func (s *ScheduleService) requireManager(ctx context.Context, principal Principal, workspaceID int64) error {
	if s.roles == nil {
		return fmt.Errorf("role directory not configured")
	}
	roles, err := s.roles.ListUserRoles(ctx, principal.UserID, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthorized
		}
		return mapRepoError(err)
	}
	effective, ok := claim.EffectiveRole(toClaimRoles(roles))
	if !ok {
		return ErrUnauthorized
	}
	if effective.IsOwnerRole {
		return nil
	}
	for _, permission := range effective.Permissions {
		if permission == claim.PermissionAdmin {
			return nil
		}
	}
	return ErrUnauthorized
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

func validateScheduleCore(input ScheduleInput, vErr *ValidationError) {
	if len(input.Weekdays) == 0 {
		vErr.add("weekdays", "at least one weekday is required")
	}
	for _, day := range input.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			vErr.add("weekdays", "weekdays must be between Sunday and Saturday")
			break
		}
	}
	if input.Hour < 0 || input.Hour > 23 {
		vErr.add("hour", "hour must be between 0 and 23")
	}
	if input.Minute < 0 || input.Minute > 59 {
		vErr.add("minute", "minute must be between 0 and 59")
	}
}

func normalizeWeekdays(weekdays []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]struct{}, len(weekdays))
	out := make([]time.Weekday, 0, len(weekdays))
	for _, day := range weekdays {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

func missingRoleIDs(wanted []string, known []Role) []string {
	index := make(map[string]struct{}, len(known))
	for _, role := range known {
		index[role.ID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, id := range wanted {
		if _, ok := index[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	if len(missing) == 0 {
		return nil
	}
	return missing
}
