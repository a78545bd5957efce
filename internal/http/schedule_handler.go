package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/workspace-sessions/internal/application"
)

type scheduleService interface {
	CreateSchedule(ctx context.Context, params application.CreateScheduleParams) (application.Schedule, error)
	GetSchedule(ctx context.Context, workspaceID int64, scheduleID string) (application.Schedule, error)
	ListSchedules(ctx context.Context, workspaceID int64) ([]application.Schedule, error)
	DeleteSchedule(ctx context.Context, principal application.Principal, workspaceID int64, scheduleID string) error
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.CreateSchedule(r.Context(), application.CreateScheduleParams{
		Principal:   principal,
		WorkspaceID: workspaceID,
		Input:       req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}
	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), workspaceID, scheduleID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}

	schedules, err := h.service.ListSchedules(r.Context(), workspaceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{Schedules: toScheduleDTOs(schedules)})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}
	scheduleID, ok := ScheduleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(scheduleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteSchedule(r.Context(), principal, workspaceID, scheduleID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type scheduleRequest struct {
	SessionTypeID string `json:"session_type_id"`
	Weekdays      []int  `json:"weekdays"`
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	weekdays := make([]time.Weekday, 0, len(r.Weekdays))
	for _, day := range r.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}
	return application.ScheduleInput{
		SessionTypeID: strings.TrimSpace(r.SessionTypeID),
		Weekdays:      weekdays,
		Hour:          r.Hour,
		Minute:        r.Minute,
	}
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}

type listSchedulesResponse struct {
	Schedules []scheduleDTO `json:"schedules"`
}

type scheduleDTO struct {
	ID            string `json:"id"`
	SessionTypeID string `json:"session_type_id"`
	WorkspaceID   int64  `json:"workspace_id"`
	Weekdays      []int  `json:"weekdays"`
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toScheduleDTO(schedule application.Schedule) scheduleDTO {
	weekdays := make([]int, 0, len(schedule.Weekdays))
	for _, day := range schedule.Weekdays {
		weekdays = append(weekdays, int(day))
	}
	return scheduleDTO{
		ID:            schedule.ID,
		SessionTypeID: schedule.SessionTypeID,
		WorkspaceID:   schedule.WorkspaceID,
		Weekdays:      weekdays,
		Hour:          schedule.Hour,
		Minute:        schedule.Minute,
		CreatedAt:     schedule.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     schedule.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toScheduleDTOs(schedules []application.Schedule) []scheduleDTO {
	if len(schedules) == 0 {
		return nil
	}
	out := make([]scheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		out = append(out, toScheduleDTO(schedule))
	}
	return out
}
