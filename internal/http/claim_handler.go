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

type claimService interface {
	ClaimSession(ctx context.Context, params application.ClaimSessionParams) (application.ClaimResult, error)
}

type ClaimHandler struct {
	service   claimService
	responder responder
	logger    *slog.Logger
}

func NewClaimHandler(service claimService, logger *slog.Logger) *ClaimHandler {
	base := defaultLogger(logger)
	return &ClaimHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ClaimHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClaimHandler", operation, attrs...)
}

// Claim assigns the acting user as owner of the schedule occurrence on the
// requested date, creating the session row on first claim.
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
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

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Claim", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode claim request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	date, ok := parseDate(req.Date)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.log(r.Context(), "Claim", "error_kind", "unauthorized").ErrorContext(r.Context(), "unauthenticated claim attempt")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	logger := h.log(r.Context(), "Claim",
		"workspace_id", workspaceID,
		"schedule_id", scheduleID,
		"user_id", principal.UserID,
	)

	result, err := h.service.ClaimSession(r.Context(), application.ClaimSessionParams{
		Principal:   principal,
		WorkspaceID: workspaceID,
		ScheduleID:  scheduleID,
		Date:        date,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "claim rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", result.Session.ID).InfoContext(r.Context(), "claim committed")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, claimResponse{
		Success: true,
		Session: toSessionDTO(result.Session),
		Type:    toSessionTypeDTO(result.Type),
	})
}

type claimRequest struct {
	Date string `json:"date"`
}

type claimResponse struct {
	Success bool           `json:"success"`
	Session sessionDTO     `json:"session"`
	Type    sessionTypeDTO `json:"session_type"`
}

// parseDate accepts a calendar date or a full timestamp; either way only the
// UTC calendar day is significant to the claim flow.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
