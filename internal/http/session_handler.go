package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/workspace-sessions/internal/application"
)

type sessionQueryService interface {
	ListSessions(ctx context.Context, params application.ListSessionsParams) ([]application.SessionWithType, error)
	GetSession(ctx context.Context, workspaceID int64, sessionID string) (application.SessionWithType, error)
}

type SessionHandler struct {
	service   sessionQueryService
	responder responder
}

func NewSessionHandler(service sessionQueryService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildSessionListParams(r.URL.Query(), principal, workspaceID)

	sessions, err := h.service.ListSessions(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: toSessionWithTypeDTOs(sessions)})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}
	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	session, err := h.service.GetSession(r.Context(), workspaceID, sessionID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionWithTypeDTO{
		Session: toSessionDTO(session.Session),
		Type:    toSessionTypeDTO(session.Type),
	})
}

func buildSessionListParams(values url.Values, principal application.Principal, workspaceID int64) application.ListSessionsParams {
	params := application.ListSessionsParams{Principal: principal, WorkspaceID: workspaceID}

	if from := strings.TrimSpace(values.Get("from")); from != "" {
		if ts, ok := parseDate(from); ok {
			params.From = &ts
		}
	}
	if to := strings.TrimSpace(values.Get("to")); to != "" {
		if ts, ok := parseDate(to); ok {
			params.To = &ts
		}
	}

	return params
}

type listSessionsResponse struct {
	Sessions []sessionWithTypeDTO `json:"sessions"`
}

type sessionWithTypeDTO struct {
	Session sessionDTO     `json:"session"`
	Type    sessionTypeDTO `json:"session_type"`
}

type sessionDTO struct {
	ID            string `json:"id"`
	SessionTypeID string `json:"session_type_id"`
	Date          string `json:"date"`
	OwnerID       *int64 `json:"owner_id"`
	StartedAt     string `json:"started_at"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:            session.ID,
		SessionTypeID: session.SessionTypeID,
		Date:          session.Date.UTC().Format(time.RFC3339Nano),
		OwnerID:       session.OwnerID,
		StartedAt:     session.StartedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSessionWithTypeDTOs(sessions []application.SessionWithType) []sessionWithTypeDTO {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]sessionWithTypeDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionWithTypeDTO{
			Session: toSessionDTO(session.Session),
			Type:    toSessionTypeDTO(session.Type),
		})
	}
	return out
}
