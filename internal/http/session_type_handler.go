package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-sessions/internal/application"
)

type sessionTypeService interface {
	CreateSessionType(ctx context.Context, params application.CreateSessionTypeParams) (application.SessionType, error)
	ListSessionTypes(ctx context.Context, workspaceID int64) ([]application.SessionType, error)
}

type SessionTypeHandler struct {
	service   sessionTypeService
	responder responder
}

func NewSessionTypeHandler(service sessionTypeService, logger *slog.Logger) *SessionTypeHandler {
	return &SessionTypeHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}

	var req sessionTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	sessionType, err := h.service.CreateSessionType(r.Context(), application.CreateSessionTypeParams{
		Principal:   principal,
		WorkspaceID: workspaceID,
		Input: application.SessionTypeInput{
			Name:           strings.TrimSpace(req.Name),
			HostingRoleIDs: append([]string(nil), req.HostingRoleIDs...),
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionTypeResponse{SessionType: toSessionTypeDTO(sessionType)})
}

func (h *SessionTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workspaceID, ok := WorkspaceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkspaceID)
		return
	}

	sessionTypes, err := h.service.ListSessionTypes(r.Context(), workspaceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionTypesResponse{SessionTypes: toSessionTypeDTOs(sessionTypes)})
}

type sessionTypeRequest struct {
	Name           string   `json:"name"`
	HostingRoleIDs []string `json:"hosting_role_ids"`
}

type sessionTypeResponse struct {
	SessionType sessionTypeDTO `json:"session_type"`
}

type listSessionTypesResponse struct {
	SessionTypes []sessionTypeDTO `json:"session_types"`
}

type sessionTypeDTO struct {
	ID             string   `json:"id"`
	WorkspaceID    int64    `json:"workspace_id"`
	Name           string   `json:"name"`
	HostingRoleIDs []string `json:"hosting_role_ids"`
}

func toSessionTypeDTO(sessionType application.SessionType) sessionTypeDTO {
	return sessionTypeDTO{
		ID:             sessionType.ID,
		WorkspaceID:    sessionType.WorkspaceID,
		Name:           sessionType.Name,
		HostingRoleIDs: append([]string(nil), sessionType.HostingRoleIDs...),
	}
}

func toSessionTypeDTOs(sessionTypes []application.SessionType) []sessionTypeDTO {
	if len(sessionTypes) == 0 {
		return nil
	}
	out := make([]sessionTypeDTO, 0, len(sessionTypes))
	for _, sessionType := range sessionTypes {
		out = append(out, toSessionTypeDTO(sessionType))
	}
	return out
}
