package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SessionService answers read queries over materialized session instances.
type SessionService struct {
	sessions     SessionStore
	sessionTypes SessionTypeDirectory
	logger       *slog.Logger
}

// NewSessionService wires dependencies for session queries.
func NewSessionService(sessions SessionStore, sessionTypes SessionTypeDirectory) *SessionService {
	return NewSessionServiceWithLogger(sessions, sessionTypes, nil)
}

// NewSessionServiceWithLogger constructs a SessionService with a specified logger.
func NewSessionServiceWithLogger(sessions SessionStore, sessionTypes SessionTypeDirectory, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions:     sessions,
		sessionTypes: sessionTypes,
		logger:       defaultLogger(logger),
	}
}

// ListSessions enumerates session instances in a workspace, optionally
// bounded by a time range, ordered by occurrence date.
func (s *SessionService) ListSessions(ctx context.Context, params ListSessionsParams) ([]SessionWithType, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session store not configured")
	}

	vErr := &ValidationError{}
	if params.WorkspaceID <= 0 {
		vErr.add("workspace_id", "workspace id is required")
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		vErr.add("range", "range end must not precede range start")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	sessions, err := s.sessions.ListSessions(ctx, params.WorkspaceID, params.From, params.To)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, mapRepoError(err)
	}

	return s.attachTypes(ctx, sessions)
}

// GetSession retrieves a single session instance together with its type.
func (s *SessionService) GetSession(ctx context.Context, workspaceID int64, sessionID string) (SessionWithType, error) {
	if s == nil || s.sessions == nil {
		return SessionWithType{}, fmt.Errorf("session store not configured")
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return SessionWithType{}, mapRepoError(err)
	}

	sessionType, err := s.lookupType(ctx, session.SessionTypeID)
	if err != nil {
		return SessionWithType{}, err
	}
	if sessionType.WorkspaceID != workspaceID {
		return SessionWithType{}, ErrNotFound
	}

	return SessionWithType{Session: session, Type: sessionType}, nil
}

func (s *SessionService) attachTypes(ctx context.Context, sessions []Session) ([]SessionWithType, error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	// Session lists within one workspace reuse a small set of types; cache
	// lookups per request.
	typeCache := make(map[string]SessionType)
	out := make([]SessionWithType, 0, len(sessions))
	for _, session := range sessions {
		sessionType, ok := typeCache[session.SessionTypeID]
		if !ok {
			var err error
			sessionType, err = s.lookupType(ctx, session.SessionTypeID)
			if err != nil {
				return nil, err
			}
			typeCache[session.SessionTypeID] = sessionType
		}
		out = append(out, SessionWithType{Session: session, Type: sessionType})
	}
	return out, nil
}

func (s *SessionService) lookupType(ctx context.Context, id string) (SessionType, error) {
	if s.sessionTypes == nil {
		return SessionType{}, fmt.Errorf("session type directory not configured")
	}
	sessionType, err := s.sessionTypes.GetSessionType(ctx, id)
	if err != nil {
		return SessionType{}, mapRepoError(err)
	}
	return sessionType, nil
}
