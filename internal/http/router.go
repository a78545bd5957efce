package http

import (
	"net/http"
	"strconv"
	"strings"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Schedules    *ScheduleHandler
	SessionTypes *SessionTypeHandler
	Sessions     *SessionHandler
	Claims       *ClaimHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
		mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.URL.Path, "/sessions/")
			if token == "" || strings.Contains(token, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteSession(w, r, token)
		})
	}

	mux.HandleFunc("/workspaces/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/workspaces/"), "/")
		segments := strings.Split(rest, "/")
		if len(segments) < 2 || segments[0] == "" {
			http.NotFound(w, r)
			return
		}

		workspaceID, err := strconv.ParseInt(segments[0], 10, 64)
		if err != nil || workspaceID <= 0 {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithWorkspaceID(r.Context(), workspaceID))

		switch segments[1] {
		case "schedules":
			routeSchedules(cfg, w, r, segments[2:])
		case "session-types":
			routeSessionTypes(cfg, w, r, segments[2:])
		case "sessions":
			routeSessions(cfg, w, r, segments[2:])
		default:
			http.NotFound(w, r)
		}
	})

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// routeSchedules dispatches both schedule CRUD and the claim sub-resource.
// The claim route only needs a claim handler, so each arm checks the handler
// it actually uses.
func routeSchedules(cfg RouterConfig, w http.ResponseWriter, r *http.Request, segments []string) {
	switch len(segments) {
	case 0:
		if cfg.Schedules == nil {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			cfg.Schedules.List(w, r)
		case http.MethodPost:
			cfg.Schedules.Create(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case 1:
		if cfg.Schedules == nil || segments[0] == "" {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithScheduleID(r.Context(), segments[0]))
		switch r.Method {
		case http.MethodGet:
			cfg.Schedules.Get(w, r)
		case http.MethodDelete:
			cfg.Schedules.Delete(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodDelete)
		}
	case 2:
		if segments[0] == "" || segments[1] != "claim" || cfg.Claims == nil {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithScheduleID(r.Context(), segments[0]))
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		cfg.Claims.Claim(w, r)
	default:
		http.NotFound(w, r)
	}
}

func routeSessionTypes(cfg RouterConfig, w http.ResponseWriter, r *http.Request, segments []string) {
	if cfg.SessionTypes == nil || len(segments) != 0 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		cfg.SessionTypes.List(w, r)
	case http.MethodPost:
		cfg.SessionTypes.Create(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func routeSessions(cfg RouterConfig, w http.ResponseWriter, r *http.Request, segments []string) {
	if cfg.Sessions == nil {
		http.NotFound(w, r)
		return
	}

	switch len(segments) {
	case 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Sessions.List(w, r)
	case 1:
		if segments[0] == "" {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithSessionID(r.Context(), segments[0]))
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Sessions.Get(w, r)
	default:
		http.NotFound(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
