package http

import (
	"context"

	"github.com/example/workspace-sessions/internal/application"
)

type contextKey string

const (
	principalContextKey   contextKey = "principal"
	workspaceIDContextKey contextKey = "workspace_id"
	scheduleIDContextKey  contextKey = "schedule_id"
	sessionIDContextKey   contextKey = "session_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithWorkspaceID injects the workspace identifier resolved from the request path.
func ContextWithWorkspaceID(ctx context.Context, workspaceID int64) context.Context {
	return context.WithValue(ctx, workspaceIDContextKey, workspaceID)
}

// WorkspaceIDFromContext extracts a workspace identifier previously associated with the context.
func WorkspaceIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(workspaceIDContextKey).(int64)
	return id, ok
}

// ContextWithScheduleID injects the schedule identifier resolved from the request path.
func ContextWithScheduleID(ctx context.Context, scheduleID string) context.Context {
	return context.WithValue(ctx, scheduleIDContextKey, scheduleID)
}

// ScheduleIDFromContext extracts a schedule identifier previously associated with the context.
func ScheduleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scheduleIDContextKey).(string)
	return id, ok
}

// ContextWithSessionID injects the session identifier resolved from the request path.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

// SessionIDFromContext extracts a session identifier previously associated with the context.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}
