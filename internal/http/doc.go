// Package http provides HTTP handlers and middleware for the workspace
// session API.
//
// The router exposes the following endpoints:
//   - POST /login: exchanges {"user_id","token"} for a bearer session. The
//     token is returned in the body, the `X-Session-Token` header and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's own session token.
//   - DELETE /sessions/{token}: revokes a specific token owned by the caller.
//   - GET/POST /workspaces/{id}/schedules, GET/DELETE
//     /workspaces/{id}/schedules/{sid}: schedule template management
//     exchanging the `scheduleDTO` payload defined in schedule_handler.go.
//     Mutations require the workspace owner role or the admin permission.
//   - POST /workspaces/{id}/schedules/{sid}/claim: claims the schedule
//     occurrence on the requested date for the acting user, materializing the
//     session row on first claim.
//   - GET /workspaces/{id}/sessions?from=&to=, GET
//     /workspaces/{id}/sessions/{sessionID}: read access to materialized
//     sessions together with their session type.
//   - GET/POST /workspaces/{id}/session-types: session type catalog
//     management exchanging the `sessionTypeDTO` payload defined in
//     session_type_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
