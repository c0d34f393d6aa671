package http

import (
	"context"

	"github.com/example/mindease/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	workspaceContextKey contextKey = "workspace"
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

// ContextWithWorkspace attaches the session's workspace resolved by RequireSession.
func ContextWithWorkspace(ctx context.Context, workspace *application.Workspace) context.Context {
	return context.WithValue(ctx, workspaceContextKey, workspace)
}

// WorkspaceFromContext returns the workspace attached by RequireSession.
func WorkspaceFromContext(ctx context.Context) (*application.Workspace, bool) {
	workspace, ok := ctx.Value(workspaceContextKey).(*application.Workspace)
	return workspace, ok && workspace != nil
}
