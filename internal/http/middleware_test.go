package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mindease/internal/application"
)

type fakeSessionValidator struct {
	principal    application.Principal
	workspace    *application.Workspace
	err          error
	workspaceErr error
}

func (f fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return f.principal, f.err
}

func (f fakeSessionValidator) Workspace(ctx context.Context, principal application.Principal) (*application.Workspace, error) {
	return f.workspace, f.workspaceErr
}

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			cookie    *http.Cookie
			header    string
			validator fakeSessionValidator
			status    int
			code      string
		}{
			{name: "missing credentials", status: http.StatusUnauthorized, code: "AUTH_UNAUTHORIZED"},
			{name: "non bearer header", header: "Basic abc", status: http.StatusUnauthorized, code: "AUTH_UNAUTHORIZED"},
			{
				name:      "revoked session",
				cookie:    &http.Cookie{Name: sessionCookieName, Value: "revoked"},
				validator: fakeSessionValidator{err: application.ErrSessionRevoked},
				status:    http.StatusUnauthorized,
				code:      "AUTH_SESSION_REVOKED",
			},
			{
				name:      "expired session",
				header:    "Bearer old",
				validator: fakeSessionValidator{err: fmt.Errorf("wrapped: %w", application.ErrSessionExpired)},
				status:    http.StatusUnauthorized,
				code:      "AUTH_SESSION_EXPIRED",
			},
			{
				name:      "registry failure",
				header:    "Bearer broken",
				validator: fakeSessionValidator{err: errors.New("database is locked")},
				status:    http.StatusInternalServerError,
				code:      "INTERNAL",
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookie != nil {
					req.AddCookie(tc.cookie)
				}
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				recorder := httptest.NewRecorder()

				handler := RequireSession(tc.validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				assert.Equal(t, tc.status, recorder.Code)
				assert.Contains(t, recorder.Body.String(), tc.code)
			})
		}
	})

	t.Run("attaches principal and workspace to the request context", func(t *testing.T) {
		t.Parallel()

		principal := application.Principal{UserID: "user-1", SessionID: "session-1"}
		workspace := application.NewWorkspace(application.User{ID: "user-1", Name: "Priya"}, "session-1", application.WorkspaceConfig{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-token"})
		recorder := httptest.NewRecorder()

		handler := RequireSession(fakeSessionValidator{principal: principal, workspace: workspace}, nil)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok := PrincipalFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, principal, got)

				ws, ok := WorkspaceFromContext(r.Context())
				require.True(t, ok)
				assert.Same(t, workspace, ws)
				w.WriteHeader(http.StatusOK)
			}))
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("missing workspace is treated as an expired session", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer token")
		recorder := httptest.NewRecorder()

		validator := fakeSessionValidator{workspaceErr: fmt.Errorf("%w: evicted", application.ErrSessionExpired)}
		RequireSession(validator, nil)(http.NotFoundHandler()).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	t.Parallel()

	var seen bool
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, seen)
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
	}{
		{&application.ValidationError{FieldErrors: map[string]string{"mood": "mood is invalid"}}, http.StatusUnprocessableEntity},
		{application.ErrNotFound, http.StatusNotFound},
		{application.ErrUnauthorized, http.StatusUnauthorized},
		{application.ErrSessionExpired, http.StatusUnauthorized},
		{application.ErrSessionRevoked, http.StatusUnauthorized},
		{fmt.Errorf("x: %w", application.ErrInvalidTransition), http.StatusConflict},
		{application.ErrSessionBusy, http.StatusConflict},
		{application.ErrSessionNotReady, http.StatusConflict},
		{application.ErrCapabilityUnavailable, http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		status, _ := classifyError(tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
	}
}
