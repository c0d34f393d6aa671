package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		var out loginResponse
		resp := srv.do(http.MethodPost, "/sessions", "", map[string]string{
			"name":               " Priya ",
			"email":              "Priya@Example.com",
			"preferred_language": "tamil",
		}, &out)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, out.Token, resp.Header.Get("X-Session-Token"))
		assert.Equal(t, "Priya", out.User.Name)
		assert.Equal(t, "priya@example.com", out.User.Email)
		assert.Equal(t, "Tamil", out.User.PreferredLanguage)

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == sessionCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.Equal(t, out.Token, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("login rejects invalid form values", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		var out errorResponse
		resp := srv.do(http.MethodPost, "/sessions", "", map[string]string{
			"email":              "not-an-email",
			"preferred_language": "Klingon",
		}, &out)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", out.ErrorCode)
		assert.Contains(t, out.Errors, "name")
		assert.Contains(t, out.Errors, "email")
		assert.Contains(t, out.Errors, "preferred_language")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		resp := srv.do(http.MethodPost, "/sessions", "", "just a string", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("logout revokes the session and discards the workspace", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		token := srv.login("Sam")
		require.Equal(t, 1, srv.registry.Len())

		resp := srv.do(http.MethodDelete, "/sessions/current", token, nil, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, 0, srv.registry.Len())

		var out errorResponse
		resp = srv.do(http.MethodGet, "/checkins", token, nil, &out)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "AUTH_SESSION_REVOKED", out.ErrorCode)
	})

	t.Run("logout without token is unauthorized", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		resp := srv.do(http.MethodDelete, "/sessions/current", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
