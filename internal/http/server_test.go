package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/mindease/internal/application"
	"github.com/example/mindease/internal/testfixtures"
)

type testServer struct {
	t           *testing.T
	server      *httptest.Server
	factory     *testfixtures.ServiceFactory
	generator   *testfixtures.TextGeneratorStub
	recommender *testfixtures.RecommenderStub
	registry    *application.WorkspaceRegistry
}

type serverOption func(*application.AuthOptions)

func withDemoSeed() serverOption {
	return func(o *application.AuthOptions) { o.SeedDemo = true }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	var authOpts application.AuthOptions
	for _, opt := range opts {
		opt(&authOpts)
	}

	factory := testfixtures.NewServiceFactory()
	generator := &testfixtures.TextGeneratorStub{Reply: "Thank you for sharing that with me."}
	recommender := &testfixtures.RecommenderStub{}
	registry := factory.NewWorkspaceRegistry(generator, 8)
	auth := factory.NewAuthService(testfixtures.AuthServiceDeps{Workspaces: registry, Options: authOpts})

	router := NewRouter(RouterConfig{
		Auth:      NewAuthHandler(auth, nil),
		CheckIns:  NewCheckInHandler(nil),
		Insights:  NewInsightsHandler(time.UTC, nil),
		Resources: NewResourceHandler(application.DefaultCatalog(), factory.NewRecommendationService(recommender), nil),
		Companion: NewCompanionHandler(nil, nil),
		Workspace: NewWorkspaceHandler(nil),
		Session:   RequireSession(auth, nil),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(nil),
		},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{t: t, server: server, factory: factory, generator: generator, recommender: recommender, registry: registry}
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (s *testServer) do(method, path, token string, body any, out any) *http.Response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) login(name string) string {
	s.t.Helper()

	var out loginResponse
	resp := s.do(http.MethodPost, "/sessions", "", map[string]string{
		"name":  name,
		"email": "visitor@example.com",
	}, &out)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

// finishCheckIn walks the wizard with the given mood and factors.
func (s *testServer) finishCheckIn(token, mood string, factors ...string) checkInDTO {
	s.t.Helper()

	require.Equal(s.t, http.StatusOK, s.do(http.MethodPut, "/checkins/draft", token, map[string]string{"mood": mood}, nil).StatusCode)
	s.do(http.MethodPost, "/checkins/draft/next", token, nil, nil)
	s.do(http.MethodPost, "/checkins/draft/next", token, nil, nil)
	for _, f := range factors {
		require.Equal(s.t, http.StatusOK, s.do(http.MethodPost, "/checkins/draft/factors", token, map[string]string{"factor": f}, nil).StatusCode)
	}
	s.do(http.MethodPost, "/checkins/draft/next", token, nil, nil)
	s.do(http.MethodPost, "/checkins/draft/next", token, nil, nil)

	var out checkInResponse
	resp := s.do(http.MethodPost, "/checkins/draft/finish", token, nil, &out)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	return out.CheckIn
}
