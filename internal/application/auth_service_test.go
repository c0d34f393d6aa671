package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type authHarness struct {
	svc        *AuthService
	users      *userRepositoryStub
	sessions   *sessionRepositoryStub
	workspaces *WorkspaceRegistry
	now        time.Time
}

func newAuthHarness(t *testing.T, opts AuthOptions) *authHarness {
	t.Helper()

	now := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	counter := 0
	ids := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	clock := func() time.Time { return now }

	users := newUserRepositoryStub()
	sessions := newSessionRepositoryStub()
	workspaces := NewWorkspaceRegistry(WorkspaceConfig{IDGenerator: ids, Now: clock}, 8, time.Hour)
	return &authHarness{
		svc:        NewAuthService(users, sessions, workspaces, ids, clock, opts),
		users:      users,
		sessions:   sessions,
		workspaces: workspaces,
		now:        now,
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("creates user, session and workspace", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{SessionTTL: time.Hour})
		result, err := h.svc.Login(context.Background(), LoginParams{Name: " Priya ", Email: "Priya@Example.com", PreferredLanguage: "tamil"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		if result.User.Name != "Priya" || result.User.Email != "priya@example.com" || result.User.PreferredLanguage != "Tamil" {
			t.Fatalf("expected normalized user, got %#v", result.User)
		}
		if result.Session.Token == "" || result.Session.UserID != result.User.ID {
			t.Fatalf("expected session bound to the user, got %#v", result.Session)
		}
		if !result.Session.ExpiresAt.Equal(h.now.Add(time.Hour)) {
			t.Fatalf("expected ttl to be applied, got %v", result.Session.ExpiresAt)
		}
		if len(h.sessions.deleteCalls) != 1 {
			t.Fatalf("expected expired sessions to be pruned on login")
		}

		ws, err := h.workspaces.Get(result.Session.ID)
		if err != nil {
			t.Fatalf("expected workspace for session: %v", err)
		}
		if ws.Store.Len() != 0 || ws.Flow.Draft().Step != StepMood {
			t.Fatalf("expected empty workspace at the mood step")
		}
		notes := ws.DrainNotifications()
		if len(notes) != 1 || notes[0].Text != "Welcome back, Priya! Ready for today's check-in?" {
			t.Fatalf("unexpected notifications %#v", notes)
		}
	})

	t.Run("defaults preferred language to English", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		result, err := h.svc.Login(context.Background(), LoginParams{Name: "Sam", Email: "sam@example.com"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.User.PreferredLanguage != "English" {
			t.Fatalf("expected English, got %q", result.User.PreferredLanguage)
		}
	})

	t.Run("seeds demo check-ins when enabled", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{SeedDemo: true})
		result, err := h.svc.Login(context.Background(), LoginParams{Name: "Sam", Email: "sam@example.com"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		ws, _ := h.workspaces.Get(result.Session.ID)
		latest, ok := ws.Store.Latest()
		if ws.Store.Len() != 2 || !ok || latest.Mood != MoodHappy {
			t.Fatalf("expected two demo check-ins with Happy latest, got %d", ws.Store.Len())
		}
	})

	t.Run("rejects invalid forms", func(t *testing.T) {
		t.Parallel()

		tests := map[string]struct {
			params LoginParams
			field  string
		}{
			"missing name":     {LoginParams{Email: "a@example.com"}, "name"},
			"missing email":    {LoginParams{Name: "A"}, "email"},
			"malformed email":  {LoginParams{Name: "A", Email: "not-an-email"}, "email"},
			"display name":     {LoginParams{Name: "A", Email: "A <a@example.com>"}, "email"},
			"unknown language": {LoginParams{Name: "A", Email: "a@example.com", PreferredLanguage: "Klingon"}, "preferred_language"},
		}
		for name, tc := range tests {
			t.Run(name, func(t *testing.T) {
				h := newAuthHarness(t, AuthOptions{})
				_, err := h.svc.Login(context.Background(), tc.params)
				var vErr *ValidationError
				if !errors.As(err, &vErr) || vErr.FieldErrors[tc.field] == "" {
					t.Fatalf("expected %s validation error, got %v", tc.field, err)
				}
				if len(h.users.users) != 0 || h.workspaces.Len() != 0 {
					t.Fatalf("expected nothing to be created")
				}
			})
		}
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		h := newAuthHarness(t, AuthOptions{})
		h.sessions.createErr = expected
		if _, err := h.svc.Login(context.Background(), LoginParams{Name: "A", Email: "a@example.com"}); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
		if h.workspaces.Len() != 0 {
			t.Fatalf("expected no workspace without a session")
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns principal for active session", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		result, err := h.svc.Login(context.Background(), LoginParams{Name: "A", Email: "a@example.com"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}

		principal, err := h.svc.ValidateSession(context.Background(), " "+result.Session.Token+" ")
		if err != nil {
			t.Fatalf("ValidateSession failed: %v", err)
		}
		if principal.UserID != result.User.ID || principal.SessionID != result.Session.ID {
			t.Fatalf("unexpected principal: %#v", principal)
		}
		if _, err := h.svc.Workspace(context.Background(), principal); err != nil {
			t.Fatalf("expected workspace lookup to succeed: %v", err)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		h.users.users["user-1"] = User{ID: "user-1"}
		h.sessions.seed(Session{ID: "session-1", UserID: "user-1", Token: "token", ExpiresAt: h.now.Add(-time.Minute)})
		h.workspaces.Open(User{ID: "user-1"}, "session-1")

		if _, err := h.svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if h.workspaces.Len() != 0 {
			t.Fatalf("expected expired session workspace to be discarded")
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		revoked := h.now.Add(-time.Minute)
		h.users.users["user-1"] = User{ID: "user-1"}
		h.sessions.seed(Session{ID: "session-1", UserID: "user-1", Token: "token", ExpiresAt: h.now.Add(time.Hour), RevokedAt: &revoked})

		if _, err := h.svc.ValidateSession(context.Background(), "token"); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("maps missing tokens and users to unauthorized", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		h.sessions.seed(Session{ID: "session-1", UserID: "ghost", Token: "token", ExpiresAt: h.now.Add(time.Hour)})

		for _, token := range []string{"  ", "unknown", "token"} {
			if _, err := h.svc.ValidateSession(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
			}
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		h := newAuthHarness(t, AuthOptions{})
		h.sessions.getErr = expected
		if _, err := h.svc.ValidateSession(context.Background(), "token"); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	t.Run("revokes the session and discards the workspace", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		result, err := h.svc.Login(context.Background(), LoginParams{Name: "A", Email: "a@example.com"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		ws, _ := h.workspaces.Get(result.Session.ID)
		session, _, err := ws.StartDialogue(context.Background())
		if err != nil {
			t.Fatalf("StartDialogue failed: %v", err)
		}

		if err := h.svc.Logout(context.Background(), result.Session.Token); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if stored := h.sessions.sessionsByID[result.Session.ID]; stored.RevokedAt == nil {
			t.Fatalf("expected RevokedAt to be set")
		}
		if _, err := h.workspaces.Get(result.Session.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected workspace to be discarded, got %v", err)
		}
		if session.State() != DialogueClosed {
			t.Fatalf("expected open dialogue to be closed, got %s", session.State())
		}
		if _, err := h.svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected revoked session afterwards, got %v", err)
		}
	})

	t.Run("requires a known token", func(t *testing.T) {
		t.Parallel()

		h := newAuthHarness(t, AuthOptions{})
		if err := h.svc.Logout(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for blank token, got %v", err)
		}
		if err := h.svc.Logout(context.Background(), "missing"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
		}
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("boom")
		h := newAuthHarness(t, AuthOptions{})
		h.sessions.revokeErr = expected
		if err := h.svc.Logout(context.Background(), "token"); !errors.Is(err, expected) {
			t.Fatalf("expected %v, got %v", expected, err)
		}
	})
}

// userRepositoryStub implements UserRepository for tests.
type userRepositoryStub struct {
	users map[string]User
	err   error
}

func newUserRepositoryStub() *userRepositoryStub {
	return &userRepositoryStub{users: make(map[string]User)}
}

func (u *userRepositoryStub) CreateUser(ctx context.Context, user User) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	u.users[user.ID] = user
	return user, nil
}

func (u *userRepositoryStub) GetUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	user, ok := u.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	sessionsByID map[string]Session
	tokenToID    map[string]string

	createErr error
	getErr    error
	revokeErr error
	deleteErr error

	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{
		sessionsByID: make(map[string]Session),
		tokenToID:    make(map[string]string),
	}
}

func (s *sessionRepositoryStub) seed(session Session) {
	s.sessionsByID[session.ID] = cloneSession(session)
	s.tokenToID[session.Token] = session.ID
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.seed(session)
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) GetSession(ctx context.Context, token string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(s.sessionsByID[id]), nil
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	id, ok := s.tokenToID[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session := s.sessionsByID[id]
	revoked := revokedAt.UTC()
	session.RevokedAt = &revoked
	s.sessionsByID[id] = session
	return cloneSession(session), nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	cutoff := reference.UTC()
	s.deleteCalls = append(s.deleteCalls, cutoff)
	for id, session := range s.sessionsByID {
		if session.ExpiresAt.IsZero() {
			continue
		}
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessionsByID, id)
			delete(s.tokenToID, session.Token)
		}
	}
	return nil
}

func cloneSession(session Session) Session {
	clone := session
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC()
		clone.RevokedAt = &revoked
	}
	return clone
}
