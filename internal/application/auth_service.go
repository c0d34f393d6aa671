package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists the mocked login accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// SessionRepository captures the persistence interactions for issued sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthOptions tune session issuance.
type AuthOptions struct {
	SessionTTL time.Duration
	SeedDemo   bool
}

// AuthService runs the mocked login: every valid form submission creates a
// new user, a session token and an empty workspace.
type AuthService struct {
	users          UserRepository
	sessions       SessionRepository
	workspaces     *WorkspaceRegistry
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	seedDemo       bool
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(users UserRepository, sessions SessionRepository, workspaces *WorkspaceRegistry, idGenerator func() string, now func() time.Time, opts AuthOptions) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, workspaces, idGenerator, now, opts, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserRepository, sessions SessionRepository, workspaces *WorkspaceRegistry, idGenerator func() string, now func() time.Time, opts AuthOptions, logger *slog.Logger) *AuthService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		workspaces:     workspaces,
		idGenerator:    idGenerator,
		tokenGenerator: idGenerator,
		now:            now,
		sessionTTL:     opts.SessionTTL,
		seedDemo:       opts.SeedDemo,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

func (s *AuthService) ready() error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}
	if s.workspaces == nil {
		return fmt.Errorf("workspace registry not configured")
	}
	return nil
}

func validateLogin(params LoginParams) (LoginParams, *ValidationError) {
	vErr := &ValidationError{}
	out := LoginParams{
		Name:              strings.TrimSpace(params.Name),
		Email:             strings.TrimSpace(strings.ToLower(params.Email)),
		PreferredLanguage: strings.TrimSpace(params.PreferredLanguage),
	}

	if out.Name == "" {
		vErr.add("name", "name is required")
	}
	if out.Email == "" {
		vErr.add("email", "email is required")
	} else if addr, err := mail.ParseAddress(out.Email); err != nil || addr.Address != out.Email {
		vErr.add("email", "email is invalid")
	}
	if out.PreferredLanguage == "" {
		out.PreferredLanguage = Languages[0]
	} else if idx := slices.IndexFunc(Languages, func(l string) bool { return strings.EqualFold(l, out.PreferredLanguage) }); idx >= 0 {
		out.PreferredLanguage = Languages[idx]
	} else {
		vErr.add("preferred_language", "preferred language is not supported")
	}
	return out, vErr
}

// Login validates the form, registers the user and opens a workspace bound to the new session.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Login")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"session_id", result.Session.ID,
		).InfoContext(ctx, "login succeeded")
	}()

	params, vErr := validateLogin(params)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	var user User
	user, err = s.users.CreateUser(ctx, User{
		ID:                s.idGenerator(),
		Name:              params.Name,
		Email:             params.Email,
		PreferredLanguage: params.PreferredLanguage,
		CreatedAt:         now,
	})
	if err != nil {
		return
	}

	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	var session Session
	session, err = s.sessions.CreateSession(ctx, Session{
		ID:        s.idGenerator(),
		UserID:    user.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	})
	if err != nil {
		return
	}

	ws := s.workspaces.Open(user, session.ID)
	if s.seedDemo {
		ws.SeedDemoCheckIns()
	}

	result = LoginResult{User: user, Session: session}
	return
}

// ValidateSession verifies that the token belongs to an active session and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if err = s.ready(); err != nil {
		return
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		err = ErrUnauthorized
		return
	}

	var session Session
	session, err = s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	now := s.now()
	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		err = ErrSessionRevoked
		return
	}
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(now) {
		s.workspaces.Discard(session.ID)
		err = ErrSessionExpired
		return
	}

	var user User
	user, err = s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}

	principal = Principal{UserID: user.ID, SessionID: session.ID}
	return
}

// Workspace resolves the live workspace for an authenticated principal.
func (s *AuthService) Workspace(ctx context.Context, principal Principal) (*Workspace, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.Get(principal.SessionID)
	if err != nil {
		s.loggerWith(ctx, "Workspace", "session_id", principal.SessionID).
			WarnContext(ctx, "workspace missing for valid session", "error", err, "error_kind", ErrorKind(err))
		return nil, fmt.Errorf("%w: workspace expired", ErrSessionExpired)
	}
	return ws, nil
}

// Logout revokes the token and discards the whole workspace, including any open dialogue.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "Logout")

	session, err := s.sessions.RevokeSession(ctx, trimmed, s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "failed to revoke session", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
			return ErrUnauthorized
		}
		logger.ErrorContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	s.workspaces.Discard(session.ID)

	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "failed to prune expired sessions", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "session revoked", "session_id", session.ID, "user_id", session.UserID)
	return nil
}
