package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/mindease/internal/application"
	"github.com/example/mindease/internal/config"
	httptransport "github.com/example/mindease/internal/http"
	"github.com/example/mindease/internal/llm"
	"github.com/example/mindease/internal/logging"
	"github.com/example/mindease/internal/persistence"
	"github.com/example/mindease/internal/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		stop()
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Companion replies may take up to the reply timeout.
		WriteTimeout: cfg.ReplyTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("mindease API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type app struct {
	handler http.Handler
	storage *sqlite.Storage
}

func (a *app) Close() {
	if a != nil && a.storage != nil {
		_ = a.storage.Close()
	}
}

// newApp wires storage, capabilities, services and the router.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	catalog := application.DefaultCatalog()
	if cfg.CatalogPath != "" {
		if catalog, err = application.LoadCatalog(cfg.CatalogPath); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	logger.Info("resource catalog loaded", "resources", catalog.Len())

	var (
		generator   application.TextGenerator
		recommender application.Recommender
	)
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		generator, recommender = client, client
		logger.Info("companion capability enabled", "model", client.Name())
	} else {
		logger.Warn("no Gemini API key configured, companion replies and recommendations are unavailable")
	}

	idGenerator := uuid.NewString
	now := time.Now

	workspaces := application.NewWorkspaceRegistry(application.WorkspaceConfig{
		Generator:    generator,
		IDGenerator:  idGenerator,
		Now:          now,
		ReplyTimeout: cfg.ReplyTimeout,
		Logger:       logger,
	}, cfg.MaxSessions, cfg.SessionTTL)

	authService := application.NewAuthServiceWithLogger(
		newUserRepositoryAdapter(storage),
		newSessionRepositoryAdapter(storage),
		workspaces,
		idGenerator,
		now,
		application.AuthOptions{SessionTTL: cfg.SessionTTL, SeedDemo: cfg.SeedDemo},
		logger,
	)
	recommendations := application.NewRecommendationService(recommender, application.RecommendationOptions{
		CacheTTL: cfg.RecommendationTTL,
		Timeout:  cfg.ReplyTimeout,
	}, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		CheckIns:  httptransport.NewCheckInHandler(logger),
		Insights:  httptransport.NewInsightsHandler(cfg.Location, logger),
		Resources: httptransport.NewResourceHandler(catalog, recommendations, logger),
		Companion: httptransport.NewCompanionHandler(nil, logger),
		Workspace: httptransport.NewWorkspaceHandler(logger),
		Session:   httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	return &app{handler: router, storage: storage}, nil
}

// translateError maps persistence sentinels onto the application ones.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return fmt.Errorf("%w: %v", application.ErrNotFound, err)
	}
	return err
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	model := persistence.User{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		PreferredLanguage: user.PreferredLanguage,
		CreatedAt:         user.CreatedAt,
	}
	if err := a.repo.CreateUser(ctx, model); err != nil {
		return application.User{}, translateError(err)
	}
	return a.GetUser(ctx, user.ID)
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, translateError(err)
	}
	return application.User{
		ID:                stored.ID,
		Name:              stored.Name,
		Email:             stored.Email,
		PreferredLanguage: stored.PreferredLanguage,
		CreatedAt:         stored.CreatedAt,
	}, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, translateError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return translateError(a.repo.DeleteExpiredSessions(ctx, reference))
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		RevokedAt: model.RevokedAt,
	}
}
