package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/mindease/internal/application"
)

// ServiceFactory builds application services wired to a shared manual clock
// and predictable identifiers.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Clock = clock }
}

func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.IDGenerator = generator }
}

func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Logger = logger }
}

// WorkspaceConfig returns a workspace configuration using the factory clock
// and identifiers.
func (f *ServiceFactory) WorkspaceConfig(generator application.TextGenerator) application.WorkspaceConfig {
	return application.WorkspaceConfig{
		Generator:    generator,
		IDGenerator:  f.IDGenerator.NextFunc(),
		Now:          f.Clock.NowFunc(),
		ReplyTimeout: time.Second,
		Logger:       f.Logger,
	}
}

// NewWorkspaceRegistry builds a registry with room for maxEntries live sessions.
func (f *ServiceFactory) NewWorkspaceRegistry(generator application.TextGenerator, maxEntries int) *application.WorkspaceRegistry {
	return application.NewWorkspaceRegistry(f.WorkspaceConfig(generator), maxEntries, 12*time.Hour)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
// Nil repositories default to one shared MemoryAccounts.
type AuthServiceDeps struct {
	Users      application.UserRepository
	Sessions   application.SessionRepository
	Workspaces *application.WorkspaceRegistry
	Generator  application.TextGenerator
	Options    application.AuthOptions
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	if deps.Users == nil || deps.Sessions == nil {
		accounts := NewMemoryAccounts()
		if deps.Users == nil {
			deps.Users = accounts
		}
		if deps.Sessions == nil {
			deps.Sessions = accounts
		}
	}
	if deps.Workspaces == nil {
		deps.Workspaces = f.NewWorkspaceRegistry(deps.Generator, 0)
	}
	return application.NewAuthServiceWithLogger(
		deps.Users,
		deps.Sessions,
		deps.Workspaces,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		deps.Options,
		f.Logger,
	)
}

// NewRecommendationService builds a recommendation service with a short timeout.
func (f *ServiceFactory) NewRecommendationService(recommender application.Recommender) *application.RecommendationService {
	return application.NewRecommendationService(recommender, application.RecommendationOptions{
		Timeout: time.Second,
	}, f.Logger)
}
