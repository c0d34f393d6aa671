package http

import (
	"net/http"
)

type RouterConfig struct {
	Auth      *AuthHandler
	CheckIns  *CheckInHandler
	Insights  *InsightsHandler
	Resources *ResourceHandler
	Companion *CompanionHandler
	Workspace *WorkspaceHandler
	// Session guards every route except login.
	Session    func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := func(h http.HandlerFunc) http.Handler {
		if cfg.Session == nil {
			return h
		}
		return cfg.Session(h)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /sessions", cfg.Auth.CreateSession)
		mux.HandleFunc("DELETE /sessions/current", cfg.Auth.DeleteCurrentSession)
	}

	if cfg.CheckIns != nil {
		mux.Handle("GET /checkins", guard(cfg.CheckIns.List))
		mux.Handle("GET /checkins/draft", guard(cfg.CheckIns.Draft))
		mux.Handle("PUT /checkins/draft", guard(cfg.CheckIns.UpdateDraft))
		mux.Handle("POST /checkins/draft/factors", guard(cfg.CheckIns.ToggleFactor))
		mux.Handle("POST /checkins/draft/next", guard(cfg.CheckIns.Next))
		mux.Handle("POST /checkins/draft/back", guard(cfg.CheckIns.Back))
		mux.Handle("POST /checkins/draft/finish", guard(cfg.CheckIns.Finish))
	}

	if cfg.Insights != nil {
		mux.Handle("GET /dashboard", guard(cfg.Insights.Dashboard))
		mux.Handle("GET /calendar", guard(cfg.Insights.CalendarDay))
		mux.Handle("GET /calendar/{year}/{month}", guard(cfg.Insights.CalendarMonth))
	}

	if cfg.Resources != nil {
		mux.Handle("GET /resources", guard(cfg.Resources.List))
		mux.Handle("GET /favorites", guard(cfg.Resources.Favorites))
		mux.Handle("POST /favorites/{id}", guard(cfg.Resources.ToggleFavorite))
		mux.Handle("GET /recommendations", guard(cfg.Resources.Recommendations))
	}

	if cfg.Companion != nil {
		mux.Handle("POST /companion/session", guard(cfg.Companion.StartSession))
		mux.Handle("DELETE /companion/session", guard(cfg.Companion.DeleteSession))
		mux.Handle("GET /companion/messages", guard(cfg.Companion.Messages))
		mux.Handle("POST /companion/messages", guard(cfg.Companion.Submit))
		mux.Handle("GET /companion/ws", guard(cfg.Companion.Stream))
	}

	if cfg.Workspace != nil {
		mux.Handle("GET /notifications", guard(cfg.Workspace.Notifications))
		mux.Handle("GET /affirmation", guard(cfg.Workspace.Affirmation))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
