package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/mindease/internal/application"
)

type resourceCatalog interface {
	All() []application.Resource
}

type recommendationService interface {
	ForLatest(ctx context.Context, latest application.CheckIn, ok bool) application.Recommendations
}

// ResourceHandler serves the resource library, favorites and recommendations.
type ResourceHandler struct {
	catalog         resourceCatalog
	recommendations recommendationService
	responder       responder
	logger          *slog.Logger
}

func NewResourceHandler(catalog resourceCatalog, recommendations recommendationService, logger *slog.Logger) *ResourceHandler {
	base := defaultLogger(logger)
	return &ResourceHandler{catalog: catalog, recommendations: recommendations, responder: newResponder(base), logger: base}
}

// List filters the catalog by ?type= against the latest mood (Calm before the
// first check-in) and the user's language.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	filter, valid := application.ParseResourceFilter(r.URL.Query().Get("type"))
	if !valid {
		h.responder.handleServiceError(r.Context(), w, fieldValidation("type", "type must be one of all, article, video, movie, song"))
		return
	}

	resources := application.FilterResources(h.catalog.All(), filter, ws.ResourceMood(), ws.User.PreferredLanguage)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceListResponse{
		Filter:    string(filter),
		Resources: toResourceDTOs(resources, ws.Store),
	})
}

// Favorites lists favorited catalog entries in catalog order.
func (h *ResourceHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	resources := application.FavoriteResources(h.catalog.All(), ws.Store.Favorites())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceListResponse{Resources: toResourceDTOs(resources, ws.Store)})
}

// ToggleFavorite flips the favorite flag for /favorites/{id}.
func (h *ResourceHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.handleServiceError(r.Context(), w, fieldValidation("id", "resource id is required"))
		return
	}

	favorite := ws.Store.ToggleFavorite(id)
	handlerLogger(r.Context(), h.logger, "ResourceHandler", "ToggleFavorite").
		DebugContext(r.Context(), "favorite toggled", "resource_id", id, "favorite", favorite)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, favoriteResponse{ID: id, Favorite: favorite})
}

// Recommendations asks for suggestions based on the latest check-in.
func (h *ResourceHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	latest, found := ws.Store.Latest()
	result := h.recommendations.ForLatest(r.Context(), latest, found)

	resp := recommendationsResponse{Status: string(result.Status), Items: make([]recommendationDTO, 0, len(result.Items))}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, recommendationDTO{Title: item.Title, Reason: item.Reason, Type: item.Type})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type resourceListResponse struct {
	Filter    string        `json:"filter,omitempty"`
	Resources []resourceDTO `json:"resources"`
}

type favoriteResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
}

type recommendationDTO struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Type   string `json:"type"`
}

type recommendationsResponse struct {
	Status string              `json:"status"`
	Items  []recommendationDTO `json:"items"`
}
