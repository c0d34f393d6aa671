package http

import (
	"log/slog"
	"net/http"
	"time"
)

// WorkspaceHandler serves the per-session notifications and affirmation.
type WorkspaceHandler struct {
	responder responder
}

func NewWorkspaceHandler(logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{responder: newResponder(defaultLogger(logger))}
}

// Notifications drains the queue, newest first.
func (h *WorkspaceHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	queued := ws.DrainNotifications()
	resp := notificationsResponse{Notifications: make([]notificationDTO, 0, len(queued))}
	for _, n := range queued {
		resp.Notifications = append(resp.Notifications, notificationDTO{ID: n.ID, Text: n.Text, CreatedAt: n.CreatedAt.Format(time.RFC3339Nano)})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *WorkspaceHandler) Affirmation(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, affirmationResponse{Affirmation: ws.Affirmation})
}

type notificationDTO struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type affirmationResponse struct {
	Affirmation string `json:"affirmation"`
}
