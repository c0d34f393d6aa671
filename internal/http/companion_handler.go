package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/mindease/internal/application"
)

const (
	companionWSWriteWait = 10 * time.Second
	companionWSPongWait  = 60 * time.Second
	companionWSPingEvery = (companionWSPongWait * 9) / 10
)

// CompanionHandler serves the companion dialogue over REST and a websocket.
type CompanionHandler struct {
	upgrader  websocket.Upgrader
	responder responder
	logger    *slog.Logger
}

// NewCompanionHandler accepts websocket upgrades from any origin when
// checkOrigin is nil.
func NewCompanionHandler(checkOrigin func(*http.Request) bool, logger *slog.Logger) *CompanionHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	base := defaultLogger(logger)
	return &CompanionHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *CompanionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CompanionHandler", operation, attrs...)
}

// StartSession opens a new dialogue, replacing any open one, and returns the greeting.
func (h *CompanionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	dialogue, greeting, err := ws.StartDialogue(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "StartSession").InfoContext(r.Context(), "companion session started")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, companionSessionResponse{
		State:    dialogue.State().String(),
		Greeting: toChatMessageDTO(greeting),
	})
}

// DeleteSession discards the open dialogue; an in-flight reply is dropped.
func (h *CompanionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	ws.DiscardDialogue()
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Messages returns the transcript of the open dialogue.
func (h *CompanionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	dialogue, err := ws.Dialogue()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, transcriptResponse{
		State:    dialogue.State().String(),
		Messages: toChatMessageDTOs(dialogue.Transcript()),
	})
}

// Submit sends one user message and waits for the companion reply. When the
// capability fails the reply is omitted and the dialogue stays usable.
func (h *CompanionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", errBadRequestBody)
		return
	}
	dialogue, err := ws.Dialogue()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	result, err := dialogue.Submit(r.Context(), req.Text)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSubmitResponse(result))
}

func toSubmitResponse(result application.SubmitResult) submitResponse {
	resp := submitResponse{Message: toChatMessageDTO(result.UserMessage)}
	if result.Reply != nil {
		reply := toChatMessageDTO(*result.Reply)
		resp.Reply = &reply
	}
	return resp
}

// Stream upgrades to a websocket. Inbound frames are {"type":"start"},
// {"type":"submit","text":...}, {"type":"discard"} and {"type":"ping"};
// every resulting message is pushed as a "message" frame.
func (h *CompanionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log(r.Context(), "Stream").WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := h.log(ctx, "Stream")

	if err := conn.SetReadDeadline(time.Now().Add(companionWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(companionWSPongWait))
	})

	writeCh := make(chan companionFrame, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(companionWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(companionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(companionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	push := func(frame companionFrame) {
		select {
		case writeCh <- frame:
		case <-ctx.Done():
		}
	}

	if dialogue, err := ws.Dialogue(); err == nil {
		push(companionFrame{Type: "transcript", State: dialogue.State().String(), Messages: toChatMessageDTOs(dialogue.Transcript())})
	} else {
		push(errorFrame(err))
	}

	for {
		var in companionInbound
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.DebugContext(ctx, "websocket closed", "error", err)
			}
			cancel()
			<-writerDone
			return
		}

		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			push(companionFrame{Type: "pong"})
		case "start":
			dialogue, greeting, err := ws.StartDialogue(ctx)
			if err != nil {
				push(errorFrame(err))
				continue
			}
			msg := toChatMessageDTO(greeting)
			push(companionFrame{Type: "message", State: dialogue.State().String(), Message: &msg})
		case "discard":
			ws.DiscardDialogue()
			push(companionFrame{Type: "closed", State: application.DialogueClosed.String()})
		case "submit":
			dialogue, err := ws.Dialogue()
			if err != nil {
				push(errorFrame(err))
				continue
			}
			pending, err := dialogue.Post(ctx, in.Text)
			if err != nil {
				push(errorFrame(err))
				continue
			}
			user := toChatMessageDTO(pending.UserMessage)
			push(companionFrame{Type: "message", State: application.DialogueAwaitingResponse.String(), Message: &user})

			// Replies are awaited off the read loop so that a second submit
			// observes the busy state instead of queueing.
			go func() {
				result := pending.Await(ctx)
				if result.Reply == nil {
					push(companionFrame{Type: "state", State: dialogue.State().String()})
					return
				}
				reply := toChatMessageDTO(*result.Reply)
				push(companionFrame{Type: "message", State: dialogue.State().String(), Message: &reply})
			}()
		default:
			push(companionFrame{Type: "error", Code: "BAD_REQUEST", Error: "unknown frame type"})
		}
	}
}

func errorFrame(err error) companionFrame {
	_, resp := classifyError(err)
	return companionFrame{Type: "error", Code: resp.ErrorCode, Error: resp.Message, Errors: resp.Errors}
}

type submitRequest struct {
	Text string `json:"text"`
}

type submitResponse struct {
	Message chatMessageDTO  `json:"message"`
	Reply   *chatMessageDTO `json:"reply,omitempty"`
}

type companionSessionResponse struct {
	State    string         `json:"state"`
	Greeting chatMessageDTO `json:"greeting"`
}

type transcriptResponse struct {
	State    string           `json:"state"`
	Messages []chatMessageDTO `json:"messages"`
}

type companionInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type companionFrame struct {
	Type     string            `json:"type"`
	State    string            `json:"state,omitempty"`
	Message  *chatMessageDTO   `json:"message,omitempty"`
	Messages []chatMessageDTO  `json:"messages,omitempty"`
	Code     string            `json:"code,omitempty"`
	Error    string            `json:"error,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}
