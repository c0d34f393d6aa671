package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DialogueState is the lifecycle position of a companion conversation.
type DialogueState int

const (
	DialogueIdle DialogueState = iota
	DialogueAwaitingGreeting
	DialogueReady
	DialogueAwaitingResponse
	DialogueClosed
)

func (s DialogueState) String() string {
	switch s {
	case DialogueIdle:
		return "idle"
	case DialogueAwaitingGreeting:
		return "awaiting_greeting"
	case DialogueReady:
		return "ready"
	case DialogueAwaitingResponse:
		return "awaiting_response"
	case DialogueClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	// FallbackReply replaces an empty capability reply.
	FallbackReply = "I'm here for you. Can you tell me more about that?"
	// DefaultReplyTimeout bounds one capability call.
	DefaultReplyTimeout = 20 * time.Second

	unknownGreetingMood = "thoughtful"
	unknownContextMood  = "unknown"
)

// TranscriptTurn is one message as sent to the text generation capability.
type TranscriptTurn struct {
	Role ChatRole
	Text string
}

// CompanionRequest carries everything the stateless capability needs for one reply.
type CompanionRequest struct {
	SystemContext string
	Transcript    []TranscriptTurn
}

// TextGenerator produces a companion reply for a full transcript.
type TextGenerator interface {
	GenerateReply(ctx context.Context, req CompanionRequest) (string, error)
}

// CompanionGreeting is the locally produced opening message.
func CompanionGreeting(userName string, mood Mood) string {
	feeling := string(mood)
	if feeling == "" {
		feeling = unknownGreetingMood
	}
	return fmt.Sprintf("Hi %s! I'm MindEase, your digital companion. I heard you're feeling a bit %s today. How can I support you right now? 💙", userName, feeling)
}

// CompanionSystemContext describes persona, tone and current mood to the capability.
func CompanionSystemContext(userName string, mood Mood) string {
	feeling := string(mood)
	if feeling == "" {
		feeling = unknownContextMood
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are MindEase, a supportive, empathetic mental health companion for %s.\n", userName)
	b.WriteString("Your tone is gentle, warm, and non-judgmental.\n")
	fmt.Fprintf(&b, "The user's current mood is %s.\n", feeling)
	b.WriteString("Always greet them kindly. Offer small, actionable self-care tips (e.g., deep breathing, drinking water, taking a walk).\n")
	b.WriteString("REMAIN SUPPORTIVE. If they express severe distress, gently suggest professional help while remaining their companion.\n")
	b.WriteString("Never provide a medical diagnosis.")
	return b.String()
}

// DialogueConfig wires a DialogueSession.
type DialogueConfig struct {
	Generator    TextGenerator
	IDGenerator  func() string
	Now          func() time.Time
	ReplyTimeout time.Duration
	Logger       *slog.Logger
}

// SubmitResult reports the optimistic user message and the reply, if one arrived.
type SubmitResult struct {
	UserMessage ChatMessage
	Reply       *ChatMessage
}

// DialogueSession is one companion conversation. At most one capability call
// is in flight; a failed call leaves the transcript without a reply.
type DialogueSession struct {
	generator    TextGenerator
	idGenerator  func() string
	now          func() time.Time
	replyTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	state      DialogueState
	userName   string
	mood       Mood
	transcript []ChatMessage
}

// NewDialogueSession returns an idle session.
func NewDialogueSession(cfg DialogueConfig) *DialogueSession {
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	return &DialogueSession{
		generator:    cfg.Generator,
		idGenerator:  cfg.IDGenerator,
		now:          cfg.Now,
		replyTimeout: cfg.ReplyTimeout,
		logger:       defaultLogger(cfg.Logger),
		state:        DialogueIdle,
	}
}

// State returns the current lifecycle state.
func (s *DialogueSession) State() DialogueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the messages in order.
func (s *DialogueSession) Transcript() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.transcript...)
}

// Start opens the conversation with a local greeting. An empty mood means
// no check-in is known yet.
func (s *DialogueSession) Start(ctx context.Context, userName string, mood Mood) (ChatMessage, error) {
	logger := serviceLogger(ctx, s.logger, "DialogueSession", "Start")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != DialogueIdle {
		err := fmt.Errorf("%w: dialogue is %s", ErrInvalidTransition, s.state)
		logger.WarnContext(ctx, "dialogue start rejected", "error", err, "error_kind", ErrorKind(err))
		return ChatMessage{}, err
	}

	s.state = DialogueAwaitingGreeting
	s.userName = userName
	s.mood = mood
	greeting := ChatMessage{
		ID:        s.idGenerator(),
		Role:      RoleAssistant,
		Text:      CompanionGreeting(userName, mood),
		Timestamp: s.now(),
	}
	s.transcript = append(s.transcript, greeting)
	s.state = DialogueReady

	logger.InfoContext(ctx, "dialogue started", "mood", mood)
	return greeting, nil
}

// Submit appends the user's message, asks the capability for a reply and
// appends it. Capability failures are logged and yield a result without a reply.
func (s *DialogueSession) Submit(ctx context.Context, text string) (SubmitResult, error) {
	pending, err := s.Post(ctx, text)
	if err != nil {
		return SubmitResult{}, err
	}
	return pending.Await(ctx), nil
}

// PendingReply is a posted user message whose reply has not been awaited yet.
// The dialogue stays AwaitingResponse until Await returns.
type PendingReply struct {
	session     *DialogueSession
	UserMessage ChatMessage
	req         CompanionRequest
}

// Post appends the user's message and moves the dialogue to AwaitingResponse
// without calling the capability.
func (s *DialogueSession) Post(ctx context.Context, text string) (*PendingReply, error) {
	logger := serviceLogger(ctx, s.logger, "DialogueSession", "Post")

	if strings.TrimSpace(text) == "" {
		return nil, fieldError("text", "message text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case DialogueReady:
	case DialogueAwaitingResponse:
		logger.WarnContext(ctx, "dialogue submit rejected", "error_kind", ErrorKind(ErrSessionBusy))
		return nil, ErrSessionBusy
	default:
		err := fmt.Errorf("%w: dialogue is %s", ErrSessionNotReady, s.state)
		logger.WarnContext(ctx, "dialogue submit rejected", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	userMsg := ChatMessage{ID: s.idGenerator(), Role: RoleUser, Text: text, Timestamp: s.now()}
	s.transcript = append(s.transcript, userMsg)
	s.state = DialogueAwaitingResponse
	req := CompanionRequest{
		SystemContext: CompanionSystemContext(s.userName, s.mood),
		Transcript:    make([]TranscriptTurn, 0, len(s.transcript)),
	}
	for _, m := range s.transcript {
		req.Transcript = append(req.Transcript, TranscriptTurn{Role: m.Role, Text: m.Text})
	}
	return &PendingReply{session: s, UserMessage: userMsg, req: req}, nil
}

// Await calls the capability and returns the dialogue to Ready.
func (p *PendingReply) Await(ctx context.Context) SubmitResult {
	s := p.session
	logger := serviceLogger(ctx, s.logger, "DialogueSession", "Await")

	reply, err := s.generate(ctx, p.req)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := SubmitResult{UserMessage: p.UserMessage}
	if s.state == DialogueClosed {
		logger.InfoContext(ctx, "reply dropped for discarded dialogue")
		return result
	}
	s.state = DialogueReady

	if err != nil {
		logger.ErrorContext(ctx, "companion reply failed",
			"error", err,
			"error_kind", "capability_failure",
			"cause_kind", ErrorKind(err),
		)
		return result
	}

	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}
	assistant := ChatMessage{ID: s.idGenerator(), Role: RoleAssistant, Text: reply, Timestamp: s.now()}
	s.transcript = append(s.transcript, assistant)
	result.Reply = &assistant

	logger.InfoContext(ctx, "companion replied", "transcript_length", len(s.transcript))
	return result
}

func (s *DialogueSession) generate(ctx context.Context, req CompanionRequest) (string, error) {
	if s.generator == nil {
		return "", ErrCapabilityUnavailable
	}
	callCtx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()
	return s.generator.GenerateReply(callCtx, req)
}

// Discard closes the session. A reply still in flight is dropped when it lands.
func (s *DialogueSession) Discard() {
	s.mu.Lock()
	s.state = DialogueClosed
	s.mu.Unlock()
}
