package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	welcomeNotificationFormat = "Welcome back, %s! Ready for today's check-in?"
	checkInNotification       = "Thanks for checking in! 🌱"
)

// Notification is a one-shot message queued for the user.
type Notification struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Workspace owns everything one logged-in user interacts with: the check-in
// store and favorites, the capture wizard and the companion dialogue.
type Workspace struct {
	User        User
	SessionID   string
	Store       *CheckInStore
	Flow        *CheckInFlow
	Affirmation string

	dialogueCfg DialogueConfig
	idGenerator func() string
	now         func() time.Time

	mu            sync.Mutex
	dialogue      *DialogueSession
	notifications []Notification
}

// WorkspaceConfig carries the collaborators every new workspace is wired with.
type WorkspaceConfig struct {
	Generator    TextGenerator
	IDGenerator  func() string
	Now          func() time.Time
	ReplyTimeout time.Duration
	Logger       *slog.Logger
}

func (c WorkspaceConfig) withDefaults() WorkspaceConfig {
	if c.IDGenerator == nil {
		c.IDGenerator = uuid.NewString
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Logger = defaultLogger(c.Logger)
	return c
}

// NewWorkspace builds an empty workspace for the user. The wizard starts at
// the mood step and no dialogue is open.
func NewWorkspace(user User, sessionID string, cfg WorkspaceConfig) *Workspace {
	cfg = cfg.withDefaults()
	logger := cfg.Logger.With("user_id", user.ID, "session_id", sessionID)

	store := NewCheckInStore()
	ws := &Workspace{
		User:        user,
		SessionID:   sessionID,
		Store:       store,
		Flow:        NewCheckInFlow(store, cfg.IDGenerator, cfg.Now, logger),
		Affirmation: Affirmations[rand.IntN(len(Affirmations))],
		dialogueCfg: DialogueConfig{
			Generator:    cfg.Generator,
			IDGenerator:  cfg.IDGenerator,
			Now:          cfg.Now,
			ReplyTimeout: cfg.ReplyTimeout,
			Logger:       logger,
		},
		idGenerator: cfg.IDGenerator,
		now:         cfg.Now,
	}
	ws.Flow.OnFinish(func(CheckIn) { ws.Notify(checkInNotification) })
	ws.Notify(fmt.Sprintf(welcomeNotificationFormat, user.Name))
	return ws
}

// LatestMood is the mood of the newest check-in, or empty when there is none.
func (w *Workspace) LatestMood() Mood {
	if latest, ok := w.Store.Latest(); ok {
		return latest.Mood
	}
	return ""
}

// ResourceMood is the mood used to match catalog entries: the newest
// check-in's mood, or DefaultMood when there is none.
func (w *Workspace) ResourceMood() Mood {
	if mood := w.LatestMood(); mood != "" {
		return mood
	}
	return DefaultMood
}

// StartDialogue replaces any open dialogue with a fresh one and returns its greeting.
func (w *Workspace) StartDialogue(ctx context.Context) (*DialogueSession, ChatMessage, error) {
	session := NewDialogueSession(w.dialogueCfg)
	greeting, err := session.Start(ctx, w.User.Name, w.LatestMood())
	if err != nil {
		return nil, ChatMessage{}, err
	}

	w.mu.Lock()
	previous := w.dialogue
	w.dialogue = session
	w.mu.Unlock()

	if previous != nil {
		previous.Discard()
	}
	return session, greeting, nil
}

// Dialogue returns the open dialogue or ErrSessionNotReady.
func (w *Workspace) Dialogue() (*DialogueSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dialogue == nil {
		return nil, ErrSessionNotReady
	}
	return w.dialogue, nil
}

// DiscardDialogue closes the open dialogue, if any.
func (w *Workspace) DiscardDialogue() {
	w.mu.Lock()
	session := w.dialogue
	w.dialogue = nil
	w.mu.Unlock()

	if session != nil {
		session.Discard()
	}
}

// Notify queues a notification.
func (w *Workspace) Notify(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifications = append(w.notifications, Notification{ID: w.idGenerator(), Text: text, CreatedAt: w.now()})
}

// DrainNotifications returns queued notifications newest first and clears the queue.
func (w *Workspace) DrainNotifications() []Notification {
	w.mu.Lock()
	queued := w.notifications
	w.notifications = nil
	w.mu.Unlock()

	out := make([]Notification, 0, len(queued))
	for i := len(queued) - 1; i >= 0; i-- {
		out = append(out, queued[i])
	}
	return out
}

// Close discards the dialogue so any in-flight reply is dropped.
func (w *Workspace) Close() {
	w.DiscardDialogue()
}

// SeedDemoCheckIns appends the two sample entries used for demos.
func (w *Workspace) SeedDemoCheckIns() {
	now := w.now()
	w.Store.Append(CheckIn{
		ID:           w.idGenerator(),
		Date:         now.Add(-48 * time.Hour),
		Mood:         MoodCalm,
		Description:  "Feeling alright today.",
		SleepQuality: SleepVeryGood,
		SleepHours:   8,
		Factors:      []string{"Family"},
		EnergyLevel:  EnergyMedium,
	})
	w.Store.Append(CheckIn{
		ID:           w.idGenerator(),
		Date:         now.Add(-24 * time.Hour),
		Mood:         MoodHappy,
		Description:  "Great day at work!",
		SleepQuality: SleepOkay,
		SleepHours:   7,
		Factors:      []string{"Studies / Work"},
		EnergyLevel:  EnergyHigh,
	})
}

// WorkspaceRegistry maps login sessions to live workspaces. Entries expire
// with the session TTL and the least recently used one is evicted at capacity.
type WorkspaceRegistry struct {
	cfg     WorkspaceConfig
	entries *expirable.LRU[string, *Workspace]
}

// NewWorkspaceRegistry constructs a registry bounded by maxEntries.
func NewWorkspaceRegistry(cfg WorkspaceConfig, maxEntries int, ttl time.Duration) *WorkspaceRegistry {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	cfg = cfg.withDefaults()
	onEvict := func(_ string, ws *Workspace) {
		ws.Close()
		cfg.Logger.Debug("workspace evicted", "session_id", ws.SessionID, "user_id", ws.User.ID)
	}
	return &WorkspaceRegistry{
		cfg:     cfg,
		entries: expirable.NewLRU[string, *Workspace](maxEntries, onEvict, ttl),
	}
}

// Open creates and registers a fresh workspace for the session.
func (r *WorkspaceRegistry) Open(user User, sessionID string) *Workspace {
	ws := NewWorkspace(user, sessionID, r.cfg)
	if previous, ok := r.entries.Peek(sessionID); ok {
		previous.Close()
	}
	r.entries.Add(sessionID, ws)
	return ws
}

// Get returns the workspace for the session or ErrNotFound.
func (r *WorkspaceRegistry) Get(sessionID string) (*Workspace, error) {
	ws, ok := r.entries.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: workspace for session %s", ErrNotFound, sessionID)
	}
	return ws, nil
}

// Discard closes and forgets the session's workspace.
func (r *WorkspaceRegistry) Discard(sessionID string) {
	r.entries.Remove(sessionID)
}

// Len reports the number of live workspaces.
func (r *WorkspaceRegistry) Len() int {
	return r.entries.Len()
}
