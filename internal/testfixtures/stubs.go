package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/mindease/internal/application"
)

// TextGeneratorStub records companion requests and answers with a canned
// reply or error.
type TextGeneratorStub struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	requests []application.CompanionRequest
	gate     chan struct{}
}

func (s *TextGeneratorStub) GenerateReply(ctx context.Context, req application.CompanionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply, err, gate := s.Reply, s.Err, s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply, err
}

// Hold makes replies wait until the returned release func is called.
func (s *TextGeneratorStub) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Requests returns the requests received so far.
func (s *TextGeneratorStub) Requests() []application.CompanionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]application.CompanionRequest(nil), s.requests...)
}

// RecommenderStub answers with fixed items and counts calls.
type RecommenderStub struct {
	mu    sync.Mutex
	Items []application.Recommendation
	Err   error
	calls int
}

func (s *RecommenderStub) Recommend(ctx context.Context, mood application.Mood, factors []string) ([]application.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]application.Recommendation(nil), s.Items...), nil
}

func (s *RecommenderStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// MemoryAccounts is an in-memory implementation of the application user and
// session repositories.
type MemoryAccounts struct {
	mu       sync.Mutex
	users    map[string]application.User
	sessions map[string]application.Session
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		users:    make(map[string]application.User),
		sessions: make(map[string]application.Session),
	}
}

func (m *MemoryAccounts) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryAccounts) GetUser(ctx context.Context, id string) (application.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return application.User{}, application.ErrNotFound
	}
	return user, nil
}

func (m *MemoryAccounts) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Token] = session
	return session, nil
}

func (m *MemoryAccounts) GetSession(ctx context.Context, token string) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	return session, nil
}

func (m *MemoryAccounts) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return application.Session{}, application.ErrNotFound
	}
	at := revokedAt
	session.RevokedAt = &at
	m.sessions[token] = session
	return session, nil
}

func (m *MemoryAccounts) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, session := range m.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(m.sessions, token)
		}
	}
	return nil
}

// SessionCount reports the number of stored sessions.
func (m *MemoryAccounts) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
