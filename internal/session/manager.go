package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lojasmm/tilebot/internal/conversation"
)

// Session is one visitor's conversation.
type Session struct {
	ID string

	mu   sync.Mutex
	ctrl *conversation.Controller
}

// Factory builds the controller for a new session.
type Factory func() *conversation.Controller

// Manager keeps a bounded set of sessions, drops the ones idle longer than
// the TTL, and serializes work per session. Different sessions run in
// parallel.
type Manager struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
	factory  Factory
}

// NewManager creates a manager holding at most size sessions. onEvict, if
// set, is called with the id of every session that expires or is pushed out.
func NewManager(size int, ttl time.Duration, factory Factory, onEvict func(id string)) *Manager {
	if factory == nil {
		factory = func() *conversation.Controller { return conversation.NewController(nil) }
	}
	var cb expirable.EvictCallback[string, *Session]
	if onEvict != nil {
		cb = func(id string, _ *Session) { onEvict(id) }
	}
	return &Manager{
		sessions: expirable.NewLRU[string, *Session](size, cb, ttl),
		factory:  factory,
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Acquire returns the session for id, creating it when missing, and marks
// it as recently used. created reports whether it is new.
func (m *Manager) Acquire(id string) (s *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		s = &Session{ID: id, ctrl: m.factory()}
		created = true
	}
	// Re-adding refreshes the expiry so the TTL measures idleness.
	m.sessions.Add(id, s)
	return s, created
}

// With executes fn while holding the session's lock.
func (s *Session) With(fn func(ctrl *conversation.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}

func (m *Manager) Len() int {
	return m.sessions.Len()
}
