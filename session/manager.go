package session

import (
	"log/slog"
	"sync"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// Manager holds the active sessions, keyed by user.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   slog.Default().With("component", "session"),
	}
}

// Login starts a session for user with the personal index selected.
// Logging in again replaces the previous session.
func (m *Manager) Login(user string) (*Session, error) {
	if user == "" {
		return nil, ErrUserRequired
	}
	s := &Session{User: user, Selection: core.ScopePersonal}

	m.mu.Lock()
	m.sessions[user] = s
	m.mu.Unlock()

	m.logger.Debug("session started", "user", user)
	return s, nil
}

// Logout ends user's session.
func (m *Manager) Logout(user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[user]; !ok {
		return ErrNoActiveSession
	}
	delete(m.sessions, user)
	m.logger.Debug("session ended", "user", user)
	return nil
}

// Get returns user's active session.
func (m *Manager) Get(user string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[user]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// Active returns the number of active sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
