package session

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
)

// Manager tracks the live sessions of a multi-user front-end. Sessions that
// see no activity for the configured TTL are discarded.
type Manager struct {
	sessions  *cache.Cache
	completer Completer
	language  string
	logger    *slog.Logger
}

// NewManager creates a session manager. A ttl of zero or less keeps sessions
// until they are ended explicitly.
func NewManager(c Completer, language string, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	expiry, cleanup := ttl, ttl/2
	if ttl <= 0 {
		expiry, cleanup = cache.NoExpiration, 0
	}

	m := &Manager{
		sessions:  cache.New(expiry, cleanup),
		completer: c,
		language:  language,
		logger:    logger,
	}
	m.sessions.OnEvicted(func(id string, _ any) {
		m.logger.Info("session ended", "session", id)
	})
	return m
}

// Start creates and registers a new session.
func (m *Manager) Start() *Session {
	s := New(ulid.Make().String(), m.completer, m.language)
	m.sessions.SetDefault(s.ID, s)
	m.logger.Info("session started", "session", s.ID)
	return s
}

// Get returns the session with the given ID and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	if !m.touch(id, s) {
		return nil, false
	}
	return s, true
}

// touch restarts the session's TTL. It fails if the session was ended or
// expired since it was looked up, so an ended session is never revived.
func (m *Manager) touch(id string, s *Session) bool {
	return m.sessions.Replace(id, s, cache.DefaultExpiration) == nil
}

// End discards the session and everything it recorded.
func (m *Manager) End(id string) bool {
	if _, ok := m.sessions.Get(id); !ok {
		return false
	}
	m.sessions.Delete(id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}
