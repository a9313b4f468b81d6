package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. When full, storing a new session
// evicts the one closest to expiry.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

// NewMemoryStore returns a store holding at most maxSessions sessions that
// expire ttl after their last use. Zero values use the package defaults.
func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	maxSessions, ttl = limits(maxSessions, ttl)
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Get implements [Store].
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	now := m.now()
	if s.IsExpired(now) {
		delete(m.sessions, id)
		return nil, notFound(id)
	}
	s.ExpiresAt = now.Add(m.ttl)
	return s.Clone(), nil
}

// Put implements [Store].
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists && len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}
	cp := s.Clone()
	cp.ExpiresAt = m.now().Add(m.ttl)
	s.ExpiresAt = cp.ExpiresAt
	m.sessions[s.ID] = cp
	return nil
}

func (m *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		if oldestID == "" || s.ExpiresAt.Before(oldest) || (s.ExpiresAt.Equal(oldest) && id < oldestID) {
			oldestID, oldest = id, s.ExpiresAt
		}
	}
	delete(m.sessions, oldestID)
}

// Delete implements [Store].
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return notFound(id)
	}
	delete(m.sessions, id)
	return nil
}

// Cleanup implements [Store].
func (m *MemoryStore) Cleanup(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close implements [Store].
func (m *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
