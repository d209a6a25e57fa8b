package inmemory

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// InMemorySessionStore keeps admin sessions for the lifetime of the process.
type InMemorySessionStore struct {
	mu    sync.RWMutex
	items map[string]time.Time
	now   func() time.Time
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		items: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (s *InMemorySessionStore) Create(ttl time.Duration) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(buf)
	expiresAt := s.now().Add(ttl)

	s.mu.Lock()
	s.purgeLocked()
	s.items[token] = expiresAt
	s.mu.Unlock()

	return token, expiresAt, nil
}

func (s *InMemorySessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.RLock()
	expiresAt, ok := s.items[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	if !expiresAt.After(s.now()) {
		s.Delete(token)
		return false
	}
	return true
}

func (s *InMemorySessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.items, token)
	s.mu.Unlock()
}

func (s *InMemorySessionStore) purgeLocked() {
	now := s.now()
	for token, expiresAt := range s.items {
		if !expiresAt.After(now) {
			delete(s.items, token)
		}
	}
}
