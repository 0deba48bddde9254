// Package devotp keeps plaintext codes in memory, keyed by registration number, for dev code mode
// (OTP_RETURN_TO_CLIENT). Never enabled in production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds the latest plaintext code per voter for dev-only retrieval.
type Store interface {
	// Put stores code for regNo until expiresAt, replacing any previous code.
	Put(ctx context.Context, regNo, code string, expiresAt time.Time)
	// Get returns the code for regNo if present and not expired.
	Get(ctx context.Context, regNo string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores code for regNo until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, regNo, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[regNo] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for regNo. Expired entries are evicted. Expiry is inclusive of expiresAt.
func (s *MemoryStore) Get(ctx context.Context, regNo string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[regNo]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if s.nowF().After(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.m[regNo]; ok && cur == e {
			delete(s.m, regNo)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}
