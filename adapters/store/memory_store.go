package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/trustgate/ports"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	revoked   map[string]time.Time
	retention time.Duration
	now       func() time.Time
	mu        sync.RWMutex
}

var (
	_ ports.Store   = (*MemoryStore)(nil)
	_ ports.Sweeper = (*MemoryStore)(nil)
)

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryStore{
		revoked:   make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// Revoke marks a token as revoked
func (s *MemoryStore) Revoke(ctx context.Context, token string) (bool, error) {
	key := tokenKey(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.revoked[key]; exists {
		return false, nil
	}
	s.revoked[key] = s.now()
	return true, nil
}

// IsRevoked checks if a token is revoked
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revokedAt, exists := s.revoked[tokenKey(token)]
	if !exists {
		return false, nil
	}

	// Past the retention horizon the entry is as good as swept
	if s.now().Sub(revokedAt) > s.retention {
		return false, nil
	}

	return true, nil
}

// Sweep drops entries revoked before cutoff
func (s *MemoryStore) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, revokedAt := range s.revoked {
		if revokedAt.Before(cutoff) {
			delete(s.revoked, key)
			removed++
		}
	}
	return removed, nil
}
