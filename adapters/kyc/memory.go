package kyc

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

// MemoryStore keeps submissions in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]core.Submission
}

var _ ports.KYCStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]core.Submission)}
}

func (s *MemoryStore) Find(ctx context.Context, userID string) (*core.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, core.ErrKYCNotFound
	}
	return &sub, nil
}

func (s *MemoryStore) Submit(ctx context.Context, userID, imageURL, videoURL string) (*core.Submission, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sub, exists := s.subs[userID]
	if exists && sub.Status != core.KYCRejected {
		return nil, false, refusal(sub.Status)
	}
	if !exists {
		sub = core.Submission{UserID: userID, CreatedAt: now}
	}

	sub.ImageURL = imageURL
	sub.VideoURL = videoURL
	sub.Status = core.KYCPending
	sub.UpdatedAt = now
	s.subs[userID] = sub

	return &sub, !exists, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, userID string, status core.KYCStatus) (*core.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, core.ErrKYCNotFound
	}
	if sub.Status != core.KYCPending {
		return nil, core.ErrInvalidKYCTransition
	}

	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	s.subs[userID] = sub
	return &sub, nil
}
