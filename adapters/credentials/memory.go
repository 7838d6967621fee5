package credentials

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

// MemoryStore keeps identities in process memory. KYC state for listings is
// read through the optional lookup so the two memory stores can be joined.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*core.Identity
	byEmail map[string]string
	kyc     func(ctx context.Context, userID string) (*core.Submission, error)
}

var _ ports.CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. kyc may be nil.
func NewMemoryStore(kyc func(ctx context.Context, userID string) (*core.Submission, error)) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*core.Identity),
		byEmail: make(map[string]string),
		kyc:     kyc,
	}
}

// Create stores a new identity; uniqueness and role assignment happen under one lock.
func (s *MemoryStore) Create(ctx context.Context, email, passwordHash string) (*core.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return nil, core.ErrDuplicateEmail
	}

	role := core.RoleUser
	if len(s.byID) == 0 {
		role = core.RoleAdmin
	}

	identity := &core.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[identity.ID] = identity
	s.byEmail[email] = identity.ID

	copied := *identity
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *identity
	return &copied, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context, filter core.UserFilter) (int, error) {
	return len(s.matching(filter)), nil
}

func (s *MemoryStore) ListUsers(ctx context.Context, filter core.UserFilter) ([]core.UserSummary, error) {
	matched := s.matching(filter)

	start := min(max(filter.Offset, 0), len(matched))
	end := len(matched)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matched))
	}

	users := make([]core.UserSummary, 0, end-start)
	for _, identity := range matched[start:end] {
		summary := core.UserSummary{
			ID:        identity.ID,
			Email:     identity.Email,
			Role:      identity.Role,
			JoinedAt:  identity.CreatedAt,
			KYCStatus: core.KYCNotSubmitted,
		}
		if s.kyc != nil {
			sub, err := s.kyc(ctx, identity.ID)
			switch {
			case err == nil:
				summary.KYCStatus = sub.Status
				summary.KYCImage = sub.ImageURL
				summary.KYCVideo = sub.VideoURL
			case !errors.Is(err, core.ErrKYCNotFound):
				return nil, err
			}
		}
		users = append(users, summary)
	}
	return users, nil
}

// matching returns user-role identities matching the filter, newest first.
func (s *MemoryStore) matching(filter core.UserFilter) []core.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []core.Identity
	for _, identity := range s.byID {
		if identity.Role != core.RoleUser {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(identity.Email), search) {
			continue
		}
		matched = append(matched, *identity)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Email < matched[j].Email
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}
