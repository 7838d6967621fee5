package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/layer-3/trustgate/adapters/credentials"
	"github.com/layer-3/trustgate/adapters/hasher"
	"github.com/layer-3/trustgate/adapters/kyc"
	"github.com/layer-3/trustgate/adapters/store"
	"github.com/layer-3/trustgate/adapters/tokenizer"
	"github.com/layer-3/trustgate/core"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingPublisher captures events and can be made to fail
type recordingPublisher struct {
	mu         sync.Mutex
	fail       bool
	logouts    []string
	registered []string
	statuses   []core.KYCStatus
}

var errPublish = errors.New("broker unavailable")

func (p *recordingPublisher) PublishLogout(_ context.Context, userID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, userID)
	if p.fail {
		return errPublish
	}
	return nil
}

func (p *recordingPublisher) PublishRegistered(_ context.Context, identity *core.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, identity.Email)
	if p.fail {
		return errPublish
	}
	return nil
}

func (p *recordingPublisher) PublishKYCStatusChanged(_ context.Context, sub *core.Submission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, sub.Status)
	if p.fail {
		return errPublish
	}
	return nil
}

// brokenStore fails every revocation call
type brokenStore struct{}

var errStorage = errors.New("connection refused")

func (brokenStore) Revoke(context.Context, string) (bool, error) { return false, errStorage }
func (brokenStore) IsRevoked(context.Context, string) (bool, error) { return false, errStorage }

type harness struct {
	auth      *AuthService
	users     *credentials.MemoryStore
	kyc       *kyc.MemoryStore
	revoked   *store.MemoryStore
	events    *recordingPublisher
	tokenizer *tokenizer.JWTTokenizer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tok, err := tokenizer.NewJWTTokenizer(tokenizer.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
	})
	require.NoError(t, err)

	kycStore := kyc.NewMemoryStore()
	h := &harness{
		users:     credentials.NewMemoryStore(kycStore.Find),
		kyc:       kycStore,
		revoked:   store.NewMemoryStore(0),
		events:    &recordingPublisher{},
		tokenizer: tok.(*tokenizer.JWTTokenizer),
	}
	h.auth = NewAuthService(tok, h.revoked, h.users, hasher.NewBcrypt(bcrypt.MinCost), h.events, nil)
	return h
}
