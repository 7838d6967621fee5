package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	revoked, err := s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	inserted, err := s.Revoke(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second revoke is a no-op, not an error
	inserted, err = s.Revoke(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, inserted)

	revoked, err = s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStoreConcurrentRevokeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			inserted, err := s.Revoke(ctx, "contended")
			if err == nil && inserted {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}

func TestMemoryStoreRetentionAndSweep(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	now := time.Now()
	s.now = func() time.Time { return now }
	_, err := s.Revoke(ctx, "old")
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(30 * time.Minute) }
	_, err = s.Revoke(ctx, "new")
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(90 * time.Minute) }
	revoked, err := s.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked, "entry past retention should read as absent")

	removed, err := s.Sweep(ctx, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	revoked, err = s.IsRevoked(ctx, "new")
	require.NoError(t, err)
	assert.True(t, revoked)
}
