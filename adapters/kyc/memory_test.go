package kyc

import (
	"context"
	"testing"

	"github.com/layer-3/trustgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Find(ctx, "u1")
	assert.ErrorIs(t, err, core.ErrKYCNotFound)

	sub, created, err := s.Submit(ctx, "u1", "/media/a.png", "/media/a.mp4")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, core.KYCPending, sub.Status)

	_, _, err = s.Submit(ctx, "u1", "/media/b.png", "/media/b.mp4")
	assert.ErrorIs(t, err, core.ErrKYCPending)

	sub, err = s.SetStatus(ctx, "u1", core.KYCRejected)
	require.NoError(t, err)
	assert.Equal(t, core.KYCRejected, sub.Status)

	_, err = s.SetStatus(ctx, "u1", core.KYCApproved)
	assert.ErrorIs(t, err, core.ErrInvalidKYCTransition)

	sub, created, err = s.Submit(ctx, "u1", "/media/b.png", "/media/b.mp4")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, core.KYCPending, sub.Status)
	assert.Equal(t, "/media/b.png", sub.ImageURL)

	_, err = s.SetStatus(ctx, "u1", core.KYCApproved)
	require.NoError(t, err)

	_, _, err = s.Submit(ctx, "u1", "/media/c.png", "/media/c.mp4")
	assert.ErrorIs(t, err, core.ErrKYCAlreadyApproved)

	_, err = s.SetStatus(ctx, "missing", core.KYCApproved)
	assert.ErrorIs(t, err, core.ErrKYCNotFound)
}
