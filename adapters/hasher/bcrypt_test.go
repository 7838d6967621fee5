package hasher

import (
	"strings"
	"testing"

	"github.com/layer-3/trustgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndCompare(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	first, err := h.Hash("pw123456")
	require.NoError(t, err)
	second, err := h.Hash("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes are salted")
	assert.NoError(t, h.Compare(first, "pw123456"))
	assert.Error(t, h.Compare(first, "wrong"))
}

func TestBcryptCostFallback(t *testing.T) {
	assert.Equal(t, DefaultCost, NewBcrypt(0).cost)
	assert.Equal(t, DefaultCost, NewBcrypt(99).cost)
}

func TestBcryptRejectsLongPasswords(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, core.ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}
