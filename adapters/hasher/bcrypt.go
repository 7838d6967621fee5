package hasher

import (
	"fmt"

	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost keeps a verification around the 100ms+ mark on current hardware
const DefaultCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts
const MaxPasswordBytes = 72

// Bcrypt hashes passwords with a random per-password salt
type Bcrypt struct {
	cost int
}

var _ ports.PasswordHasher = (*Bcrypt)(nil)

// NewBcrypt falls back to DefaultCost when cost is out of bcrypt's range.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns core.ErrPasswordTooLong for input bcrypt cannot hash in full.
func (b *Bcrypt) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", core.ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (b *Bcrypt) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
