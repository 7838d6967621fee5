package ports

import (
	"context"

	"github.com/layer-3/trustgate/core"
)

// CredentialStore persists identities
type CredentialStore interface {
	// Create stores a new identity. The first identity ever created is an admin,
	// every later one a user. Returns core.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, email, passwordHash string) (*core.Identity, error)
	FindByEmail(ctx context.Context, email string) (*core.Identity, error)
	FindByID(ctx context.Context, id string) (*core.Identity, error)

	// Listing covers identities with the user role only
	CountUsers(ctx context.Context, filter core.UserFilter) (int, error)
	ListUsers(ctx context.Context, filter core.UserFilter) ([]core.UserSummary, error)
}

// PasswordHasher produces and checks salted one-way password hashes
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
