package ports

import (
	"context"
	"time"
)

// Store records revoked token strings
type Store interface {
	// Revoke marks a token as revoked. It is idempotent; inserted reports
	// whether this call created the entry.
	Revoke(ctx context.Context, token string) (inserted bool, err error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Sweeper is implemented by stores without native entry expiry
type Sweeper interface {
	// Sweep removes entries revoked before cutoff and returns how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int64, error)
}
