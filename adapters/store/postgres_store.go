package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/layer-3/trustgate/ports"
)

// PostgresStore keeps revocations in the revoked_tokens table.
// Entries are removed by Sweep, driven by the revocation sweep job.
type PostgresStore struct {
	db        *sql.DB
	retention time.Duration
}

var (
	_ ports.Store   = (*PostgresStore)(nil)
	_ ports.Sweeper = (*PostgresStore)(nil)
)

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *sql.DB, retention time.Duration) *PostgresStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PostgresStore{db: db, retention: retention}
}

// Revoke inserts the token unless it is already present
func (s *PostgresStore) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`insert into revoked_tokens (token_key, revoked_at) values ($1, now()) on conflict (token_key) do nothing`,
		tokenKey(token),
	)
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return n == 1, nil
}

// IsRevoked checks for an entry within the retention horizon
func (s *PostgresStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		`select exists (select 1 from revoked_tokens where token_key = $1 and revoked_at > $2)`,
		tokenKey(token), time.Now().Add(-s.retention),
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}

// Sweep deletes entries revoked before cutoff
func (s *PostgresStore) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from revoked_tokens where revoked_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
