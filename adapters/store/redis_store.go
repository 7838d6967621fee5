package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/trustgate/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface.
// Entries expire natively after the retention horizon.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ ports.Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.UniversalClient, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisStore{
		client:    client,
		prefix:    "trustgate:revoked:",
		retention: retention,
	}
}

// Revoke marks a token as revoked in Redis
func (s *RedisStore) Revoke(ctx context.Context, token string) (bool, error) {
	key := s.prefix + tokenKey(token)

	// SETNX makes the first revocation the only one that reports inserted
	inserted, err := s.client.SetNX(ctx, key, time.Now().Unix(), s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}

	return inserted, nil
}

// IsRevoked checks if a token is revoked in Redis
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := s.prefix + tokenKey(token)

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return val > 0, nil
}
