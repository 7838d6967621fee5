package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T, access, refresh string) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", access)
	t.Setenv("REFRESH_TOKEN_SECRET", refresh)
}

func TestLoadDefaults(t *testing.T) {
	setSecrets(t, "access", "refresh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, BackendRedis, cfg.RevocationBackend)
	assert.True(t, cfg.EventsEnabled)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.NeedsPostgres())
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadRequiresSecrets(t *testing.T) {
	setSecrets(t, "", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsIdenticalSecrets(t *testing.T) {
	setSecrets(t, "same", "same")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsRetentionShorterThanRefreshTTL(t *testing.T) {
	setSecrets(t, "access", "refresh")
	t.Setenv("REFRESH_TOKEN_TTL", "720h")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REVOCATION_RETENTION", "720h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.RevocationRetention)
}

func TestLoadWorkerDoesNotNeedSecrets(t *testing.T) {
	setSecrets(t, "", "")
	t.Setenv("REVOCATION_BACKEND", "postgres")

	cfg, err := LoadWorker()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.RevocationBackend)
	assert.Equal(t, "@every 1h", cfg.SweepSpec)

	t.Setenv("REVOCATION_BACKEND", "mongo")
	_, err = LoadWorker()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setSecrets(t, "access", "refresh")
	t.Setenv("REVOCATION_BACKEND", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestMemoryOnlyDeployment(t *testing.T) {
	setSecrets(t, "access", "refresh")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("REVOCATION_BACKEND", "memory")
	t.Setenv("EVENTS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NeedsPostgres())
	assert.False(t, cfg.NeedsRedis())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{LogFormat: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
