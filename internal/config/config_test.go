package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "STORE", "DB_PATH", "SECRET", "TOKEN_TTL", "BCRYPT_COST",
		"CLIENT_ORIGIN", "REQUEST_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "APP_ENV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ":3003", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.StoreKind)
	assert.Equal(t, "data/bloglist.db", cfg.DBPath)
	assert.True(t, cfg.DevSecret())
	assert.Zero(t, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.Production)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORE", "memory")
	t.Setenv("SECRET", "s3cr3t")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "memory", cfg.StoreKind)
	assert.Equal(t, "s3cr3t", cfg.Secret)
	assert.False(t, cfg.DevSecret())
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "invalid durations fall back to the default")
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	cfg.Production = true
	assert.Error(t, cfg.Validate(), "dev secret in production")

	cfg.Secret = "real"
	assert.NoError(t, cfg.Validate())

	cfg.StoreKind = "mongo"
	assert.Error(t, cfg.Validate())
}
