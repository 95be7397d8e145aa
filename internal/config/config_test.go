package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_TOKEN_TTL", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, time.Hour, cfg.SessionTokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Empty(t, cfg.SessionSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TOKEN_TTL", "30m")
	t.Setenv("RESET_TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("SESSION_TOKEN_SECRET", "")
	t.Setenv("JWT_SECRET", "legacy-secret")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.SessionTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "legacy-secret", cfg.SessionSecret)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	assert.Equal(t, 5*time.Minute, getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute))

	t.Setenv("CATALOG_CACHE_TTL", "-1s")
	assert.Equal(t, 5*time.Minute, getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute))
}
