package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://api.feedlink.example.com")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "30")
	t.Setenv("STORE_MAX_AGE_SECONDS", "120")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")
	t.Setenv("ALLOW_ALL_ORIGINS", "false")
	t.Setenv("SNAPSHOT_LIMIT", "10")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://api.feedlink.example.com", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 120*time.Second, cfg.StoreMaxAge)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, 10, cfg.SnapshotLimit)
	assert.True(t, cfg.HasUpstream())
}

func TestLoadBaseURLFallback(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("API_BASE_URL", "https://legacy.example.com")

	cfg := Load()
	assert.Equal(t, "https://legacy.example.com", cfg.BaseURL)
}

func TestLoadWithoutUpstream(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("API_BASE_URL", "")

	cfg := Load()
	assert.False(t, cfg.HasUpstream())
	// A missing upstream is not a validation failure; handlers answer with a
	// configuration error instead
	assert.NoError(t, cfg.Validate())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "soon")
	t.Setenv("RATE_LIMIT_REQUESTS", "many")

	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 100, cfg.RateLimitRequests)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Environment: "development",
		DatabaseURL: "feedlink.db",
		JWTSecret:   "secret",
	}

	t.Run("valid configuration", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("unknown environment", func(t *testing.T) {
		cfg := valid.Clone()
		cfg.Environment = "staging"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := valid.Clone()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := valid.Clone()
		cfg.DatabaseURL = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestClone(t *testing.T) {
	cfg := &Config{
		Environment:    "development",
		AllowedOrigins: []string{"https://app.example.com"},
	}

	clone := cfg.Clone()
	clone.AllowedOrigins[0] = "https://evil.example.com"

	assert.Equal(t, "https://app.example.com", cfg.AllowedOrigins[0])
}
