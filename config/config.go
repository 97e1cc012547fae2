package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration int

	// Upstream backend configuration
	BaseURL         string
	UpstreamTimeout time.Duration

	// Collection mirror configuration
	StoreMaxAge time.Duration

	// Rate Limiting Configuration
	RateLimitRequests int
	RateLimitWindow   int

	// CORS Configuration
	AllowedOrigins  []string
	AllowAllOrigins bool

	// Metric snapshot configuration
	SnapshotEnabled bool
	SnapshotLimit   int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "feedlink.db"),
		JWTSecret:     getEnv("JWT_SECRET", "change-this-feedlink-secret-in-production"),
		JWTExpiration: getEnvAsInt("JWT_EXPIRATION", 24*60*60), // 24 hours in seconds

		// Upstream backend origin. May legitimately be empty: proxy handlers
		// answer 500 with a configuration error in that case.
		BaseURL:         getEnv("BASE_URL", getEnv("API_BASE_URL", "")),
		UpstreamTimeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,

		StoreMaxAge: time.Duration(getEnvAsInt("STORE_MAX_AGE_SECONDS", 30)) * time.Second,

		// Rate Limiting Configuration
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		// CORS Configuration
		AllowedOrigins:  getEnvAsStringSlice("ALLOWED_ORIGINS", []string{}),
		AllowAllOrigins: getEnvAsBool("ALLOW_ALL_ORIGINS", true), // Default to true for development

		// Metric snapshot configuration
		SnapshotEnabled: getEnvAsBool("SNAPSHOT_ENABLED", true),
		SnapshotLimit:   getEnvAsInt("SNAPSHOT_LIMIT", 50),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	// Validate environment values
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	return nil
}

// HasUpstream reports whether an upstream backend origin is configured
func (c *Config) HasUpstream() bool {
	return c.BaseURL != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, BaseURL: %s}", c.Environment, c.Port, c.BaseURL)
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	if c.AllowedOrigins != nil {
		clone.AllowedOrigins = make([]string, len(c.AllowedOrigins))
		copy(clone.AllowedOrigins, c.AllowedOrigins)
	}
	return &clone
}
