// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"slices"
)

// Supported registry backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Supported log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// Store selects the registry backend: memory or redis.
	Store string `koanf:"store"`

	// Redis connection settings, used when Store is redis.
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// RedisPreserveState keeps rosters already in Redis instead of reseeding them.
	RedisPreserveState bool `koanf:"redis_preserve_state"`

	// SeedFile points at a YAML activity catalog. Empty uses the built-in catalog.
	SeedFile string `koanf:"seed_file"`

	// EnforceCapacity rejects signups once an activity reaches max_participants.
	EnforceCapacity bool `koanf:"enforce_capacity"`

	// ChangeQueueSize bounds the in-memory roster change queue.
	ChangeQueueSize int `koanf:"change_queue_size"`

	// ChangeWorkerCount sets the number of roster change workers.
	ChangeWorkerCount int `koanf:"change_worker_count"`

	// ChangeLogSize sets how many roster changes the journal keeps.
	ChangeLogSize int `koanf:"change_log_size"`

	// MaxChangeLimit caps GET /activities/changes?limit.
	MaxChangeLimit int `koanf:"max_change_limit"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          LogFormatText,
		Addr:               ":8000",
		Store:              StoreMemory,
		RedisKeyPrefix:     "activities:",
		ChangeQueueSize:    1024,
		ChangeWorkerCount:  2,
		ChangeLogSize:      1000,
		MaxChangeLimit:     100,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{StoreMemory, StoreRedis}, c.Store):
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Store == StoreRedis && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
	case !slices.Contains([]string{LogFormatText, LogFormatJSON}, c.LogFormat):
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.MaxChangeLimit < 1:
		return fmt.Errorf("%w: max_change_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
