// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for optional settings.
const (
	DefaultLogLevel           = "info"
	DefaultListenAddr         = ":8080"
	DefaultMetricsListenAddr  = "localhost:9090"
	DefaultDatabasePath       = "/data/gateway.db"
	DefaultOracleBaseURL      = "https://api.openai.com/v1"
	DefaultOracleModel        = "gpt-4o"
	DefaultRateLimitCapacity  = 30
	DefaultRateLimitRefill    = 0.5
	DefaultRateLimitSweepTick = 5 * time.Minute
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string // debug, info, warn, error
	ListenAddr        string // Server listen address (e.g., ":8080")
	MetricsListenAddr string // Metrics listener address (e.g., "localhost:9090")
	DatabaseURL       string // postgres:// URL, SQLite file path or ":memory:"
	APIKeys           []string
	OracleAPIKey      string
	OracleBaseURL     string
	OracleModel       string
	DenylistPath      string // Optional YAML file with extra denied keywords

	RateLimitCapacity      float64
	RateLimitRefillPerSec  float64
	RateLimitSweepInterval time.Duration // 0 disables idle bucket sweeping
}

// Load parses configuration from environment variables.
// Only malformed numeric values produce an error here; required fields are
// checked by Validate.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:          envOr("LOG_LEVEL", DefaultLogLevel),
		ListenAddr:        envOr("LISTEN_ADDR", DefaultListenAddr),
		MetricsListenAddr: envOr("METRICS_LISTEN_ADDR", DefaultMetricsListenAddr),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIKeys:           ParseAPIKeys(os.Getenv("API_KEYS")),
		OracleAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OracleBaseURL:     envOr("ORACLE_BASE_URL", DefaultOracleBaseURL),
		OracleModel:       envOr("ORACLE_MODEL", DefaultOracleModel),
		DenylistPath:      os.Getenv("DENYLIST_PATH"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = envOr("DATABASE_PATH", DefaultDatabasePath)
	}

	var err error
	if cfg.RateLimitCapacity, err = envFloat("RATE_LIMIT_CAPACITY", DefaultRateLimitCapacity); err != nil {
		return nil, err
	}
	if cfg.RateLimitRefillPerSec, err = envFloat("RATE_LIMIT_REFILL_PER_SECOND", DefaultRateLimitRefill); err != nil {
		return nil, err
	}
	if cfg.RateLimitSweepInterval, err = envDuration("RATE_LIMIT_SWEEP_INTERVAL", DefaultRateLimitSweepTick); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if len(c.APIKeys) == 0 {
		return fmt.Errorf("API_KEYS environment variable is required")
	}
	if c.OracleAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if math.IsNaN(c.RateLimitCapacity) || math.IsInf(c.RateLimitCapacity, 0) || c.RateLimitCapacity < 1 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be a finite number of at least 1, got %v", c.RateLimitCapacity)
	}
	if math.IsNaN(c.RateLimitRefillPerSec) || math.IsInf(c.RateLimitRefillPerSec, 0) || c.RateLimitRefillPerSec <= 0 {
		return fmt.Errorf("RATE_LIMIT_REFILL_PER_SECOND must be a finite positive number, got %v", c.RateLimitRefillPerSec)
	}
	if c.RateLimitSweepInterval < 0 {
		return fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// ParseAPIKeys splits a comma-separated key list, trimming whitespace and
// dropping empty entries.
func ParseAPIKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envFloat(name string, fallback float64) (float64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", name, v)
	}
	return f, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}
