// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURL  string
	DBPath       string
	RegistryAddr string

	// Recording lifecycle.
	SessionTTL        time.Duration
	ReconcileInterval time.Duration

	// Agent liveness.
	ProbeInterval time.Duration
	ProbeFailures int
	HeartbeatMax  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		FrontendURL:       getEnv("FRONTEND_URL", ""),
		DBPath:            getEnv("DB_PATH", "./data/recorder.db"),
		RegistryAddr:      getEnv("TOOL_REGISTRY_ADDR", ""),
		SessionTTL:        getEnvDuration("SESSION_TTL", 60*time.Minute),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 1500*time.Millisecond),
		ProbeInterval:     getEnvDuration("PROBE_INTERVAL", 3*time.Second),
		ProbeFailures:     getEnvInt("PROBE_FAILURES", 2),
		HeartbeatMax:      getEnvDuration("HEARTBEAT_MAX", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be > 0")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("PROBE_INTERVAL must be > 0")
	}
	if c.ProbeFailures <= 0 {
		return fmt.Errorf("PROBE_FAILURES must be > 0")
	}
	if c.HeartbeatMax <= 0 {
		return fmt.Errorf("HEARTBEAT_MAX must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
