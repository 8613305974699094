// Package config centralises configuration parsing for the runtracker service.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the service.
type Config struct {
	Environment        string
	HTTPAddress        string
	DatabaseDriver     string
	DatabaseURL        string
	LogMode            string
	KafkaBrokers       []string // Empty disables the outbox dispatcher.
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	ShutdownTimeout    time.Duration
}

// ErrMissingDatabaseURL is returned when no connection string can be resolved.
var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

// Load reads a .env file when one exists, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment into Config, applying defaults for
// local development.
func FromEnv() (Config, error) {
	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":8080"),
		DatabaseDriver:     strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		OutboxPollInterval: getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    getIntEnv("OUTBOX_BATCH_SIZE", 25),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	cfg.LogMode = getEnv("LOG_MODE", cfg.Environment)

	fallbackURL := ""
	if cfg.DatabaseDriver == "sqlite" {
		fallbackURL = "runtracker.db"
	}
	cfg.DatabaseURL = getEnv("DATABASE_URL", fallbackURL)
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	cfg.KafkaBrokers = splitAndTrim(getEnv("KAFKA_BROKERS", ""))
	return cfg, nil
}

// IsProduction reports whether destructive development conveniences must be
// disabled.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production") || strings.EqualFold(c.Environment, "prod")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
