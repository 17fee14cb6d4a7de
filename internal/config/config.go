// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
)

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port        string
	Storage     string
	DBPath      string
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	CORSOrigin  string

	// BackupSchedule is a standard five-field cron spec. Empty disables backups.
	BackupSchedule string
	BackupDir      string
	BackupKeep     int

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var errs error

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Storage:        strings.ToLower(getEnv("STORAGE", StorageSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/travelsplit.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", ""),
		BackupDir:      getEnv("BACKUP_DIR", "./data/backups"),
	}

	keep, err := strconv.Atoi(getEnv("BACKUP_KEEP", "7"))
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("BACKUP_KEEP: %w", err))
	}
	cfg.BackupKeep = keep

	timeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	cfg.ShutdownTimeout = timeout

	if errs != nil {
		return nil, errs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error

	if c.Port == "" {
		errs = multierr.Append(errs, fmt.Errorf("PORT is required"))
	}
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			errs = multierr.Append(errs, fmt.Errorf("DB_PATH is required for sqlite storage"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = multierr.Append(errs, fmt.Errorf("DATABASE_URL is required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = multierr.Append(errs, fmt.Errorf("STORAGE must be one of sqlite, postgres, memory, got %q", c.Storage))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = multierr.Append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("BACKUP_SCHEDULE: %w", err))
		}
		if c.BackupDir == "" {
			errs = multierr.Append(errs, fmt.Errorf("BACKUP_DIR is required when backups are scheduled"))
		}
	}
	if c.BackupKeep < 0 {
		errs = multierr.Append(errs, fmt.Errorf("BACKUP_KEEP must not be negative, got %d", c.BackupKeep))
	}
	if c.ShutdownTimeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}

	return errs
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
