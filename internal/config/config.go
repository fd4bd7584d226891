package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayoisaiah/lift/internal/pathutil"
	"github.com/ayoisaiah/lift/store"
)

type (
	// Config holds all configuration settings
	Config struct {
		Storage       StorageConfig      `mapstructure:"storage"`
		Retry         RetryConfig        `mapstructure:"retry"`
		Session       SessionConfig      `mapstructure:"session"`
		History       HistoryConfig      `mapstructure:"history"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Hooks         HooksConfig        `mapstructure:"hooks"`
		Server        ServerConfig       `mapstructure:"server"`
		Log           LogConfig          `mapstructure:"log"`
		Display       DisplayConfig      `mapstructure:"display"`
	}

	// StorageConfig selects and tunes the key-value backend
	StorageConfig struct {
		Backend       string `mapstructure:"backend"`
		Path          string `mapstructure:"path"`
		MaxValueBytes int    `mapstructure:"max_value_bytes"`
		CacheBytes    int64  `mapstructure:"cache_bytes"`
	}

	// RetryConfig holds the storage retry policy
	RetryConfig struct {
		MaxAttempts   int           `mapstructure:"max_attempts"`
		BaseDelay     time.Duration `mapstructure:"base_delay"`
		MaxDelay      time.Duration `mapstructure:"max_delay"`
		Timeout       time.Duration `mapstructure:"timeout"`
		BackoffFactor float64       `mapstructure:"backoff_factor"`
		Jitter        float64       `mapstructure:"jitter"`
	}

	// SessionConfig holds workout session settings
	SessionConfig struct {
		UserID       string        `mapstructure:"user_id"`
		WeightUnit   string        `mapstructure:"weight_unit"`
		RestDuration time.Duration `mapstructure:"rest_duration"`
	}

	// HistoryConfig holds history retention settings
	HistoryConfig struct {
		Limit int `mapstructure:"limit"`
	}

	// NotificationConfig holds notification settings
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// HooksConfig holds commands run on workout events
	HooksConfig struct {
		FinishCmd string `mapstructure:"finish_cmd"`
	}

	// ServerConfig holds HTTP server settings
	ServerConfig struct {
		Addr string `mapstructure:"addr"`
	}

	// LogConfig holds log file settings
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	}

	// DisplayConfig holds display-related settings
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config with default values and applies options
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// StoragePath returns the configured storage location, falling back to the
// default data file of the selected backend.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}

	switch c.Storage.Backend {
	case store.BackendSQLite:
		return pathutil.SQLiteFilePath()
	case store.BackendFile:
		return pathutil.DocumentsDir()
	case store.BackendMemory:
		return ""
	}

	return pathutil.DBFilePath()
}

// StoreOptions returns the options used to open the key-value store.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage.Backend,
		Path:          c.StoragePath(),
		MaxValueBytes: c.Storage.MaxValueBytes,
		CacheBytes:    c.Storage.CacheBytes,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"backend=%s user=%s rest=%s history_limit=%d",
		c.Storage.Backend,
		c.Session.UserID,
		c.Session.RestDuration,
		c.History.Limit,
	)
}
