package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyStorageBackend       = "storage.backend"
	keyStoragePath          = "storage.path"
	keyStorageMaxValueBytes = "storage.max_value_bytes"
	keyStorageCacheBytes    = "storage.cache_bytes"
	keyRetryMaxAttempts     = "retry.max_attempts"
	keyRetryBaseDelay       = "retry.base_delay"
	keyRetryMaxDelay        = "retry.max_delay"
	keyRetryTimeout         = "retry.timeout"
	keyRetryBackoffFactor   = "retry.backoff_factor"
	keyRetryJitter          = "retry.jitter"
	keySessionUserID        = "session.user_id"
	keySessionWeightUnit    = "session.weight_unit"
	keySessionRestDuration  = "session.rest_duration"
	keyHistoryLimit         = "history.limit"
	keyNotificationsEnabled = "notifications.enabled"
	keyHooksFinishCmd       = "hooks.finish_cmd"
	keyServerAddr           = "server.addr"
	keyLogLevel             = "log.level"
	keyLogMaxSizeMB         = "log.max_size_mb"
	keyLogMaxBackups        = "log.max_backups"
	keyLogMaxAgeDays        = "log.max_age_days"
	keyDarkTheme            = "display.dark_theme"
)

const envPrefix = "LIFT"

// WithViperConfig returns an Option that loads configuration from Viper.
// A missing config file is created with the defaults. Environment variables
// prefixed with LIFT_ override the file, e.g. LIFT_SESSION_REST_DURATION.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults and environment overrides.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyStorageBackend, "bolt")
	v.SetDefault(keyStoragePath, "")
	v.SetDefault(keyStorageMaxValueBytes, 5<<20)
	v.SetDefault(keyStorageCacheBytes, 8<<20)
	v.SetDefault(keyRetryMaxAttempts, 3)
	v.SetDefault(keyRetryBaseDelay, "1s")
	v.SetDefault(keyRetryMaxDelay, "5s")
	v.SetDefault(keyRetryTimeout, "10s")
	v.SetDefault(keyRetryBackoffFactor, 2.0)
	v.SetDefault(keyRetryJitter, 0.1)
	v.SetDefault(keySessionUserID, "local")
	v.SetDefault(keySessionWeightUnit, "kg")
	v.SetDefault(keySessionRestDuration, "90s")
	v.SetDefault(keyHistoryLimit, 100)
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keyHooksFinishCmd, "")
	v.SetDefault(keyServerAddr, "127.0.0.1:8470")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSizeMB, 10)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyLogMaxAgeDays, 28)
	v.SetDefault(keyDarkTheme, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	return nil
}
