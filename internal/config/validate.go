package config

import (
	"slices"
	"strings"
	"time"

	"github.com/ayoisaiah/lift/store"
)

var (
	backends = []string{
		store.BackendBolt,
		store.BackendSQLite,
		store.BackendFile,
		store.BackendMemory,
	}

	minRetryAttempts = 1
	maxRetryAttempts = 10

	minRestDuration = 0 * time.Second
	maxRestDuration = 30 * time.Minute

	minHistoryLimit = 1
	maxHistoryLimit = 1000

	weightUnits = []string{"kg", "lb"}
	logLevels   = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	if c.History.Limit < minHistoryLimit || c.History.Limit > maxHistoryLimit {
		return errInvalidHistoryLimit.Fmt(minHistoryLimit, maxHistoryLimit)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	return nil
}

func (c *Config) validateStorage() error {
	if !slices.Contains(backends, c.Storage.Backend) {
		return errUnknownBackend.Fmt(c.Storage.Backend, backends)
	}

	return nil
}

func (c *Config) validateRetry() error {
	r := c.Retry

	if r.MaxAttempts < minRetryAttempts || r.MaxAttempts > maxRetryAttempts {
		return errInvalidRetryAttempts.Fmt(minRetryAttempts, maxRetryAttempts)
	}

	if r.BaseDelay <= 0 || r.MaxDelay < r.BaseDelay {
		return errInvalidRetryDelay.Fmt(r.MaxDelay, r.BaseDelay)
	}

	if r.BackoffFactor < 1 {
		return errInvalidBackoff.Fmt(r.BackoffFactor)
	}

	if r.Jitter < 0 || r.Jitter > 1 {
		return errInvalidJitter.Fmt(r.Jitter)
	}

	if r.Timeout <= 0 {
		return errInvalidTimeout.Fmt(r.Timeout)
	}

	return nil
}

func (c *Config) validateSession() error {
	s := c.Session

	if strings.TrimSpace(s.UserID) == "" {
		return errEmptyUserID
	}

	if !slices.Contains(weightUnits, s.WeightUnit) {
		return errInvalidWeightUnit.Fmt(s.WeightUnit)
	}

	if s.RestDuration < minRestDuration || s.RestDuration > maxRestDuration {
		return errInvalidDuration.Fmt("rest", minRestDuration, maxRestDuration)
	}

	return nil
}
