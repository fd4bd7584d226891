package config

import "github.com/ayoisaiah/lift/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errUnknownBackend = &apperr.Error{
		Message: "unknown storage backend: %s (must be one of %v)",
	}

	errInvalidRetryAttempts = &apperr.Error{
		Message: "retry attempts must be between %d and %d",
	}

	errInvalidRetryDelay = &apperr.Error{
		Message: "retry max delay (%v) must not be less than the base delay (%v)",
	}

	errInvalidBackoff = &apperr.Error{
		Message: "retry backoff factor must be at least 1, got %v",
	}

	errInvalidJitter = &apperr.Error{
		Message: "retry jitter must be between 0 and 1, got %v",
	}

	errInvalidTimeout = &apperr.Error{
		Message: "retry timeout must be positive, got %v",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s duration must be between %v and %v",
	}

	errInvalidWeightUnit = &apperr.Error{
		Message: "weight unit must be kg or lb, got %s",
	}

	errInvalidHistoryLimit = &apperr.Error{
		Message: "history limit must be between %d and %d",
	}

	errEmptyUserID = &apperr.Error{
		Message: "session user id cannot be empty",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level: %s",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}

	errInvalidDateRange = &apperr.Error{
		Message: "the start time must be earlier than the end time",
	}

	errInvalidPeriod = &apperr.Error{
		Message: "please provide a valid time period",
	}

	errInvalidDate = &apperr.Error{
		Message: "please provide a valid %s date",
	}
)
