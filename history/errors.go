package history

import (
	"errors"

	"github.com/ayoisaiah/lift/internal/apperr"
)

var (
	ErrMissingUserID  = errors.New("a user id is required")
	ErrRecordNotFound = errors.New("workout record not found")

	ErrInvalidRecord = &apperr.Error{
		Message: "invalid workout record: %s",
	}

	ErrInvalidImport = &apperr.Error{
		Message: "import payload must be a JSON array of workouts",
	}
)
