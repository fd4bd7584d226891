package plan

import (
	"errors"

	"github.com/ayoisaiah/lift/internal/apperr"
)

var (
	ErrMissingUserID = errors.New("a user id is required")
	ErrPlanNotFound  = errors.New("plan not found")
	ErrDayNotFound   = errors.New("plan day not found")

	ErrInvalidPlan = &apperr.Error{
		Message: "invalid plan: %s",
	}

	errReadPlanFile = &apperr.Error{
		Message: "unable to read plan file",
	}
)
