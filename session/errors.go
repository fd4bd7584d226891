package session

import "errors"

var (
	ErrSessionActive    = errors.New("a workout session is already in progress")
	ErrNoSession        = errors.New("no workout session in progress")
	ErrExerciseNotFound = errors.New("exercise not found in the current session")
	ErrSetNotFound      = errors.New("set not found in the exercise")
	ErrInvalidPosition  = errors.New("exercise position out of range")
	ErrEmptyExercise    = errors.New("an exercise needs a name")
)
