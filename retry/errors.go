package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/store"
)

// ErrTimeout is returned for an attempt that did not finish within
// Options.Timeout.
var ErrTimeout = errors.New("storage operation timed out")

// Class is the retry classification of a failure.
type Class int

const (
	ClassUnknown Class = iota
	ClassTransient
	ClassTimeout
	ClassQuota
	ClassInvalid
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassTimeout:
		return "timeout"
	case ClassQuota:
		return "quota"
	case ClassInvalid:
		return "invalid"
	case ClassUnknown:
	}

	return "unknown"
}

// Retryable reports whether failures of this class are worth another
// attempt.
func (c Class) Retryable() bool {
	return c == ClassTransient || c == ClassTimeout
}

// Classify maps err onto a Class using the structured kinds reported by the
// store package. Errors that carry no kind are not retried.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	switch store.KindOf(err) {
	case store.KindTransient:
		return ClassTransient
	case store.KindTimeout:
		return ClassTimeout
	case store.KindQuota:
		return ClassQuota
	case store.KindInvalid:
		return ClassInvalid
	}

	return ClassUnknown
}

// StorageError is the terminal error of a retried operation.
type StorageError struct {
	Err      error
	Op       string
	Key      string
	Outcome  models.RetryOutcome
	Attempts int
	Class    Class
}

func (e *StorageError) Error() string {
	return fmt.Sprintf(
		"%s %q failed after %d attempt(s) (%s): %v",
		e.Op,
		e.Key,
		e.Attempts,
		e.Class,
		e.Err,
	)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsQuota reports whether err is a storage failure caused by exhausted
// capacity.
func IsQuota(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Class == ClassQuota
	}

	return store.IsQuota(err)
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("storage operation panicked: %v", p.value)
}
