// Package store provides the durable key-value adapters that lift persists
// workout data through. Every backend reports failures as *Error values
// carrying a Kind so that callers can decide what is worth retrying.
package store

import (
	"context"
	"errors"
	"fmt"
)

// KV is a flat key-value byte store. Get reports ok=false for a missing key;
// a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
	Close() error
}

// Kind classifies a store failure.
type Kind int

const (
	// KindTransient is a temporary I/O or backend failure.
	KindTransient Kind = iota + 1
	// KindTimeout means the backend did not answer in time.
	KindTimeout
	// KindQuota means the store has no room for the write.
	KindQuota
	// KindInvalid means the request itself was malformed.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	case KindQuota:
		return "quota"
	case KindInvalid:
		return "invalid"
	}

	return "unknown"
}

// Error is the structured error returned by every KV implementation.
type Error struct {
	Err  error
	Op   string
	Key  string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s (%s): %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("store %s %q (%s): %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	return 0
}

// IsQuota reports whether err means the store is out of space.
func IsQuota(err error) bool {
	return KindOf(err) == KindQuota
}

func wrap(op, key string, kind Kind, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	return &Error{Op: op, Key: key, Kind: kind, Err: err}
}

func checkKey(op, key string) error {
	if key == "" {
		return &Error{Op: op, Kind: KindInvalid, Err: errEmptyKey}
	}

	return nil
}

// ctxErr converts a finished context into a timeout or transient error.
func ctxErr(ctx context.Context, op, key string) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Key: key, Kind: KindTimeout, Err: err}
	}

	return &Error{Op: op, Key: key, Kind: KindTransient, Err: err}
}
