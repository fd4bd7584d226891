package store

import (
	"errors"
	"fmt"
)

var (
	errEmptyKey = errors.New("key must not be empty")

	errLiftRunning = errors.New(
		"is lift already running? Only one instance can hold the database at a time",
	)

	errClosed = errors.New("store is closed")
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Options configures Open.
type Options struct {
	Backend string
	Path    string
	// MaxValueBytes rejects larger writes with KindQuota. Zero disables the
	// limit.
	MaxValueBytes int
	// CacheBytes enables the in-process read cache when positive.
	CacheBytes int64
}

// Open returns the configured backend, wrapped with the quota limiter and
// read cache when they are enabled.
func Open(opts Options) (KV, error) {
	var (
		kv  KV
		err error
	)

	switch opts.Backend {
	case BackendBolt, "":
		kv, err = NewBoltStore(opts.Path)
	case BackendSQLite:
		kv, err = NewSQLiteStore(opts.Path)
	case BackendFile:
		kv, err = NewFileStore(nil, opts.Path)
	case BackendMemory:
		kv = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if err != nil {
		return nil, err
	}

	if opts.MaxValueBytes > 0 {
		kv = Limit(kv, opts.MaxValueBytes)
	}

	if opts.CacheBytes > 0 {
		cached, err := NewCachedStore(kv, opts.CacheBytes)
		if err != nil {
			_ = kv.Close()
			return nil, err
		}

		kv = cached
	}

	return kv, nil
}
