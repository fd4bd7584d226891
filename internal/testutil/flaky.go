package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/ayoisaiah/lift/store"
)

// Operation names understood by FlakyStore.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpRemove = "remove"
	OpList   = "list"
)

// FlakyStore wraps a KV and fails calls according to a script. It counts
// every call it receives, failed or not.
type FlakyStore struct {
	store.KV
	failures map[string][]error
	calls    map[string]int
	mu       sync.Mutex
}

// NewFlakyStore wraps kv.
func NewFlakyStore(kv store.KV) *FlakyStore {
	return &FlakyStore{
		KV:       kv,
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// FailNext queues errs to be returned, in order, by the next calls of op.
func (f *FlakyStore) FailNext(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[op] = append(f.failures[op], errs...)
}

// Calls returns how many times op has been called.
func (f *FlakyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *FlakyStore) next(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	queue := f.failures[op]
	if len(queue) == 0 {
		return nil
	}

	f.failures[op] = queue[1:]

	return queue[0]
}

func (f *FlakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := f.next(OpGet); err != nil {
		return nil, false, err
	}

	return f.KV.Get(ctx, key)
}

func (f *FlakyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := f.next(OpSet); err != nil {
		return err
	}

	return f.KV.Set(ctx, key, value)
}

func (f *FlakyStore) Remove(ctx context.Context, key string) error {
	if err := f.next(OpRemove); err != nil {
		return err
	}

	return f.KV.Remove(ctx, key)
}

func (f *FlakyStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := f.next(OpList); err != nil {
		return nil, err
	}

	return f.KV.ListKeys(ctx)
}

// Transient returns a retryable store error.
func Transient(op string) error {
	return &store.Error{Op: op, Kind: store.KindTransient, Err: errors.New("io failure")}
}

// Quota returns a capacity store error.
func Quota(op string) error {
	return &store.Error{Op: op, Kind: store.KindQuota, Err: errors.New("quota exceeded")}
}
