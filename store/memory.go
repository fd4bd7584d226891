package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a process-local KV. It backs tests and the "memory"
// backend.
type MemoryStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(
	ctx context.Context,
	key string,
) ([]byte, bool, error) {
	if err := checkKey("get", key); err != nil {
		return nil, false, err
	}

	if err := ctxErr(ctx, "get", key); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	return slices.Clone(v), true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey("set", key); err != nil {
		return err
	}

	if err := ctxErr(ctx, "set", key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte{}, value...)

	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := checkKey("remove", key); err != nil {
		return err
	}

	if err := ctxErr(ctx, "remove", key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *MemoryStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctxErr(ctx, "list", ""); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
