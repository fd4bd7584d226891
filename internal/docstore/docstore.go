// Package docstore reads and writes JSON documents in a store.KV through the
// retry executor. Payloads that cannot be decoded are treated as corrupted:
// the key is removed and the caller sees an absent document.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/store"
)

// Store is a JSON document view over a KV.
type Store struct {
	kv   store.KV
	exec *retry.Executor
	log  *slog.Logger
}

type rawValue struct {
	data []byte
	ok   bool
}

// New returns a Store. A nil log discards records.
func New(kv store.KV, exec *retry.Executor, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Store{kv: kv, exec: exec, log: log}
}

// KV returns the underlying store.
func (s *Store) KV() store.KV {
	return s.kv
}

// Raw returns the bytes stored under key.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := retry.Value(ctx, s.exec, "get", key, func(ctx context.Context) (rawValue, error) {
		data, ok, err := s.kv.Get(ctx, key)
		return rawValue{data: data, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}

	return v.data, v.ok, nil
}

// ReadArray returns the elements of the JSON array stored under key. A
// missing key yields nil. A payload that is not a JSON array is removed and
// also yields nil.
func (s *Store) ReadArray(
	ctx context.Context,
	key string,
) ([]json.RawMessage, error) {
	data, ok, err := s.Raw(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	if !hasPrefix(data, '[') {
		s.heal(ctx, key, errNotArray)
		return nil, nil
	}

	var items []json.RawMessage

	if err := json.Unmarshal(data, &items); err != nil {
		s.heal(ctx, key, err)
		return nil, nil
	}

	return items, nil
}

// ReadObject decodes the JSON object stored under key into v and reports
// whether one was found. A payload that is not a decodable object is removed
// and reported as absent.
func (s *Store) ReadObject(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.Raw(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	if !hasPrefix(data, '{') {
		s.heal(ctx, key, errNotObject)
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.heal(ctx, key, err)
		return false, nil
	}

	return true, nil
}

// Write encodes v as JSON and stores it under key in a single write.
func (s *Store) Write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return s.exec.Do(ctx, "set", key, func(ctx context.Context) error {
		return s.kv.Set(ctx, key, data)
	})
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.exec.Do(ctx, "remove", key, func(ctx context.Context) error {
		return s.kv.Remove(ctx, key)
	})
}

func (s *Store) heal(ctx context.Context, key string, cause error) {
	s.log.Warn(
		"removing corrupted payload",
		slog.String("key", key),
		slog.Any("error", cause),
	)

	if err := s.Remove(ctx, key); err != nil {
		s.log.Error(
			"corrupted payload could not be removed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func hasPrefix(data []byte, b byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == b
}
