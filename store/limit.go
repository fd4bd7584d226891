package store

import (
	"context"
	"fmt"
)

// LimitedStore rejects writes larger than a fixed size with KindQuota,
// mirroring the per-item quota of on-device key-value stores.
type LimitedStore struct {
	KV
	maxValueBytes int
}

// Limit wraps kv so that values above maxValueBytes are refused.
func Limit(kv KV, maxValueBytes int) *LimitedStore {
	return &LimitedStore{KV: kv, maxValueBytes: maxValueBytes}
}

func (l *LimitedStore) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > l.maxValueBytes {
		return &Error{
			Op:   "set",
			Key:  key,
			Kind: KindQuota,
			Err: fmt.Errorf(
				"value of %d bytes exceeds the %d byte quota",
				len(value),
				l.maxValueBytes,
			),
		}
	}

	return l.KV.Set(ctx, key, value)
}
