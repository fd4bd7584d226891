package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

type backendCase struct {
	open func(t *testing.T) KV
	name string
}

var backendCases = []backendCase{
	{
		name: "memory",
		open: func(t *testing.T) KV {
			t.Helper()
			return NewMemoryStore()
		},
	},
	{
		name: "bolt",
		open: func(t *testing.T) KV {
			t.Helper()

			kv, err := NewBoltStore(filepath.Join(t.TempDir(), "lift.db"))
			require.NoError(t, err)

			return kv
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) KV {
			t.Helper()

			kv, err := NewSQLiteStore(filepath.Join(t.TempDir(), "lift.sqlite"))
			require.NoError(t, err)

			return kv
		},
	},
	{
		name: "file",
		open: func(t *testing.T) KV {
			t.Helper()

			kv, err := NewFileStore(afero.NewMemMapFs(), "/data/lift")
			require.NoError(t, err)

			return kv
		},
	},
	{
		name: "cached",
		open: func(t *testing.T) KV {
			t.Helper()

			kv, err := NewCachedStore(NewMemoryStore(), 1<<20)
			require.NoError(t, err)

			return kv
		},
	},
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for _, tc := range backendCases {
		t.Run(tc.name, func(t *testing.T) {
			kv := tc.open(t)
			defer kv.Close()

			_, ok, err := kv.Get(ctx, HistoryKey("u1"))
			require.NoError(t, err)
			assert.False(t, ok, "missing key must report ok=false")

			require.NoError(t, kv.Set(ctx, HistoryKey("u1"), []byte(`[1]`)))
			require.NoError(t, kv.Set(ctx, HistoryKey("u1"), []byte(`[1,2]`)))
			require.NoError(t, kv.Set(ctx, CacheKey("summary/u1"), []byte(`{}`)))

			v, ok, err := kv.Get(ctx, HistoryKey("u1"))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1,2]`, string(v))

			keys, err := kv.ListKeys(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(
				t,
				[]string{"workout_history_u1", "cache_summary/u1"},
				keys,
			)

			removed, err := ClearCache(ctx, kv)
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			require.NoError(t, kv.Remove(ctx, HistoryKey("u1")))
			require.NoError(t, kv.Remove(ctx, HistoryKey("u1")), "removing a missing key is not an error")

			_, ok, err = kv.Get(ctx, HistoryKey("u1"))
			require.NoError(t, err)
			assert.False(t, ok)

			err = kv.Set(ctx, "", []byte("x"))
			assert.Equal(t, KindInvalid, KindOf(err))
		})
	}
}

func TestKeyNames(t *testing.T) {
	assert.Equal(t, "plans_abc", PlansKey("abc"))
	assert.Equal(t, "workout_history_abc", HistoryKey("abc"))
	assert.Equal(t, "user_preferences_abc", PreferencesKey("abc"))
	assert.Equal(t, "cache_abc", CacheKey("abc"))
	assert.Equal(t, "app_settings", AppSettingsKey)
}

func TestLimitRejectsLargeValues(t *testing.T) {
	ctx := context.Background()
	kv := Limit(NewMemoryStore(), 4)

	require.NoError(t, kv.Set(ctx, "k", []byte("1234")))

	err := kv.Set(ctx, "k", []byte("12345"))
	require.Error(t, err)
	assert.True(t, IsQuota(err))

	v, _, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1234", string(v))
}

func TestCanceledContextIsClassified(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMemoryStore().Get(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBoltClosedStoreIsTransient(t *testing.T) {
	kv, err := NewBoltStore(filepath.Join(t.TempDir(), "lift.db"))
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	err = kv.Set(context.Background(), "k", []byte("v"))
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestBoltMigratesLegacyBuckets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lift.db")

	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("workout_history"))
		if err != nil {
			return err
		}

		return b.Put([]byte("u1"), []byte(`[]`))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	kv, err := NewBoltStore(path)
	require.NoError(t, err)
	defer kv.Close()

	v, ok, err := kv.Get(context.Background(), HistoryKey("u1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "floppy"})
	require.Error(t, err)
}

func TestOpenWrapsLimitAndCache(t *testing.T) {
	kv, err := Open(Options{
		Backend:       BackendMemory,
		MaxValueBytes: 8,
		CacheBytes:    1 << 16,
	})
	require.NoError(t, err)
	defer kv.Close()

	_, ok := kv.(*CachedStore)
	assert.True(t, ok)

	err = kv.Set(context.Background(), "k", []byte("too large for quota"))
	assert.True(t, IsQuota(err))
}
