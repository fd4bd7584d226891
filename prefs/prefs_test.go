package prefs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/testutil"
	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/store"
)

func newTestRepo(kv store.KV) *Repository {
	exec := retry.New(
		retry.DefaultOptions(),
		retry.WithMetrics(&retry.Metrics{}),
		retry.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)

	return New(docstore.New(kv, exec, nil), nil)
}

func TestPreferencesDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	repo := newTestRepo(kv)

	p, err := repo.Preferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	_, ok, err := repo.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Preferences(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(store.NewMemoryStore())

	want := models.Preferences{WeightUnit: UnitLb, RestSeconds: 120}
	require.NoError(t, repo.SavePreferences(ctx, "u1", want))

	got, ok, err := repo.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	err = repo.SavePreferences(ctx, "u1", models.Preferences{WeightUnit: "stone"})
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestCorruptPreferencesFallBackToDefaults(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"weightUnit":`,
		"array":        `[1,2]`,
		"invalid unit": `{"weightUnit":"stone","restSeconds":60}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := store.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, store.PreferencesKey("u1"), []byte(payload)))

			p, err := newTestRepo(kv).Preferences(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, Defaults(), p)
		})
	}
}

func TestPartialPreferencesKeepDefaults(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, store.PreferencesKey("u1"), []byte(`{"restSeconds":45}`)))

	p, err := newTestRepo(kv).Preferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 45, p.RestSeconds)
	assert.Equal(t, UnitKg, p.WeightUnit)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	repo := newTestRepo(kv)

	s, err := repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AppSettings{}, s)

	kv.FailNext(testutil.OpSet, testutil.Transient(testutil.OpSet))

	want := models.AppSettings{LastUserID: "u1", Theme: "dark"}
	require.NoError(t, repo.SaveSettings(ctx, want))
	assert.Equal(t, 2, kv.Calls(testutil.OpSet), "the transient failure is retried")

	s, err = repo.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, s)
}
