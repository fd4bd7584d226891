package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/testutil"
	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/store"
)

const userID = "u1"

var epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T, kv store.KV, opts ...Option) *Repository {
	t.Helper()

	exec := retry.New(
		retry.DefaultOptions(),
		retry.WithMetrics(&retry.Metrics{}),
		retry.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)

	opts = append([]Option{WithClock(func() time.Time { return epoch })}, opts...)

	return New(docstore.New(kv, exec, nil), opts...)
}

func record(id, name string) models.HistoryRecord {
	return models.HistoryRecord{
		ID:        id,
		Name:      name,
		Status:    models.StatusCompleted,
		Exercises: []models.ExerciseEntry{},
	}
}

func TestListSelfHealsCorruptedPayload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, store.HistoryKey(userID), []byte("{not valid json")))

	list, err := newTestRepo(t, kv).List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, ok, err := kv.Get(ctx, store.HistoryKey(userID))
	require.NoError(t, err)
	assert.False(t, ok, "corrupted key must be removed")
}

func TestListSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()

	payload := `[
		{"id":"a","name":"Push","exercises":[]},
		{"id":"b","exercises":[]},
		{"id":"c","name":"Pull","exercises":"none"},
		{"id":7,"name":"Legs","exercises":[]},
		{"id":"","name":"Empty","exercises":[]},
		42
	]`
	require.NoError(t, kv.Set(ctx, store.HistoryKey(userID), []byte(payload)))

	list, err := newTestRepo(t, kv).List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, models.StatusCompleted, list[0].Status)
	assert.NotNil(t, list[0].Exercises)

	v, _, err := kv.Get(ctx, store.HistoryKey(userID))
	require.NoError(t, err)
	assert.Equal(t, payload, string(v), "malformed entries are not written back on read")
}

func TestSaveReplacesSameID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	_, err := repo.Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, userID, record("a", "Push Heavy"))
	require.NoError(t, err)

	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Push Heavy", list[0].Name)
	assert.Equal(t, epoch, list[0].CreatedAt)
}

func TestSaveTrimsToLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	for i := range 105 {
		_, err := repo.Save(ctx, userID, record(fmt.Sprintf("r%03d", i), "Workout"))
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, DefaultLimit)
	assert.Equal(t, "r104", list[0].ID)
	assert.Equal(t, "r005", list[len(list)-1].ID)

	// re-saving an old record makes it the most recent one
	_, err = repo.Save(ctx, userID, record("r005", "Workout"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, userID, record("r105", "Workout"))
	require.NoError(t, err)

	list, err = repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, DefaultLimit)
	assert.Equal(t, "r005", list[1].ID)
	assert.Equal(t, "r007", list[len(list)-1].ID)
}

func TestValidationHappensBeforeStoreAccess(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	repo := newTestRepo(t, kv)

	_, err := repo.Save(ctx, "", record("a", "Push"))
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = repo.Save(ctx, userID, record("a", ""))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = repo.Save(ctx, userID, record("", "Push"))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = repo.List(ctx, "")
	assert.ErrorIs(t, err, ErrMissingUserID)

	assert.Zero(t, kv.Calls(testutil.OpGet))
	assert.Zero(t, kv.Calls(testutil.OpSet))
}

func TestDeleteMissingRecordDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	repo := newTestRepo(t, kv)

	_, err := repo.Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)

	writes := kv.Calls(testutil.OpSet)

	err = repo.Delete(ctx, userID, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, writes, kv.Calls(testutil.OpSet))

	require.NoError(t, repo.Delete(ctx, userID, "a"))
	assert.Equal(t, writes+1, kv.Calls(testutil.OpSet))

	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	repo := newTestRepo(t, kv)

	_, err := repo.Save(ctx, userID, record("b", "Legs"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)

	name, notes, rating := "Push Day", "felt strong", 4

	got, err := repo.Update(ctx, userID, "b", Patch{Name: &name, Notes: &notes, Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, epoch, *got.UpdatedAt)

	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[1].ID, "update keeps the record in place")
	assert.Equal(t, "Push Day", list[1].Name)
	assert.Equal(t, 4, list[1].Rating)

	writes := kv.Calls(testutil.OpSet)

	bad := 9
	_, err = repo.Update(ctx, userID, "b", Patch{Rating: &bad})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	empty := ""
	_, err = repo.Update(ctx, userID, "b", Patch{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = repo.Update(ctx, userID, "zzz", Patch{Name: &name})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.Equal(t, writes, kv.Calls(testutil.OpSet))
}

func TestUpdateExercisesRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	_, err := repo.Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)

	w, r := 20.0, 10
	exercises := []models.ExerciseEntry{{
		ID:       "e1",
		Exercise: models.ExerciseRef{ID: "bench", Name: "Bench Press"},
		Sets: []models.SetEntry{
			{ID: "s1", Status: models.SetCompleted, Weight: 20, Reps: 10, ActualWeight: &w, ActualReps: &r},
			{ID: "s2", Status: models.SetPending, Weight: 20, Reps: 10},
		},
	}}

	got, err := repo.Update(ctx, userID, "a", Patch{Exercises: &exercises})
	require.NoError(t, err)
	assert.Equal(t, 1, got.CompletedSets)
	assert.Equal(t, 2, got.TotalSets)
	assert.InDelta(t, 200.0, got.TotalVolume, 1e-9)
	assert.InDelta(t, 7.0, got.Calories, 1e-9)
}

func TestSaveRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	kv.FailNext(testutil.OpSet, testutil.Transient("set"), testutil.Transient("set"))

	_, err := newTestRepo(t, kv).Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)
	assert.Equal(t, 3, kv.Calls(testutil.OpSet))
}

func TestSaveQuotaFailsImmediately(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	kv.FailNext(testutil.OpSet, testutil.Quota("set"))

	_, err := newTestRepo(t, kv).Save(ctx, userID, record("a", "Push"))
	require.Error(t, err)
	assert.True(t, retry.IsQuota(err))
	assert.Equal(t, 1, kv.Calls(testutil.OpSet))

	var serr *retry.StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, store.HistoryKey(userID), serr.Key)
}

func TestSearchAndFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	push := record("a", "Push")
	push.Date = epoch
	push.Notes = "post-work session at the caf\u00e9"
	push.Exercises = []models.ExerciseEntry{{
		ID:       "e1",
		Exercise: models.ExerciseRef{Name: "Bench Press"},
		Sets:     []models.SetEntry{},
	}}

	legs := record("b", "Legs")
	legs.Date = epoch.AddDate(0, 0, 3)
	legs.Notes = "Squats felt HEAVY"

	for _, rec := range []models.HistoryRecord{push, legs} {
		_, err := repo.Save(ctx, userID, rec)
		require.NoError(t, err)
	}

	ids := func(list []models.HistoryRecord) []string {
		out := []string{}
		for _, r := range list {
			out = append(out, r.ID)
		}

		return out
	}

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all", filter: Filter{}, want: []string{"b", "a"}},
		{name: "exercise name", filter: Filter{Query: "bench"}, want: []string{"a"}},
		{name: "notes", filter: Filter{Query: "heavy"}, want: []string{"b"}},
		{name: "since", filter: Filter{Start: epoch.AddDate(0, 0, 1)}, want: []string{"b"}},
		{name: "until", filter: Filter{End: epoch.AddDate(0, 0, 1)}, want: []string{"a"}},
		{name: "decomposed accent", filter: Filter{Query: "CAFE\u0301"}, want: []string{"a"}},
		{name: "no match", filter: Filter{Query: "deadlift"}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Filter(ctx, userID, tc.filter)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, err := repo.Search(ctx, userID, "PUSH")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestImportJSON(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFlakyStore(store.NewMemoryStore())
	repo := newTestRepo(t, kv)

	old := record("a", "Old Push")
	old.Date = epoch

	_, err := repo.Save(ctx, userID, old)
	require.NoError(t, err)

	data := []byte(`[
		{"id":"a","name":"Push","date":"2025-03-05T09:00:00Z","exercises":[]},
		{"id":"b","name":"Legs","date":"2025-03-03T09:00:00Z","exercises":[]},
		{"id":"c","exercises":[]},
		{"id":"d","name":"Bad","rating":11,"exercises":[]}
	]`)

	writes := kv.Calls(testutil.OpSet)

	res, err := repo.ImportJSON(ctx, userID, data)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 2}, res)
	assert.Equal(t, writes+1, kv.Calls(testutil.OpSet), "import writes once")

	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "Push", list[0].Name)
	assert.Equal(t, "b", list[1].ID)

	_, err = repo.ImportJSON(ctx, userID, []byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, ErrInvalidImport)
}

type csvGolden struct {
	name string
	data []byte
}

func (c csvGolden) Output() ([]byte, string) {
	return c.data, c.name
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, store.NewMemoryStore())

	legs := record("b", "Legs")
	legs.Date = epoch
	legs.Duration = time.Hour

	push := record("a", `Push "Heavy"`)
	push.Date = epoch.AddDate(0, 0, 1)
	push.Duration = 45*time.Minute + 30*time.Second
	push.Rating = 4
	push.TotalVolume = 1234.5
	push.Notes = `felt "great", strong`
	push.Exercises = []models.ExerciseEntry{
		{ID: "e1", Exercise: models.ExerciseRef{Name: "Bench Press"}},
		{ID: "e2", Exercise: models.ExerciseRef{Name: "Dips"}},
	}

	for _, rec := range []models.HistoryRecord{legs, push} {
		_, err := repo.Save(ctx, userID, rec)
		require.NoError(t, err)
	}

	data, err := repo.ExportCSV(ctx, userID)
	require.NoError(t, err)

	testutil.CompareGoldenFile(t, csvGolden{name: "export_csv", data: data})
}

func TestExportJSONRoundTripsThroughImport(t *testing.T) {
	ctx := context.Background()
	src := newTestRepo(t, store.NewMemoryStore())

	_, err := src.Save(ctx, userID, record("a", "Push"))
	require.NoError(t, err)

	data, err := src.ExportJSON(ctx, userID)
	require.NoError(t, err)

	dst := newTestRepo(t, store.NewMemoryStore())

	res, err := dst.ImportJSON(ctx, userID, data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	got, err := dst.Get(ctx, userID, "a")
	require.NoError(t, err)
	assert.Equal(t, "Push", got.Name)
}
