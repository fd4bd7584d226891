package engine

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/logging"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/internal/testutil"
	"github.com/ayoisaiah/lift/plan"
	"github.com/ayoisaiah/lift/prefs"
	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/session"
	"github.com/ayoisaiah/lift/store"
	"github.com/ayoisaiah/lift/timer"
)

const userID = "u1"

type harness struct {
	engine *Engine
	docs   *docstore.Store
	hist   *history.Repository
	kv     *testutil.FlakyStore
	sched  *timer.ManualScheduler
	now    time.Time
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		kv:    testutil.NewFlakyStore(store.NewMemoryStore()),
		sched: timer.NewManualScheduler(),
		now:   time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}

	exec := retry.New(
		retry.DefaultOptions(),
		retry.WithMetrics(&retry.Metrics{}),
		retry.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)

	h.docs = docstore.New(h.kv, exec, nil)
	h.hist = history.New(h.docs)

	clock := func() time.Time { return h.now }

	opts = append([]Option{
		WithScheduler(h.sched),
		WithClock(clock),
		WithLogger(logging.Discard()),
	}, opts...)

	e, err := New(userID, h.hist, opts...)
	require.NoError(t, err)

	t.Cleanup(e.Close)

	h.engine = e

	return h
}

func benchSeed() session.Seed {
	return session.Seed{
		Name: "Push",
		Exercises: []session.ExerciseSeed{{
			Exercise: models.ExerciseRef{ID: "bench", Name: "Bench Press"},
			Sets:     session.Uniform(3, 20, 10),
		}},
	}
}

func completeSet(t *testing.T, e *Engine, exercise, set int) {
	t.Helper()

	s, ok := e.Session()
	require.True(t, ok)

	done := true
	ex := s.Exercises[exercise]
	require.NoError(t, e.RecordSet(ex.ID, ex.Sets[set].ID, session.SetUpdate{Completed: &done}))
}

func TestNewRequiresUser(t *testing.T) {
	_, err := New("", nil)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestExampleWorkout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	var rested atomic.Int32

	e.OnRestComplete(func() {
		rested.Add(1)
	})

	require.NoError(t, e.StartSession(ctx, benchSeed()))
	assert.ErrorIs(t, e.StartSession(ctx, benchSeed()), session.ErrSessionActive)

	completeSet(t, e, 0, 0)

	stats, ok := e.LiveStats()
	require.True(t, ok)
	assert.InDelta(t, 200.0, stats.Volume, 1e-9)
	assert.Equal(t, 1, stats.CompletedSets)
	assert.Equal(t, 3, stats.TotalSets)

	assert.Equal(t, session.Resting, e.State())
	assert.Equal(t, 90*time.Second, e.RestRemaining())

	h.sched.Advance(90)
	assert.Equal(t, int32(1), rested.Load())
	assert.Equal(t, session.Active, e.State())
	assert.Zero(t, h.sched.Live())

	h.now = h.now.Add(20 * time.Minute)

	rec, err := e.FinishSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Idle, e.State())

	list, err := h.hist.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.InDelta(t, 200.0, got.TotalVolume, 1e-9)
	assert.Equal(t, 20*time.Minute, got.Duration)
	assert.Len(t, got.PersonalRecords, 3)
}

func TestRestControlsFromCompletionCallback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	var states []session.State

	// the callback calls back into the engine
	e.OnRestComplete(func() {
		states = append(states, e.State())
	})

	require.NoError(t, e.StartSession(ctx, benchSeed()))
	completeSet(t, e, 0, 0)

	e.ExtendRest(30)
	assert.Equal(t, 120*time.Second, e.RestRemaining())

	e.PauseRest()
	h.sched.Advance(10)
	assert.Equal(t, 120*time.Second, e.RestRemaining())
	assert.True(t, e.RestPaused())

	e.ResumeRest()
	h.sched.Advance(10)
	assert.Equal(t, 110*time.Second, e.RestRemaining())

	e.SkipRest()
	assert.Equal(t, []session.State{session.Active}, states)

	e.SkipRest()
	assert.Len(t, states, 1, "completion fires once per countdown")

	completeSet(t, e, 0, 1)
	e.ExtendRest(-200)
	assert.Len(t, states, 2)
	assert.Zero(t, e.RestRemaining())
}

func TestRestTicks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	var ticks []time.Duration

	e.OnRestTick(func(remaining time.Duration) {
		ticks = append(ticks, remaining)
	})

	require.NoError(t, e.StartSession(ctx, benchSeed()))
	completeSet(t, e, 0, 0)

	h.sched.Advance(3)

	assert.Equal(
		t,
		[]time.Duration{89 * time.Second, 88 * time.Second, 87 * time.Second},
		ticks,
	)
}

func TestPauseSessionFreezesRest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	require.NoError(t, e.StartSession(ctx, benchSeed()))
	completeSet(t, e, 0, 0)

	require.NoError(t, e.PauseSession())
	assert.True(t, e.Paused())

	h.sched.Advance(30)
	assert.Equal(t, 90*time.Second, e.RestRemaining())

	require.NoError(t, e.ResumeSession())
	h.sched.Advance(30)
	assert.Equal(t, 60*time.Second, e.RestRemaining())
}

func TestNavigationCancelsRest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	seed := benchSeed()
	seed.Exercises = append(seed.Exercises, session.ExerciseSeed{
		Exercise: models.ExerciseRef{ID: "dips", Name: "Dips"},
		Sets:     session.Uniform(2, 0, 12),
	})

	require.NoError(t, e.StartSession(ctx, seed))
	completeSet(t, e, 0, 0)
	require.Equal(t, session.Resting, e.State())

	assert.True(t, e.AdvanceExercise())
	assert.Equal(t, session.Active, e.State())
	assert.Zero(t, h.sched.Live())
	assert.Equal(t, 1, e.Cursor().Exercise)

	assert.True(t, e.RetreatSet())
	assert.Equal(t, session.Cursor{Exercise: 0, Set: 2}, stripIDs(e.Cursor()))
	assert.True(t, e.AdvanceSet())
	assert.True(t, e.RetreatExercise())

	id, err := e.AddExercise(session.ExerciseSeed{
		Exercise: models.ExerciseRef{Name: "Push-up"},
		Sets:     session.Uniform(1, 0, 20),
	})
	require.NoError(t, err)

	require.NoError(t, e.ReorderExercises(2, 0))
	require.NoError(t, e.RemoveExercise(id))

	s, _ := e.Session()
	assert.Len(t, s.Exercises, 2)
	assert.Equal(t, "bench", s.Exercises[e.Cursor().Exercise].Exercise.ID)
}

func stripIDs(c session.Cursor) session.Cursor {
	c.ExerciseID, c.SetID = "", ""
	return c
}

func TestFinishFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	require.NoError(t, e.StartSession(ctx, benchSeed()))
	completeSet(t, e, 0, 0)

	h.kv.FailNext(testutil.OpSet, testutil.Quota(testutil.OpSet))

	_, err := e.FinishSession(ctx)
	require.Error(t, err)
	assert.True(t, retry.IsQuota(err))

	_, ok := e.Session()
	require.True(t, ok, "the workout is not lost")

	rec, err := e.FinishSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.CompletedSets)
}

func TestSkipSetAndCancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	require.NoError(t, e.StartSession(ctx, benchSeed()))

	s, _ := e.Session()
	ex := s.Exercises[0]
	require.NoError(t, e.SkipSet(ex.ID, ex.Sets[0].ID))

	s, _ = e.Session()
	assert.Equal(t, models.SetSkipped, s.Exercises[0].Sets[0].Status)

	e.CancelSession()
	assert.Equal(t, session.Idle, e.State())

	list, err := h.hist.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnnamedWorkoutCanBeFinished(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	e := h.engine

	seed := benchSeed()
	seed.Name = ""

	require.NoError(t, e.StartSession(ctx, seed))
	completeSet(t, e, 0, 0)

	rec, err := e.FinishSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Workout Mar 01", rec.Name)
	assert.Equal(t, session.Idle, e.State())

	require.NoError(t, e.StartSession(ctx, benchSeed()))

	list, err := h.hist.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Workout Mar 01", list[0].Name)
}

func TestRecordsPersistAcrossEngines(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.engine.StartSession(ctx, benchSeed()))
	completeSet(t, h.engine, 0, 0)

	_, err := h.engine.FinishSession(ctx)
	require.NoError(t, err)

	e2, err := New(userID, h.hist, WithScheduler(h.sched))
	require.NoError(t, err)

	defer e2.Close()

	assert.Empty(t, e2.PersonalRecords())
	require.NoError(t, e2.LoadRecords(ctx))
	assert.Equal(t, h.engine.PersonalRecords(), e2.PersonalRecords())

	// matching the best weight is not a new record
	require.NoError(t, e2.StartSession(ctx, benchSeed()))
	completeSet(t, e2, 0, 0)
	assert.Empty(t, e2.SessionRecords())
}

func TestStartFromPlanUsesPreferences(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t)
	plans := plan.New(h.docs)
	pr := prefs.New(h.docs, nil)

	e, err := New(
		userID,
		h.hist,
		WithScheduler(h.sched),
		WithPlans(plans),
		WithPreferences(pr),
		WithDefaultRest(75*time.Second),
	)
	require.NoError(t, err)

	defer e.Close()

	assert.ErrorIs(t, e.StartFromPlan(ctx, "missing", 0), plan.ErrPlanNotFound)
	assert.Equal(t, 75*time.Second, e.restDuration(ctx), "the configured rest applies without stored preferences")

	p, err := plans.Save(ctx, userID, models.Plan{
		Name: "Legs",
		Days: []models.PlanDay{{
			Name: "A",
			Exercises: []models.PlanExercise{{
				Exercise: models.ExerciseRef{ID: "squat", Name: "Squat"},
				Sets:     2,
				Reps:     5,
				Weight:   100,
			}},
		}},
	})
	require.NoError(t, err)

	require.NoError(t, pr.SavePreferences(ctx, userID, models.Preferences{WeightUnit: prefs.UnitKg, RestSeconds: 150}))

	require.NoError(t, e.StartFromPlan(ctx, p.ID, 0))

	s, ok := e.Session()
	require.True(t, ok)
	assert.Equal(t, p.ID, s.PlanID)
	assert.Equal(t, "Legs: A", s.Name)

	completeSet(t, e, 0, 0)
	assert.Equal(t, 150*time.Second, e.RestRemaining())
}

func TestStartFromPlanWithoutPlans(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.engine.StartFromPlan(context.Background(), "x", 0), ErrNoPlans)
}

func TestDebugLoggingDumpsCommands(t *testing.T) {
	var buf bytes.Buffer

	h := newHarness(t, WithLogger(logging.NewWithWriter(&buf, "debug")))
	require.NoError(t, h.engine.StartSession(context.Background(), benchSeed()))

	assert.Contains(t, buf.String(), `"op":"start"`)
	assert.Contains(t, buf.String(), "Bench Press")
}
