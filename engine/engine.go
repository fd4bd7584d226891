// Package engine ties the workout session machine to the rest timer, the
// personal record book and durable history. It is the single entry point
// used by the CLI and the HTTP server.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/plan"
	"github.com/ayoisaiah/lift/prefs"
	"github.com/ayoisaiah/lift/records"
	"github.com/ayoisaiah/lift/session"
	"github.com/ayoisaiah/lift/timer"
)

var (
	ErrMissingUserID = errors.New("engine: a user id is required")
	ErrNoPlans       = errors.New("engine: plans are not configured")
)

// Engine serialises every session mutation behind one mutex. Rest timer
// controls bypass it: the timer has its own lock and its callbacks may call
// back into the engine.
type Engine struct {
	machine     *session.Machine
	rest        *timer.RestTimer
	book        *records.Book
	history     *history.Repository
	plans       *plan.Repository
	prefs       *prefs.Repository
	sched       timer.Scheduler
	log         *slog.Logger
	now         func() time.Time
	userID      string
	defaultRest time.Duration
	mu          sync.Mutex
}

type Option func(*Engine)

// WithScheduler drives the rest timer from sched instead of the wall clock.
func WithScheduler(sched timer.Scheduler) Option {
	return func(e *Engine) {
		e.sched = sched
	}
}

func WithClock(fn func() time.Time) Option {
	return func(e *Engine) {
		e.now = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithPlans(p *plan.Repository) Option {
	return func(e *Engine) {
		e.plans = p
	}
}

// WithPreferences makes the user's stored rest duration take precedence
// over the configured default.
func WithPreferences(p *prefs.Repository) Option {
	return func(e *Engine) {
		e.prefs = p
	}
}

// WithDefaultRest sets the rest used when neither the exercise nor the
// user's preferences specify one.
func WithDefaultRest(d time.Duration) Option {
	return func(e *Engine) {
		e.defaultRest = d
	}
}

// New returns an idle engine for userID that saves finished workouts to
// hist.
func New(userID string, hist *history.Repository, opts ...Option) (*Engine, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	e := &Engine{
		userID:      userID,
		history:     hist,
		book:        records.NewBook(),
		log:         slog.New(slog.DiscardHandler),
		now:         time.Now,
		defaultRest: 90 * time.Second,
	}

	for _, o := range opts {
		o(e)
	}

	e.rest = timer.New(e.sched)

	e.machine = session.New(
		e.save,
		session.WithRestController(e.rest),
		session.WithRecordSink(e.book),
		session.WithLogger(e.log.With(slog.String("component", "session"))),
		session.WithClock(e.now),
		session.WithDefaultRest(e.defaultRest),
	)

	return e, nil
}

func (e *Engine) save(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error) {
	return e.history.Save(ctx, e.userID, rec)
}

// UserID returns the user the engine works for.
func (e *Engine) UserID() string {
	return e.userID
}

func (e *Engine) trace(op string, args ...any) {
	if !e.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	e.log.Debug("command", slog.String("op", op), slog.String("args", spew.Sdump(args...)))
}

// LoadRecords rebuilds the personal record book from the stored history.
func (e *Engine) LoadRecords(ctx context.Context) error {
	list, err := e.history.List(ctx, e.userID)
	if err != nil {
		return err
	}

	e.book.Replay(list)

	e.log.Info(
		"personal records loaded",
		slog.Int("workouts", len(list)),
		slog.Int("records", len(e.book.All())),
	)

	return nil
}

func (e *Engine) restDuration(ctx context.Context) time.Duration {
	if e.prefs == nil {
		return e.defaultRest
	}

	p, ok, err := e.prefs.Lookup(ctx, e.userID)
	if err != nil {
		e.log.Warn("preferences unavailable", slog.Any("error", err))
		return e.defaultRest
	}

	if !ok || p.RestSeconds <= 0 {
		return e.defaultRest
	}

	return time.Duration(p.RestSeconds) * time.Second
}

// StartSession begins a workout from seed.
func (e *Engine) StartSession(ctx context.Context, seed session.Seed) error {
	e.trace("start", seed)

	rest := e.restDuration(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.machine.SetDefaultRest(rest)

	return e.machine.Start(seed)
}

// StartFromPlan begins a workout from day (0-based) of the plan with
// planID.
func (e *Engine) StartFromPlan(ctx context.Context, planID string, day int) error {
	if e.plans == nil {
		return ErrNoPlans
	}

	p, err := e.plans.Get(ctx, e.userID, planID)
	if err != nil {
		return err
	}

	seed, err := plan.SeedFromDay(&p, day)
	if err != nil {
		return err
	}

	return e.StartSession(ctx, seed)
}

func (e *Engine) RecordSet(exerciseID, setID string, u session.SetUpdate) error {
	e.trace("record_set", exerciseID, setID, u)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.RecordSet(exerciseID, setID, u)
}

func (e *Engine) SkipSet(exerciseID, setID string) error {
	e.trace("skip_set", exerciseID, setID)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.SkipSet(exerciseID, setID)
}

func (e *Engine) AdvanceExercise() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.AdvanceExercise()
}

func (e *Engine) RetreatExercise() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.RetreatExercise()
}

func (e *Engine) AdvanceSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.AdvanceSet()
}

func (e *Engine) RetreatSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.RetreatSet()
}

func (e *Engine) AddExercise(seed session.ExerciseSeed) (string, error) {
	e.trace("add_exercise", seed)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.AddExercise(seed)
}

func (e *Engine) RemoveExercise(id string) error {
	e.trace("remove_exercise", id)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.RemoveExercise(id)
}

func (e *Engine) ReorderExercises(from, to int) error {
	e.trace("reorder_exercises", from, to)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.ReorderExercises(from, to)
}

func (e *Engine) PauseSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Pause()
}

func (e *Engine) ResumeSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Resume()
}

// FinishSession saves the workout to history. On failure the session stays
// live and FinishSession may be called again.
func (e *Engine) FinishSession(ctx context.Context) (*models.HistoryRecord, error) {
	e.trace("finish")

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Finish(ctx)
}

// CancelSession discards the workout.
func (e *Engine) CancelSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.machine.Cancel()
}

func (e *Engine) PauseRest() {
	e.rest.Pause()
}

func (e *Engine) ResumeRest() {
	e.rest.Resume()
}

// ExtendRest adds seconds to the running rest. A negative value shortens
// it.
func (e *Engine) ExtendRest(seconds int) {
	e.rest.Extend(seconds)
}

// SkipRest ends the rest now. The completion callback runs on the calling
// goroutine.
func (e *Engine) SkipRest() {
	e.rest.Skip()
}

func (e *Engine) RestRemaining() time.Duration {
	return e.rest.Remaining()
}

// RestPaused reports whether the rest countdown is frozen.
func (e *Engine) RestPaused() bool {
	return e.rest.Paused()
}

// OnRestComplete sets the function called when a rest ends on its own or
// is skipped.
func (e *Engine) OnRestComplete(fn func()) {
	e.rest.OnComplete(fn)
}

// OnRestTick sets the function called with the time left after every
// second of rest.
func (e *Engine) OnRestTick(fn func(remaining time.Duration)) {
	e.rest.OnTick(fn)
}

func (e *Engine) LiveStats() (models.SessionStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Stats()
}

// PersonalRecords returns every known record, including those set in the
// live session.
func (e *Engine) PersonalRecords() []models.PersonalRecord {
	return e.book.All()
}

// SessionRecords returns the records set in the live session.
func (e *Engine) SessionRecords() []models.PersonalRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Achieved()
}

func (e *Engine) Session() (models.WorkoutSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Session()
}

func (e *Engine) State() session.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.State()
}

func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Paused()
}

func (e *Engine) Cursor() session.Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.machine.Cursor()
}

// Close stops the rest timer. A live session is discarded.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.machine.Cancel()
	e.rest.Stop()
}
