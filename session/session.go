// Package session implements the state machine that owns a single live
// workout: set progression, cursor navigation, incremental statistics and
// the hand-off to durable storage when the workout is finished.
//
// A Machine is not safe for concurrent use. Callers serialise access, as the
// engine package does with its mutex.
package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ayoisaiah/lift/internal/models"
)

// State is the coarse lifecycle state of a Machine.
type State int

const (
	Idle State = iota
	Active
	Resting
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Resting:
		return "resting"
	case Idle:
	}

	return "idle"
}

// RestController is the rest timer as seen by the machine.
type RestController interface {
	Start(d time.Duration)
	Stop()
	Pause()
	Resume()
	Active() bool
}

// RecordSink observes completed sets and reports new personal records.
type RecordSink interface {
	Observe(ex models.ExerciseRef, set models.SetEntry, at time.Time) []models.PersonalRecord
}

// SaveFunc durably stores a finished workout.
type SaveFunc func(ctx context.Context, rec models.HistoryRecord) (models.HistoryRecord, error)

// SetUpdate carries the optional changes applied by RecordSet.
type SetUpdate struct {
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

// Cursor points at the current exercise and set.
type Cursor struct {
	ExerciseID string `json:"exerciseId,omitempty"`
	SetID      string `json:"setId,omitempty"`
	Exercise   int    `json:"exercise"`
	Set        int    `json:"set"`
}

// Machine owns at most one live workout session.
type Machine struct {
	rest        RestController
	records     RecordSink
	save        SaveFunc
	log         *slog.Logger
	now         func() time.Time
	session     *models.WorkoutSession
	achieved    []models.PersonalRecord
	defaultRest time.Duration
	cursor      Cursor
	completed   int
	total       int
	volume      float64
}

type Option func(*Machine)

func WithRestController(r RestController) Option {
	return func(m *Machine) {
		m.rest = r
	}
}

func WithRecordSink(r RecordSink) Option {
	return func(m *Machine) {
		m.records = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.log = l
	}
}

func WithClock(fn func() time.Time) Option {
	return func(m *Machine) {
		m.now = fn
	}
}

// WithDefaultRest sets the rest used for exercises that do not specify one.
func WithDefaultRest(d time.Duration) Option {
	return func(m *Machine) {
		m.defaultRest = d
	}
}

// New returns an idle Machine that persists finished workouts with save.
func New(save SaveFunc, opts ...Option) *Machine {
	m := &Machine{
		save:        save,
		rest:        noRest{},
		records:     noRecords{},
		log:         slog.New(slog.DiscardHandler),
		now:         time.Now,
		defaultRest: 90 * time.Second,
	}

	for _, o := range opts {
		o(m)
	}

	return m
}

// SetDefaultRest changes the rest used for exercises that do not specify
// one.
func (m *Machine) SetDefaultRest(d time.Duration) {
	m.defaultRest = d
}

// DefaultName is the name given to a workout started without one.
func DefaultName(t time.Time) string {
	return "Workout " + t.Format("Jan 02")
}

// Start begins a session from seed. A blank name is replaced with
// DefaultName.
func (m *Machine) Start(seed Seed) error {
	if m.session != nil {
		m.log.Warn("start rejected", slog.String("session", m.session.ID))
		return ErrSessionActive
	}

	exercises := make([]models.ExerciseEntry, len(seed.Exercises))
	for i, ex := range seed.Exercises {
		exercises[i] = ex.entry(i)
	}

	start := m.now()

	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = DefaultName(start)
	}

	m.session = &models.WorkoutSession{
		ID:        ulid.Make().String(),
		PlanID:    seed.PlanID,
		Name:      name,
		StartedAt: start,
		Status:    models.StatusActive,
		Exercises: exercises,
	}

	m.retally()

	m.achieved = nil
	m.cursor = Cursor{}
	m.syncCursor()

	m.log.Info(
		"session started",
		slog.String("session", m.session.ID),
		slog.Int("exercises", len(exercises)),
		slog.Int("sets", m.total),
	)

	return nil
}

// RecordSet applies u to a set. Completing a pending or skipped set stamps
// it, fills in the actual values from the prescription when u omits them,
// starts the rest timer (frozen while the session is paused) and checks for
// personal records. Un-completing a set
// removes exactly the contribution its completion added.
func (m *Machine) RecordSet(exerciseID, setID string, u SetUpdate) error {
	ex, set, err := m.lookup(exerciseID, setID)
	if err != nil {
		return err
	}

	wasDone := set.Completed()

	switch {
	case u.Completed != nil && *u.Completed && !wasDone:
		m.complete(set, u)
	case u.Completed != nil && !*u.Completed && wasDone:
		uncomplete(set)
		applyPrescription(set, u)
	case u.Completed != nil && !*u.Completed:
		set.Status = models.SetPending
		applyPrescription(set, u)
	case wasDone:
		applyActuals(set, u)
	default:
		applyPrescription(set, u)
	}

	isDone := set.Completed()

	m.retally()

	if isDone && (!wasDone || u.Weight != nil || u.Reps != nil) {
		m.observe(ex, set)
	}

	if isDone && !wasDone {
		m.rest.Start(m.restFor(ex))

		if m.session.Status == models.StatusPaused {
			m.rest.Pause()
		}
	}

	return nil
}

// SkipSet marks a set skipped, removing any completed contribution.
func (m *Machine) SkipSet(exerciseID, setID string) error {
	_, set, err := m.lookup(exerciseID, setID)
	if err != nil {
		return err
	}

	if set.Completed() {
		uncomplete(set)
	}

	set.Status = models.SetSkipped
	m.retally()

	return nil
}

func (m *Machine) complete(set *models.SetEntry, u SetUpdate) {
	w, r := set.Weight, set.Reps

	if u.Weight != nil {
		w = *u.Weight
	}

	if u.Reps != nil {
		r = *u.Reps
	}

	at := m.now()

	set.Status = models.SetCompleted
	set.CompletedAt = &at
	set.ActualWeight = &w
	set.ActualReps = &r
}

func uncomplete(set *models.SetEntry) {
	set.Status = models.SetPending
	set.CompletedAt = nil
	set.ActualWeight = nil
	set.ActualReps = nil
}

func applyPrescription(set *models.SetEntry, u SetUpdate) {
	if u.Weight != nil {
		set.Weight = *u.Weight
	}

	if u.Reps != nil {
		set.Reps = *u.Reps
	}
}

func applyActuals(set *models.SetEntry, u SetUpdate) {
	if u.Weight != nil {
		w := *u.Weight
		set.ActualWeight = &w
	}

	if u.Reps != nil {
		r := *u.Reps
		set.ActualReps = &r
	}
}

func (m *Machine) observe(ex *models.ExerciseEntry, set *models.SetEntry) {
	at := m.now()
	if set.CompletedAt != nil {
		at = *set.CompletedAt
	}

	for _, pr := range m.records.Observe(ex.Exercise, *set, at) {
		m.achieved = upsertRecord(m.achieved, pr)

		m.log.Info(
			"personal record",
			slog.String("exercise", pr.ExerciseName),
			slog.String("metric", string(pr.Metric)),
			slog.Float64("value", pr.Value),
		)
	}
}

func upsertRecord(list []models.PersonalRecord, pr models.PersonalRecord) []models.PersonalRecord {
	i := slices.IndexFunc(list, func(p models.PersonalRecord) bool {
		return p.ExerciseID == pr.ExerciseID && p.Metric == pr.Metric
	})

	if i < 0 {
		return append(list, pr)
	}

	// keep the value the session started from
	pr.PreviousValue = list[i].PreviousValue
	list[i] = pr

	return list
}

func (m *Machine) restFor(ex *models.ExerciseEntry) time.Duration {
	if ex.RestSeconds > 0 {
		return time.Duration(ex.RestSeconds) * time.Second
	}

	return m.defaultRest
}

func (m *Machine) lookup(
	exerciseID, setID string,
) (*models.ExerciseEntry, *models.SetEntry, error) {
	if m.session == nil {
		m.log.Warn("no session", slog.String("exercise", exerciseID))
		return nil, nil, ErrNoSession
	}

	i := m.exerciseIndex(exerciseID)
	if i < 0 {
		m.log.Warn("unknown exercise", slog.String("exercise", exerciseID))
		return nil, nil, ErrExerciseNotFound
	}

	ex := &m.session.Exercises[i]

	j := slices.IndexFunc(ex.Sets, func(s models.SetEntry) bool {
		return s.ID == setID
	})
	if j < 0 {
		m.log.Warn(
			"unknown set",
			slog.String("exercise", exerciseID),
			slog.String("set", setID),
		)

		return nil, nil, ErrSetNotFound
	}

	return ex, &ex.Sets[j], nil
}

func (m *Machine) exerciseIndex(id string) int {
	return slices.IndexFunc(m.session.Exercises, func(e models.ExerciseEntry) bool {
		return e.ID == id
	})
}

// Pause sets the paused overlay and freezes the rest timer.
func (m *Machine) Pause() error {
	if m.session == nil {
		return ErrNoSession
	}

	if m.session.Status == models.StatusPaused {
		return nil
	}

	m.session.Status = models.StatusPaused
	m.rest.Pause()

	return nil
}

// Resume clears the paused overlay.
func (m *Machine) Resume() error {
	if m.session == nil {
		return ErrNoSession
	}

	if m.session.Status != models.StatusPaused {
		return nil
	}

	m.session.Status = models.StatusActive
	m.rest.Resume()

	return nil
}

// Finish persists the session through the SaveFunc. The session stays live
// if the save fails so that the caller can try again.
func (m *Machine) Finish(ctx context.Context) (*models.HistoryRecord, error) {
	if m.session == nil {
		return nil, ErrNoSession
	}

	prevStatus := m.session.Status
	end := m.now()

	m.session.Status = models.StatusCompleted

	rec := models.HistoryRecord{
		ID:              m.session.ID,
		PlanID:          m.session.PlanID,
		Name:            m.session.Name,
		Date:            m.session.StartedAt,
		CreatedAt:       end,
		Duration:        end.Sub(m.session.StartedAt),
		Status:          models.StatusCompleted,
		Exercises:       models.CloneExercises(m.session.Exercises),
		PersonalRecords: slices.Clone(m.achieved),
		TotalVolume:     m.volume,
		CompletedSets:   m.completed,
		TotalSets:       m.total,
		Calories:        models.EstimateCalories(m.completed, m.volume),
	}

	saved, err := m.save(ctx, rec)
	if err != nil {
		m.session.Status = prevStatus

		m.log.Error(
			"session could not be saved",
			slog.String("session", rec.ID),
			slog.Any("error", err),
		)

		return nil, err
	}

	m.rest.Stop()
	m.clear()

	m.log.Info(
		"session finished",
		slog.String("session", saved.ID),
		slog.Duration("duration", saved.Duration),
		slog.Float64("volume", saved.TotalVolume),
	)

	return &saved, nil
}

// Cancel discards the session without saving it.
func (m *Machine) Cancel() {
	if m.session == nil {
		return
	}

	m.log.Info("session cancelled", slog.String("session", m.session.ID))

	m.session.Status = models.StatusCancelled
	m.rest.Stop()
	m.clear()
}

// retally recomputes the statistics as a fold over the set states.
func (m *Machine) retally() {
	m.completed, m.total, m.volume = models.Tally(m.session.Exercises)
}

func (m *Machine) clear() {
	m.session = nil
	m.achieved = nil
	m.cursor = Cursor{}
	m.completed, m.total, m.volume = 0, 0, 0
}

// State reports Idle without a session, Resting while the rest timer runs
// and Active otherwise.
func (m *Machine) State() State {
	switch {
	case m.session == nil:
		return Idle
	case m.rest.Active():
		return Resting
	}

	return Active
}

// Paused reports whether the paused overlay is set.
func (m *Machine) Paused() bool {
	return m.session != nil && m.session.Status == models.StatusPaused
}

// Stats returns the live statistics.
func (m *Machine) Stats() (models.SessionStats, bool) {
	if m.session == nil {
		return models.SessionStats{}, false
	}

	return models.SessionStats{
		StartTime:     m.session.StartedAt,
		Elapsed:       m.now().Sub(m.session.StartedAt),
		CompletedSets: m.completed,
		TotalSets:     m.total,
		Volume:        m.volume,
		Calories:      models.EstimateCalories(m.completed, m.volume),
	}, true
}

// Session returns a deep copy of the live session.
func (m *Machine) Session() (models.WorkoutSession, bool) {
	if m.session == nil {
		return models.WorkoutSession{}, false
	}

	return m.session.Clone(), true
}

// Achieved returns the personal records set during this session.
func (m *Machine) Achieved() []models.PersonalRecord {
	return slices.Clone(m.achieved)
}

func (m *Machine) Cursor() Cursor {
	return m.cursor
}

type noRest struct{}

func (noRest) Start(time.Duration) {}
func (noRest) Stop()               {}
func (noRest) Pause()              {}
func (noRest) Resume()             {}
func (noRest) Active() bool        { return false }

type noRecords struct{}

func (noRecords) Observe(models.ExerciseRef, models.SetEntry, time.Time) []models.PersonalRecord {
	return nil
}
