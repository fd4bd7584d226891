// Package models defines the workout types shared by the session engine and
// the persistence layer. Persisted payloads use camelCase keys.
package models

import (
	"encoding/json"
	"math"
	"time"
)

const (
	caloriesPerSet = 5
	caloriesPerKg  = 0.01
)

type SetStatus string

const (
	SetPending   SetStatus = "pending"
	SetCompleted SetStatus = "completed"
	SetSkipped   SetStatus = "skipped"
)

type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// Metric identifies the value tracked by a personal record.
type Metric string

const (
	MaxWeight Metric = "max_weight"
	MaxReps   Metric = "max_reps"
	MaxVolume Metric = "max_volume"
)

// Metrics lists every tracked metric in display order.
var Metrics = []Metric{MaxWeight, MaxReps, MaxVolume}

// ExerciseRef points at an exercise definition. The engine never interprets
// anything other than the ID and Name.
type ExerciseRef struct {
	ID       string   `json:"id"                 yaml:"id"`
	Name     string   `json:"name"               yaml:"name"`
	Category string   `json:"category,omitempty" yaml:"category"`
	Muscles  []string `json:"muscles,omitempty"  yaml:"muscles"`
}

// Key returns the identity used for personal records.
func (e ExerciseRef) Key() string {
	if e.ID != "" {
		return e.ID
	}

	return e.Name
}

// SetEntry is one prescribed unit of an exercise. ActualWeight and ActualReps
// are non-nil if and only if Status is SetCompleted.
type SetEntry struct {
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ActualWeight *float64   `json:"actualWeight,omitempty"`
	ActualReps   *int       `json:"actualReps,omitempty"`
	ID           string     `json:"id"`
	Status       SetStatus  `json:"status"`
	Weight       float64    `json:"weight"`
	Reps         int        `json:"reps"`
}

// Completed reports whether the set has been performed.
func (s *SetEntry) Completed() bool {
	return s.Status == SetCompleted
}

// Volume is the contribution of the set to the session volume.
func (s *SetEntry) Volume() float64 {
	if !s.Completed() || s.ActualWeight == nil || s.ActualReps == nil {
		return 0
	}

	return *s.ActualWeight * float64(*s.ActualReps)
}

// ExerciseEntry is an exercise within a session. Position is its contiguous
// index in the session.
type ExerciseEntry struct {
	ID          string      `json:"id"`
	Exercise    ExerciseRef `json:"exercise"`
	Sets        []SetEntry  `json:"sets"`
	Position    int         `json:"position"`
	RestSeconds int         `json:"restSeconds,omitempty"`
}

// WorkoutSession is the in-progress workout.
type WorkoutSession struct {
	StartedAt time.Time       `json:"startedAt"`
	ID        string          `json:"id"`
	PlanID    string          `json:"planId,omitempty"`
	Name      string          `json:"name"`
	Status    SessionStatus   `json:"status"`
	Exercises []ExerciseEntry `json:"exercises"`
}

// Clone returns a deep copy of the session.
func (w *WorkoutSession) Clone() WorkoutSession {
	c := *w
	c.Exercises = CloneExercises(w.Exercises)

	return c
}

// CloneExercises deep copies a slice of exercise entries including the set
// pointers.
func CloneExercises(src []ExerciseEntry) []ExerciseEntry {
	if src == nil {
		return []ExerciseEntry{}
	}

	out := make([]ExerciseEntry, len(src))

	for i := range src {
		out[i] = src[i]
		out[i].Exercise.Muscles = append([]string(nil), src[i].Exercise.Muscles...)
		out[i].Sets = make([]SetEntry, len(src[i].Sets))

		for j := range src[i].Sets {
			out[i].Sets[j] = cloneSet(src[i].Sets[j])
		}
	}

	return out
}

func cloneSet(s SetEntry) SetEntry {
	if s.ActualWeight != nil {
		w := *s.ActualWeight
		s.ActualWeight = &w
	}

	if s.ActualReps != nil {
		r := *s.ActualReps
		s.ActualReps = &r
	}

	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}

	return s
}

// SessionStats are the live statistics of a session.
type SessionStats struct {
	StartTime     time.Time     `json:"startTime"`
	Elapsed       time.Duration `json:"elapsed"`
	CompletedSets int           `json:"completedSets"`
	TotalSets     int           `json:"totalSets"`
	Volume        float64       `json:"volume"`
	Calories      float64       `json:"calories"`
}

// PersonalRecord is the best value of a metric for an exercise.
type PersonalRecord struct {
	AchievedAt    time.Time `json:"achievedAt"`
	PreviousValue *float64  `json:"previousValue,omitempty"`
	ExerciseID    string    `json:"exerciseId"`
	ExerciseName  string    `json:"exerciseName"`
	Metric        Metric    `json:"metric"`
	Value         float64   `json:"value"`
}

// HistoryRecord is a finished workout as it is persisted.
type HistoryRecord struct {
	Date            time.Time        `json:"date"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       *time.Time       `json:"updatedAt,omitempty"`
	ID              string           `json:"id"`
	PlanID          string           `json:"planId,omitempty"`
	Name            string           `json:"name"`
	Status          SessionStatus    `json:"status"`
	Notes           string           `json:"notes,omitempty"`
	Exercises       []ExerciseEntry  `json:"exercises"`
	PersonalRecords []PersonalRecord `json:"personalRecords,omitempty"`
	Duration        time.Duration    `json:"duration"`
	TotalVolume     float64          `json:"totalVolume"`
	Calories        float64          `json:"calories"`
	CompletedSets   int              `json:"completedSets"`
	TotalSets       int              `json:"totalSets"`
	Rating          int              `json:"rating,omitempty"`
}

// DurationMinutes returns the workout duration in minutes.
func (h *HistoryRecord) DurationMinutes() float64 {
	return h.Duration.Minutes()
}

// RetryOutcome describes how a single retried operation went. It is never
// persisted.
type RetryOutcome struct {
	Class    string          `json:"class,omitempty"`
	Delays   []time.Duration `json:"delays,omitempty"`
	Attempts int             `json:"attempts"`
}

// Plan is a named training programme made up of days.
type Plan struct {
	ID   string    `json:"id"   yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Days []PlanDay `json:"days" yaml:"days"`
}

type PlanDay struct {
	Name      string         `json:"name"      yaml:"name"`
	Exercises []PlanExercise `json:"exercises" yaml:"exercises"`
}

type PlanExercise struct {
	Exercise    ExerciseRef `json:"exercise"              yaml:"exercise"`
	Sets        int         `json:"sets"                  yaml:"sets"`
	Reps        int         `json:"reps"                  yaml:"reps"`
	Weight      float64     `json:"weight"                yaml:"weight"`
	RestSeconds int         `json:"restSeconds,omitempty" yaml:"rest_seconds"`
}

// Preferences are per-user engine preferences.
type Preferences struct {
	WeightUnit    string `json:"weightUnit"`
	RestSeconds   int    `json:"restSeconds"`
	Notifications bool   `json:"notifications"`
}

// AppSettings are device-wide settings.
type AppSettings struct {
	Extra      json.RawMessage `json:"extra,omitempty"`
	LastUserID string          `json:"lastUserId,omitempty"`
	Theme      string          `json:"theme,omitempty"`
}

// Tally folds the set states of exercises into the completed and total set
// counts and the completed volume.
func Tally(exercises []ExerciseEntry) (completed, total int, volume float64) {
	for i := range exercises {
		for j := range exercises[i].Sets {
			set := &exercises[i].Sets[j]

			total++

			if set.Completed() {
				completed++
				volume += set.Volume()
			}
		}
	}

	return completed, total, volume
}

// EstimateCalories returns the calorie estimate for a workout, rounded to one
// decimal place.
func EstimateCalories(completedSets int, volume float64) float64 {
	kcal := float64(completedSets)*caloriesPerSet + volume*caloriesPerKg

	return math.Round(kcal*10) / 10
}
