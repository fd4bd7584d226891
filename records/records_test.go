package records

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/lift/internal/models"
)

var (
	bench = models.ExerciseRef{ID: "bench", Name: "Bench Press"}
	at    = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
)

func done(w float64, r int) models.SetEntry {
	return models.SetEntry{
		ID:           "s",
		Status:       models.SetCompleted,
		Weight:       w,
		Reps:         r,
		ActualWeight: &w,
		ActualReps:   &r,
	}
}

func ptr(v float64) *float64 {
	return &v
}

func TestDetectFirstSetSetsEveryMetric(t *testing.T) {
	updated, achieved := Detect(nil, bench, done(20, 10), at)

	want := []models.PersonalRecord{
		{ExerciseID: "bench", ExerciseName: "Bench Press", Metric: models.MaxWeight, Value: 20, AchievedAt: at},
		{ExerciseID: "bench", ExerciseName: "Bench Press", Metric: models.MaxReps, Value: 10, AchievedAt: at},
		{ExerciseID: "bench", ExerciseName: "Bench Press", Metric: models.MaxVolume, Value: 200, AchievedAt: at},
	}

	if diff := cmp.Diff(want, updated); diff != "" {
		t.Errorf("updated mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(want, achieved); diff != "" {
		t.Errorf("achieved mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectRequiresStrictImprovement(t *testing.T) {
	current, _ := Detect(nil, bench, done(20, 10), at)

	later := at.Add(time.Hour)

	// heavier but fewer reps: only weight improves, volume ties
	updated, achieved := Detect(current, bench, done(25, 8), later)

	want := []models.PersonalRecord{{
		ExerciseID:    "bench",
		ExerciseName:  "Bench Press",
		Metric:        models.MaxWeight,
		Value:         25,
		PreviousValue: ptr(20),
		AchievedAt:    later,
	}}

	if diff := cmp.Diff(want, achieved); diff != "" {
		t.Errorf("achieved mismatch (-want +got):\n%s", diff)
	}

	if len(updated) != 3 {
		t.Fatalf("expected one record per metric, got %d", len(updated))
	}

	if current[0].Value != 20 {
		t.Error("Detect must not modify its input")
	}
}

func TestObservingTheSameSetTwiceIsIdempotent(t *testing.T) {
	b := NewBook()

	first := b.Observe(bench, done(20, 10), at)
	if len(first) != 3 {
		t.Fatalf("expected 3 new records, got %d", len(first))
	}

	before := b.All()

	if again := b.Observe(bench, done(20, 10), at.Add(time.Minute)); len(again) != 0 {
		t.Errorf("replaying a set must not create records, got %v", again)
	}

	if diff := cmp.Diff(before, b.All()); diff != "" {
		t.Errorf("records changed on replay (-want +got):\n%s", diff)
	}

	for _, pr := range b.All() {
		if pr.PreviousValue != nil {
			t.Errorf("unexpected previous value chain on %s", pr.Metric)
		}
	}
}

func TestIncompleteSetsAreIgnored(t *testing.T) {
	set := models.SetEntry{ID: "s", Status: models.SetPending, Weight: 100, Reps: 5}

	updated, achieved := Detect(nil, bench, set, at)
	if len(updated) != 0 || len(achieved) != 0 {
		t.Errorf("pending sets must not produce records")
	}

	// a bodyweight set yields a reps record only
	_, achieved = Detect(nil, bench, done(0, 12), at)
	if len(achieved) != 1 || achieved[0].Metric != models.MaxReps {
		t.Errorf("expected a single reps record, got %v", achieved)
	}
}

func TestRecordsAreMonotonic(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	b := NewBook()

	best := map[models.Metric]float64{}

	for i := range 500 {
		w := float64(r.IntN(40)) * 2.5
		reps := r.IntN(15)

		b.Observe(bench, done(w, reps), at.Add(time.Duration(i)*time.Minute))

		for _, pr := range b.All() {
			if pr.Value < best[pr.Metric] {
				t.Fatalf("%s decreased from %v to %v", pr.Metric, best[pr.Metric], pr.Value)
			}

			best[pr.Metric] = pr.Value
		}
	}
}

func TestReplayMatchesLiveObservation(t *testing.T) {
	mkSet := func(w float64, r int, ts time.Time) models.SetEntry {
		s := done(w, r)
		s.CompletedAt = &ts

		return s
	}

	day1, day2 := at, at.AddDate(0, 0, 1)

	// newest first, like the history repository
	history := []models.HistoryRecord{
		{
			ID:   "2",
			Date: day2,
			Exercises: []models.ExerciseEntry{{
				Exercise: bench,
				Sets:     []models.SetEntry{mkSet(30, 5, day2)},
			}},
		},
		{
			ID:   "1",
			Date: day1,
			Exercises: []models.ExerciseEntry{{
				Exercise: bench,
				Sets:     []models.SetEntry{mkSet(20, 10, day1), {ID: "p", Status: models.SetPending}},
			}},
		},
	}

	live := NewBook()
	live.Observe(bench, mkSet(20, 10, day1), day1)
	live.Observe(bench, mkSet(30, 5, day2), day2)

	replayed := NewBook()
	replayed.Replay(history)
	replayed.Replay(history)

	if diff := cmp.Diff(live.All(), replayed.All()); diff != "" {
		t.Errorf("replay mismatch (-live +replayed):\n%s", diff)
	}
}

func TestSortUsesNaturalOrder(t *testing.T) {
	recs := []models.PersonalRecord{
		{ExerciseName: "Squat 10", Metric: models.MaxWeight},
		{ExerciseName: "Squat 2", Metric: models.MaxVolume},
		{ExerciseName: "Squat 2", Metric: models.MaxWeight},
		{ExerciseName: "Bench", Metric: models.MaxReps},
	}

	Sort(recs)

	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.ExerciseName + "/" + string(r.Metric)
	}

	want := []string{"Bench/max_reps", "Squat 2/max_weight", "Squat 2/max_volume", "Squat 10/max_weight"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
}
