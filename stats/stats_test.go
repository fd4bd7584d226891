package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/lift/internal/models"
)

func done(weight float64, reps int) models.SetEntry {
	return models.SetEntry{
		Status:       models.SetCompleted,
		Weight:       weight,
		Reps:         reps,
		ActualWeight: &weight,
		ActualReps:   &reps,
	}
}

func record(date time.Time, status models.SessionStatus, exercises ...models.ExerciseEntry) models.HistoryRecord {
	rec := models.HistoryRecord{
		ID:        date.Format(time.RFC3339),
		Name:      "Workout",
		Date:      date,
		CreatedAt: date,
		Status:    status,
		Duration:  45 * time.Minute,
		Exercises: exercises,
	}

	rec.CompletedSets, rec.TotalSets, rec.TotalVolume = models.Tally(exercises)

	return rec
}

func exercise(id, name string, sets ...models.SetEntry) models.ExerciseEntry {
	return models.ExerciseEntry{
		ID:       id,
		Exercise: models.ExerciseRef{ID: id, Name: name},
		Sets:     sets,
	}
}

var now = time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)

func history() []models.HistoryRecord {
	return []models.HistoryRecord{
		record(
			time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
			models.StatusCompleted,
			exercise("bench", "Bench Press", done(60, 10), done(70, 5)),
			exercise("row", "Barbell Row", done(50, 10)),
		),
		record(
			time.Date(2025, time.March, 6, 9, 0, 0, 0, time.UTC),
			models.StatusCancelled,
			exercise("bench", "Bench Press", done(60, 8), models.SetEntry{Status: models.SetPending, Weight: 60, Reps: 8}),
		),
		record(
			time.Date(2025, time.February, 4, 9, 0, 0, 0, time.UTC),
			models.StatusCompleted,
			exercise("squat", "Back Squat", done(100, 5)),
		),
	}
}

func TestComputeAllTime(t *testing.T) {
	s := Compute(history(), time.Time{}, time.Time{}, now)

	assert.Equal(t, time.Date(2025, time.February, 4, 0, 0, 0, 0, time.UTC), s.Start)
	assert.Equal(t, time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC), s.End)
	assert.Equal(t, 3, s.Workouts)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 5, s.CompletedSets)
	assert.Equal(t, 6, s.TotalSets)
	assert.InDelta(t, 600+350+500+480+500, s.Volume, 1e-9)
	assert.Equal(t, 45*time.Minute, s.AvgDuration)

	want := []ExerciseTotal{
		{ExerciseID: "bench", Name: "Bench Press", Sets: 3, Volume: 1430, BestWeight: 70},
		{ExerciseID: "squat", Name: "Back Squat", Sets: 1, Volume: 500, BestWeight: 100},
		{ExerciseID: "row", Name: "Barbell Row", Sets: 1, Volume: 500, BestWeight: 50},
	}

	if diff := cmp.Diff(want, s.Exercises); diff != "" {
		t.Errorf("exercise totals mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, s.Weekdays[time.Monday])
	assert.Equal(t, 1, s.Weekdays[time.Tuesday])
	assert.Equal(t, 1, s.Weekdays[time.Thursday])
	assert.InDelta(t, 500, s.Monthly["2025-02"], 1e-9)
}

func TestComputeRespectsPeriod(t *testing.T) {
	start := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

	s := Compute(history(), start, time.Time{}, now)

	assert.Equal(t, start, s.Start)
	assert.Equal(t, 2, s.Workouts)
	assert.InDelta(t, 2, s.PerWeek, 1e-9)
	assert.NotContains(t, s.Monthly, "2025-02")
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer

	empty := Compute(nil, time.Time{}, time.Time{}, now)
	require.NoError(t, empty.Render(&buf, "kg"))
	assert.Contains(t, buf.String(), noWorkoutsMsg)

	buf.Reset()

	s := Compute(history(), time.Time{}, time.Time{}, now)
	require.NoError(t, s.Render(&buf, "kg"))

	out := buf.String()
	assert.Contains(t, out, "Reporting period: February 04, 2025 - March 10, 2025")
	assert.Contains(t, out, "Bench Press")
	assert.Contains(t, out, "Weekday breakdown")
	assert.Contains(t, out, "Feb 2025")
}
