// Package records detects and keeps personal records.
package records

import (
	"slices"
	"sync"
	"time"

	"github.com/maruel/natural"

	"github.com/ayoisaiah/lift/internal/models"
)

// values returns the metric values of a completed set.
func values(set *models.SetEntry) (map[models.Metric]float64, bool) {
	if !set.Completed() || set.ActualWeight == nil || set.ActualReps == nil {
		return nil, false
	}

	w, r := *set.ActualWeight, float64(*set.ActualReps)

	return map[models.Metric]float64{
		models.MaxWeight: w,
		models.MaxReps:   r,
		models.MaxVolume: w * r,
	}, true
}

// Detect compares a completed set against the current records and returns
// the updated records and the ones newly achieved. A value must be strictly
// greater than the existing record to replace it, so observing the same set
// twice changes nothing. current is never modified.
func Detect(
	current []models.PersonalRecord,
	ex models.ExerciseRef,
	set models.SetEntry,
	at time.Time,
) (updated, achieved []models.PersonalRecord) {
	updated = slices.Clone(current)

	vals, ok := values(&set)
	if !ok {
		return updated, nil
	}

	key := ex.Key()

	for _, metric := range models.Metrics {
		v := vals[metric]
		if v <= 0 {
			continue
		}

		i := slices.IndexFunc(updated, func(pr models.PersonalRecord) bool {
			return pr.ExerciseID == key && pr.Metric == metric
		})

		rec := models.PersonalRecord{
			ExerciseID:   key,
			ExerciseName: ex.Name,
			Metric:       metric,
			Value:        v,
			AchievedAt:   at,
		}

		if i < 0 {
			updated = append(updated, rec)
			achieved = append(achieved, rec)

			continue
		}

		if v <= updated[i].Value {
			continue
		}

		prev := updated[i].Value
		rec.PreviousValue = &prev
		updated[i] = rec
		achieved = append(achieved, rec)
	}

	return updated, achieved
}

// Book holds the current personal records. It is safe for concurrent use.
type Book struct {
	records []models.PersonalRecord
	mu      sync.RWMutex
}

func NewBook(initial ...models.PersonalRecord) *Book {
	return &Book{records: slices.Clone(initial)}
}

// Observe records set and returns any records it achieved.
func (b *Book) Observe(
	ex models.ExerciseRef,
	set models.SetEntry,
	at time.Time,
) []models.PersonalRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	var achieved []models.PersonalRecord

	b.records, achieved = Detect(b.records, ex, set, at)

	return achieved
}

// All returns the records ordered by exercise name and metric.
func (b *Book) All() []models.PersonalRecord {
	b.mu.RLock()
	out := slices.Clone(b.records)
	b.mu.RUnlock()

	Sort(out)

	return out
}

// For returns the records of one exercise.
func (b *Book) For(ex models.ExerciseRef) []models.PersonalRecord {
	key := ex.Key()

	return slices.DeleteFunc(b.All(), func(pr models.PersonalRecord) bool {
		return pr.ExerciseID != key
	})
}

// Replay rebuilds the book from history, oldest workout first. history is
// expected newest first, as returned by the history repository.
func (b *Book) Replay(history []models.HistoryRecord) {
	var recs []models.PersonalRecord

	for i := len(history) - 1; i >= 0; i-- {
		h := &history[i]

		for _, entry := range h.Exercises {
			for _, set := range entry.Sets {
				at := h.Date
				if set.CompletedAt != nil {
					at = *set.CompletedAt
				}

				recs, _ = Detect(recs, entry.Exercise, set, at)
			}
		}
	}

	b.mu.Lock()
	b.records = recs
	b.mu.Unlock()
}

// Reset clears every record.
func (b *Book) Reset() {
	b.mu.Lock()
	b.records = nil
	b.mu.Unlock()
}

var metricOrder = map[models.Metric]int{
	models.MaxWeight: 0,
	models.MaxReps:   1,
	models.MaxVolume: 2,
}

// Sort orders records by exercise name in natural order, then by metric.
func Sort(recs []models.PersonalRecord) {
	slices.SortStableFunc(recs, func(a, b models.PersonalRecord) int {
		if a.ExerciseName != b.ExerciseName {
			if natural.Less(a.ExerciseName, b.ExerciseName) {
				return -1
			}

			return 1
		}

		return metricOrder[a.Metric] - metricOrder[b.Metric]
	})
}
