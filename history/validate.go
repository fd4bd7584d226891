package history

import (
	"bytes"
	"encoding/json"

	"github.com/ayoisaiah/lift/internal/models"
)

const maxRating = 5

// Validate reports whether rec is well-formed enough to be persisted.
func Validate(rec *models.HistoryRecord) error {
	switch {
	case rec.ID == "":
		return ErrInvalidRecord.Fmt("missing id")
	case rec.Name == "":
		return ErrInvalidRecord.Fmt("missing name")
	case rec.Rating < 0 || rec.Rating > maxRating:
		return ErrInvalidRecord.Fmt("rating must be between 0 and 5")
	case rec.Duration < 0:
		return ErrInvalidRecord.Fmt("negative duration")
	}

	return nil
}

// decode parses a stored entry. An entry is kept only if it has non-empty
// string id and name fields and an array of exercises.
func decode(raw json.RawMessage) (models.HistoryRecord, bool) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.HistoryRecord{}, false
	}

	if !nonEmptyString(fields["id"]) || !nonEmptyString(fields["name"]) {
		return models.HistoryRecord{}, false
	}

	if ex := bytes.TrimSpace(fields["exercises"]); len(ex) == 0 || ex[0] != '[' {
		return models.HistoryRecord{}, false
	}

	var rec models.HistoryRecord

	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.HistoryRecord{}, false
	}

	normalize(&rec)

	return rec, true
}

func nonEmptyString(raw json.RawMessage) bool {
	var s string

	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}

	return s != ""
}

func normalize(rec *models.HistoryRecord) {
	if rec.Exercises == nil {
		rec.Exercises = []models.ExerciseEntry{}
	}

	for i := range rec.Exercises {
		if rec.Exercises[i].Sets == nil {
			rec.Exercises[i].Sets = []models.SetEntry{}
		}
	}

	if rec.Status == "" {
		rec.Status = models.StatusCompleted
	}

	if rec.Date.IsZero() {
		rec.Date = rec.CreatedAt
	}
}
