package session

import (
	"github.com/google/uuid"

	"github.com/ayoisaiah/lift/internal/models"
)

// Seed describes the workout a session starts from.
type Seed struct {
	Name      string         `json:"name"`
	PlanID    string         `json:"planId,omitempty"`
	Exercises []ExerciseSeed `json:"exercises"`
}

// ExerciseSeed is one exercise of a Seed.
type ExerciseSeed struct {
	Exercise    models.ExerciseRef `json:"exercise"`
	Sets        []SetSeed          `json:"sets"`
	RestSeconds int                `json:"restSeconds,omitempty"`
}

// SetSeed is a prescribed set.
type SetSeed struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Uniform returns n identical set prescriptions.
func Uniform(n int, weight float64, reps int) []SetSeed {
	sets := make([]SetSeed, n)

	for i := range sets {
		sets[i] = SetSeed{Weight: weight, Reps: reps}
	}

	return sets
}

func (s ExerciseSeed) entry(position int) models.ExerciseEntry {
	ex := s.Exercise
	ex.Muscles = append([]string(nil), ex.Muscles...)

	entry := models.ExerciseEntry{
		ID:          uuid.NewString(),
		Exercise:    ex,
		Position:    position,
		RestSeconds: s.RestSeconds,
		Sets:        make([]models.SetEntry, len(s.Sets)),
	}

	for i, set := range s.Sets {
		entry.Sets[i] = models.SetEntry{
			ID:     uuid.NewString(),
			Status: models.SetPending,
			Weight: set.Weight,
			Reps:   set.Reps,
		}
	}

	return entry
}
