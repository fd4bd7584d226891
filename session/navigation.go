package session

import (
	"log/slog"
	"slices"
)

// AdvanceExercise moves to the first set of the next exercise and cancels
// any rest countdown. Sets left behind keep their status.
func (m *Machine) AdvanceExercise() bool {
	if m.session == nil || m.cursor.Exercise+1 >= len(m.session.Exercises) {
		return false
	}

	m.moveTo(m.cursor.Exercise+1, 0)

	return true
}

// RetreatExercise moves to the first set of the previous exercise and
// cancels any rest countdown.
func (m *Machine) RetreatExercise() bool {
	if m.session == nil || m.cursor.Exercise == 0 {
		return false
	}

	m.moveTo(m.cursor.Exercise-1, 0)

	return true
}

// AdvanceSet moves to the next set, continuing into the next exercise after
// the last set.
func (m *Machine) AdvanceSet() bool {
	if m.session == nil || len(m.session.Exercises) == 0 {
		return false
	}

	if m.cursor.Set+1 < len(m.session.Exercises[m.cursor.Exercise].Sets) {
		m.cursor.Set++
		m.syncCursor()

		return true
	}

	return m.AdvanceExercise()
}

// RetreatSet moves to the previous set, continuing into the last set of the
// previous exercise before the first set.
func (m *Machine) RetreatSet() bool {
	if m.session == nil || len(m.session.Exercises) == 0 {
		return false
	}

	if m.cursor.Set > 0 {
		m.cursor.Set--
		m.syncCursor()

		return true
	}

	if m.cursor.Exercise == 0 {
		return false
	}

	prev := m.cursor.Exercise - 1
	m.moveTo(prev, max(0, len(m.session.Exercises[prev].Sets)-1))

	return true
}

func (m *Machine) moveTo(exercise, set int) {
	m.rest.Stop()
	m.cursor.Exercise = exercise
	m.cursor.Set = set
	m.syncCursor()
}

// syncCursor clamps the cursor to the session and refreshes its ids.
func (m *Machine) syncCursor() {
	m.cursor.ExerciseID, m.cursor.SetID = "", ""

	n := len(m.session.Exercises)
	if n == 0 {
		m.cursor.Exercise, m.cursor.Set = 0, 0
		return
	}

	m.cursor.Exercise = min(max(m.cursor.Exercise, 0), n-1)

	ex := &m.session.Exercises[m.cursor.Exercise]
	m.cursor.ExerciseID = ex.ID

	if len(ex.Sets) == 0 {
		m.cursor.Set = 0
		return
	}

	m.cursor.Set = min(max(m.cursor.Set, 0), len(ex.Sets)-1)
	m.cursor.SetID = ex.Sets[m.cursor.Set].ID
}

// AddExercise appends an exercise and returns its id.
func (m *Machine) AddExercise(seed ExerciseSeed) (string, error) {
	if m.session == nil {
		return "", ErrNoSession
	}

	if seed.Exercise.Name == "" {
		return "", ErrEmptyExercise
	}

	entry := seed.entry(len(m.session.Exercises))
	m.session.Exercises = append(m.session.Exercises, entry)
	m.retally()

	m.syncCursor()

	return entry.ID, nil
}

// RemoveExercise deletes an exercise along with whatever its sets
// contributed to the statistics.
func (m *Machine) RemoveExercise(id string) error {
	if m.session == nil {
		return ErrNoSession
	}

	i := m.exerciseIndex(id)
	if i < 0 {
		m.log.Warn("unknown exercise", slog.String("exercise", id))
		return ErrExerciseNotFound
	}

	m.session.Exercises = slices.Delete(m.session.Exercises, i, i+1)
	m.restamp()

	switch {
	case i < m.cursor.Exercise:
		m.cursor.Exercise--
	case i == m.cursor.Exercise:
		m.rest.Stop()
		m.cursor.Set = 0
	}

	m.syncCursor()

	return nil
}

// ReorderExercises moves the exercise at from to index to. The cursor keeps
// pointing at the same exercise.
func (m *Machine) ReorderExercises(from, to int) error {
	if m.session == nil {
		return ErrNoSession
	}

	n := len(m.session.Exercises)
	if from < 0 || from >= n || to < 0 || to >= n {
		m.log.Warn("invalid reorder", slog.Int("from", from), slog.Int("to", to))
		return ErrInvalidPosition
	}

	if from == to {
		return nil
	}

	current := m.cursor.ExerciseID

	moved := m.session.Exercises[from]
	m.session.Exercises = slices.Delete(m.session.Exercises, from, from+1)
	m.session.Exercises = slices.Insert(m.session.Exercises, to, moved)
	m.restamp()

	if i := m.exerciseIndex(current); i >= 0 {
		m.cursor.Exercise = i
	}

	m.syncCursor()

	return nil
}

func (m *Machine) restamp() {
	for i := range m.session.Exercises {
		m.session.Exercises[i].Position = i
	}

	m.retally()
}
