// Package plan stores training plans per user under the plans_{userId} key
// and turns a plan day into the seed of a workout session.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/maruel/natural"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/session"
	"github.com/ayoisaiah/lift/store"
)

// Repository reads and writes plans.
type Repository struct {
	docs *docstore.Store
	log  *slog.Logger
}

type Option func(*Repository)

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

func New(docs *docstore.Store, opts ...Option) *Repository {
	r := &Repository{
		docs: docs,
		log:  slog.New(slog.DiscardHandler),
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// List returns the user's plans ordered by name. Plans that fail validation
// are skipped.
func (r *Repository) List(ctx context.Context, userID string) ([]models.Plan, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	plans, err := r.read(ctx, userID)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(plans, func(a, b models.Plan) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}

		return 0
	})

	return plans, nil
}

// Get returns the plan with id.
func (r *Repository) Get(ctx context.Context, userID, id string) (models.Plan, error) {
	if userID == "" {
		return models.Plan{}, ErrMissingUserID
	}

	plans, err := r.read(ctx, userID)
	if err != nil {
		return models.Plan{}, err
	}

	i := index(plans, id)
	if i < 0 {
		return models.Plan{}, ErrPlanNotFound
	}

	return plans[i], nil
}

// Save stores p, replacing any plan with the same id. A plan without an id
// is given one.
func (r *Repository) Save(ctx context.Context, userID string, p models.Plan) (models.Plan, error) {
	if userID == "" {
		return models.Plan{}, ErrMissingUserID
	}

	if p.ID == "" {
		p.ID = ulid.Make().String()
	}

	if err := Validate(&p); err != nil {
		return models.Plan{}, err
	}

	plans, err := r.read(ctx, userID)
	if err != nil {
		return models.Plan{}, err
	}

	if i := index(plans, p.ID); i >= 0 {
		plans[i] = p
	} else {
		plans = append(plans, p)
	}

	if err := r.docs.Write(ctx, store.PlansKey(userID), plans); err != nil {
		return models.Plan{}, err
	}

	r.log.Info("plan saved", slog.String("plan", p.ID), slog.String("name", p.Name))

	return p, nil
}

// Delete removes the plan with id.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	plans, err := r.read(ctx, userID)
	if err != nil {
		return err
	}

	i := index(plans, id)
	if i < 0 {
		return ErrPlanNotFound
	}

	return r.docs.Write(ctx, store.PlansKey(userID), slices.Delete(plans, i, i+1))
}

func (r *Repository) read(ctx context.Context, userID string) ([]models.Plan, error) {
	key := store.PlansKey(userID)

	items, err := r.docs.ReadArray(ctx, key)
	if err != nil {
		return nil, err
	}

	plans := make([]models.Plan, 0, len(items))

	for _, raw := range items {
		var p models.Plan

		if err := json.Unmarshal(raw, &p); err != nil || Validate(&p) != nil || p.ID == "" {
			continue
		}

		plans = append(plans, p)
	}

	if dropped := len(items) - len(plans); dropped > 0 {
		r.log.Warn(
			"skipped malformed plans",
			slog.String("key", key),
			slog.Int("dropped", dropped),
		)
	}

	return plans, nil
}

func index(plans []models.Plan, id string) int {
	return slices.IndexFunc(plans, func(p models.Plan) bool {
		return p.ID == id
	})
}

// Validate checks that p is usable as a source of workouts.
func Validate(p *models.Plan) error {
	if p.Name == "" {
		return ErrInvalidPlan.Fmt("name is required")
	}

	if len(p.Days) == 0 {
		return ErrInvalidPlan.Fmt("at least one day is required")
	}

	for i, day := range p.Days {
		for j, ex := range day.Exercises {
			switch {
			case ex.Exercise.Name == "":
				return ErrInvalidPlan.Fmt(fmt.Sprintf("day %d exercise %d has no name", i+1, j+1))
			case ex.Sets < 1:
				return ErrInvalidPlan.Fmt(fmt.Sprintf("%s needs at least one set", ex.Exercise.Name))
			case ex.Reps < 0 || ex.Weight < 0 || ex.RestSeconds < 0:
				return ErrInvalidPlan.Fmt(fmt.Sprintf("%s has a negative value", ex.Exercise.Name))
			}
		}
	}

	return nil
}

// LoadYAML decodes a plan file. Unknown fields are rejected.
func LoadYAML(r io.Reader) (models.Plan, error) {
	var p models.Plan

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&p); err != nil {
		return models.Plan{}, errReadPlanFile.Wrap(err)
	}

	if err := Validate(&p); err != nil {
		return models.Plan{}, err
	}

	return p, nil
}

// SeedFromDay copies day (0-based) of p into a session seed. The seed shares
// no memory with p.
func SeedFromDay(p *models.Plan, day int) (session.Seed, error) {
	if day < 0 || day >= len(p.Days) {
		return session.Seed{}, ErrDayNotFound
	}

	d := p.Days[day]

	name := p.Name
	if d.Name != "" {
		name = p.Name + ": " + d.Name
	}

	seed := session.Seed{
		Name:      name,
		PlanID:    p.ID,
		Exercises: make([]session.ExerciseSeed, len(d.Exercises)),
	}

	for i, ex := range d.Exercises {
		ref := ex.Exercise
		ref.Muscles = slices.Clone(ref.Muscles)

		seed.Exercises[i] = session.ExerciseSeed{
			Exercise:    ref,
			Sets:        session.Uniform(ex.Sets, ex.Weight, ex.Reps),
			RestSeconds: ex.RestSeconds,
		}
	}

	return seed, nil
}
