// Package history persists finished workouts per user. Records are kept
// newest first under the workout_history_{userId} key and every read and
// write goes through the retry executor.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/store"
)

// DefaultLimit is the number of records kept per user.
const DefaultLimit = 100

// Repository reads and writes workout history.
type Repository struct {
	docs  *docstore.Store
	log   *slog.Logger
	now   func() time.Time
	limit int
}

type Option func(*Repository)

// WithLimit caps the number of records kept per user.
func WithLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.limit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// WithClock replaces the time source used for created and updated stamps.
func WithClock(fn func() time.Time) Option {
	return func(r *Repository) {
		r.now = fn
	}
}

// New returns a Repository over docs.
func New(docs *docstore.Store, opts ...Option) *Repository {
	r := &Repository{
		docs:  docs,
		log:   slog.New(slog.DiscardHandler),
		now:   time.Now,
		limit: DefaultLimit,
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// NewID returns a fresh, time-ordered record id.
func NewID() string {
	return ulid.Make().String()
}

// Limit returns the number of records kept per user.
func (r *Repository) Limit() int {
	return r.limit
}

// List returns the user's records, newest first. Malformed entries are
// skipped and a corrupted payload yields an empty list.
func (r *Repository) List(
	ctx context.Context,
	userID string,
) ([]models.HistoryRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	return r.read(ctx, userID)
}

// Get returns the record with id.
func (r *Repository) Get(
	ctx context.Context,
	userID, id string,
) (models.HistoryRecord, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return models.HistoryRecord{}, err
	}

	i := index(list, id)
	if i < 0 {
		return models.HistoryRecord{}, ErrRecordNotFound
	}

	return list[i], nil
}

// Save stores rec at the front of the user's history, replacing any record
// with the same id, and drops the oldest records beyond the limit.
func (r *Repository) Save(
	ctx context.Context,
	userID string,
	rec models.HistoryRecord,
) (models.HistoryRecord, error) {
	if userID == "" {
		return models.HistoryRecord{}, ErrMissingUserID
	}

	normalize(&rec)

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	if rec.Date.IsZero() {
		rec.Date = rec.CreatedAt
	}

	if err := Validate(&rec); err != nil {
		return models.HistoryRecord{}, err
	}

	list, err := r.read(ctx, userID)
	if err != nil {
		return models.HistoryRecord{}, err
	}

	list = slices.DeleteFunc(list, func(h models.HistoryRecord) bool {
		return h.ID == rec.ID
	})

	list = slices.Insert(list, 0, rec)

	if err := r.write(ctx, userID, list); err != nil {
		return models.HistoryRecord{}, err
	}

	return rec, nil
}

// Delete removes the record with id. Nothing is written when no record
// matches.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	list, err := r.read(ctx, userID)
	if err != nil {
		return err
	}

	n := len(list)

	list = slices.DeleteFunc(list, func(h models.HistoryRecord) bool {
		return h.ID == id
	})

	if len(list) == n {
		return ErrRecordNotFound
	}

	return r.write(ctx, userID, list)
}

// Patch holds the editable fields of a record. Nil fields are left
// unchanged.
type Patch struct {
	Name      *string                 `json:"name,omitempty"`
	Notes     *string                 `json:"notes,omitempty"`
	Rating    *int                    `json:"rating,omitempty"`
	Date      *time.Time              `json:"date,omitempty"`
	Duration  *time.Duration          `json:"duration,omitempty"`
	Exercises *[]models.ExerciseEntry `json:"exercises,omitempty"`
}

// Update applies patch to the record with id in place. The id is never
// changed. The merged record is validated before anything is written.
func (r *Repository) Update(
	ctx context.Context,
	userID, id string,
	patch Patch,
) (models.HistoryRecord, error) {
	if userID == "" {
		return models.HistoryRecord{}, ErrMissingUserID
	}

	list, err := r.read(ctx, userID)
	if err != nil {
		return models.HistoryRecord{}, err
	}

	i := index(list, id)
	if i < 0 {
		return models.HistoryRecord{}, ErrRecordNotFound
	}

	rec := apply(list[i], patch)
	rec.ID = id

	now := r.now()
	rec.UpdatedAt = &now

	if err := Validate(&rec); err != nil {
		return models.HistoryRecord{}, err
	}

	list[i] = rec

	if err := r.write(ctx, userID, list); err != nil {
		return models.HistoryRecord{}, err
	}

	return rec, nil
}

func apply(rec models.HistoryRecord, p Patch) models.HistoryRecord {
	if p.Name != nil {
		rec.Name = *p.Name
	}

	if p.Notes != nil {
		rec.Notes = *p.Notes
	}

	if p.Rating != nil {
		rec.Rating = *p.Rating
	}

	if p.Date != nil {
		rec.Date = *p.Date
	}

	if p.Duration != nil {
		rec.Duration = *p.Duration
	}

	if p.Exercises != nil {
		rec.Exercises = models.CloneExercises(*p.Exercises)
		rec.CompletedSets, rec.TotalSets, rec.TotalVolume = models.Tally(rec.Exercises)
		rec.Calories = models.EstimateCalories(rec.CompletedSets, rec.TotalVolume)
	}

	return rec
}

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	Start time.Time
	End   time.Time
	Query string
}

func (f Filter) match(rec *models.HistoryRecord) bool {
	if !f.Start.IsZero() && rec.Date.Before(f.Start) {
		return false
	}

	if !f.End.IsZero() && rec.Date.After(f.End) {
		return false
	}

	return matchQuery(rec, fold(strings.TrimSpace(f.Query)))
}

// Filter returns the records that match f, newest first.
func (r *Repository) Filter(
	ctx context.Context,
	userID string,
	f Filter,
) ([]models.HistoryRecord, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.HistoryRecord, 0, len(list))

	for i := range list {
		if f.match(&list[i]) {
			out = append(out, list[i])
		}
	}

	return out, nil
}

// Search returns the records whose name, notes or exercise names contain
// query, ignoring case.
func (r *Repository) Search(
	ctx context.Context,
	userID, query string,
) ([]models.HistoryRecord, error) {
	return r.Filter(ctx, userID, Filter{Query: query})
}

func matchQuery(rec *models.HistoryRecord, q string) bool {
	if q == "" {
		return true
	}

	if strings.Contains(fold(rec.Name), q) || strings.Contains(fold(rec.Notes), q) {
		return true
	}

	for i := range rec.Exercises {
		if strings.Contains(fold(rec.Exercises[i].Exercise.Name), q) {
			return true
		}
	}

	return false
}

// fold normalises s for case-insensitive matching so that composed and
// decomposed accents compare equal.
func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

func (r *Repository) read(
	ctx context.Context,
	userID string,
) ([]models.HistoryRecord, error) {
	key := store.HistoryKey(userID)

	items, err := r.docs.ReadArray(ctx, key)
	if err != nil {
		return nil, err
	}

	list := make([]models.HistoryRecord, 0, len(items))

	for _, raw := range items {
		if rec, ok := decode(raw); ok {
			list = append(list, rec)
		}
	}

	if dropped := len(items) - len(list); dropped > 0 {
		r.log.Warn(
			"skipped malformed workout records",
			slog.String("key", key),
			slog.Int("dropped", dropped),
		)
	}

	return list, nil
}

func (r *Repository) write(
	ctx context.Context,
	userID string,
	list []models.HistoryRecord,
) error {
	if len(list) > r.limit {
		list = list[:r.limit]
	}

	return r.docs.Write(ctx, store.HistoryKey(userID), list)
}

func index(list []models.HistoryRecord, id string) int {
	return slices.IndexFunc(list, func(h models.HistoryRecord) bool {
		return h.ID == id
	})
}

// ImportResult reports how an import went.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportJSON merges the records in data into the user's history. Records
// replace existing ones with the same id; malformed records are skipped. The
// merged history is ordered by date, newest first, trimmed to the limit and
// written once.
func (r *Repository) ImportJSON(
	ctx context.Context,
	userID string,
	data []byte,
) (ImportResult, error) {
	var res ImportResult

	if userID == "" {
		return res, ErrMissingUserID
	}

	var items []json.RawMessage

	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return res, ErrInvalidImport.Wrap(err)
	}

	incoming := make(map[string]models.HistoryRecord, len(items))
	order := make([]string, 0, len(items))

	for _, raw := range items {
		rec, ok := decode(raw)
		if !ok || Validate(&rec) != nil {
			res.Skipped++
			continue
		}

		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = r.now()
		}

		if rec.Date.IsZero() {
			rec.Date = rec.CreatedAt
		}

		if _, dup := incoming[rec.ID]; !dup {
			order = append(order, rec.ID)
		}

		incoming[rec.ID] = rec
		res.Imported++
	}

	if res.Imported == 0 {
		return res, nil
	}

	list, err := r.read(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}

	list = slices.DeleteFunc(list, func(h models.HistoryRecord) bool {
		_, ok := incoming[h.ID]
		return ok
	})

	for _, id := range order {
		list = append(list, incoming[id])
	}

	slices.SortStableFunc(list, func(a, b models.HistoryRecord) int {
		return b.Date.Compare(a.Date)
	})

	if err := r.write(ctx, userID, list); err != nil {
		return ImportResult{}, err
	}

	return res, nil
}
