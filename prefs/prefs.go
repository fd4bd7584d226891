// Package prefs stores per-user preferences and device-wide app settings.
package prefs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ayoisaiah/lift/internal/apperr"
	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/models"
	"github.com/ayoisaiah/lift/store"
)

const (
	UnitKg = "kg"
	UnitLb = "lb"
)

var (
	ErrMissingUserID = errors.New("a user id is required")

	ErrInvalidPreferences = &apperr.Error{
		Message: "invalid preferences: %s",
	}
)

// Defaults returns the preferences used when none are stored.
func Defaults() models.Preferences {
	return models.Preferences{
		WeightUnit:    UnitKg,
		RestSeconds:   90,
		Notifications: true,
	}
}

// Validate checks p.
func Validate(p *models.Preferences) error {
	if p.WeightUnit != UnitKg && p.WeightUnit != UnitLb {
		return ErrInvalidPreferences.Fmt("weight unit must be kg or lb")
	}

	if p.RestSeconds < 0 {
		return ErrInvalidPreferences.Fmt("rest seconds cannot be negative")
	}

	return nil
}

type Repository struct {
	docs *docstore.Store
	log  *slog.Logger
}

func New(docs *docstore.Store, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Repository{docs: docs, log: log}
}

// Preferences returns the stored preferences of userID, or Defaults when
// there are none or the stored value is unusable.
func (r *Repository) Preferences(ctx context.Context, userID string) (models.Preferences, error) {
	p, _, err := r.Lookup(ctx, userID)

	return p, err
}

// Lookup is Preferences but also reports whether usable preferences were
// stored.
func (r *Repository) Lookup(ctx context.Context, userID string) (models.Preferences, bool, error) {
	if userID == "" {
		return models.Preferences{}, false, ErrMissingUserID
	}

	p := Defaults()

	ok, err := r.docs.ReadObject(ctx, store.PreferencesKey(userID), &p)
	if err != nil {
		return models.Preferences{}, false, err
	}

	if !ok {
		return Defaults(), false, nil
	}

	if err := Validate(&p); err != nil {
		r.log.Warn(
			"ignoring stored preferences",
			slog.String("user", userID),
			slog.Any("error", err),
		)

		return Defaults(), false, nil
	}

	return p, true, nil
}

// SavePreferences validates and stores p.
func (r *Repository) SavePreferences(ctx context.Context, userID string, p models.Preferences) error {
	if userID == "" {
		return ErrMissingUserID
	}

	if err := Validate(&p); err != nil {
		return err
	}

	return r.docs.Write(ctx, store.PreferencesKey(userID), p)
}

// Settings returns the app settings. Absent settings are the zero value.
func (r *Repository) Settings(ctx context.Context) (models.AppSettings, error) {
	var s models.AppSettings

	if _, err := r.docs.ReadObject(ctx, store.AppSettingsKey, &s); err != nil {
		return models.AppSettings{}, err
	}

	return s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, s models.AppSettings) error {
	return r.docs.Write(ctx, store.AppSettingsKey, s)
}
