package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lift/engine"
	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/internal/config"
	"github.com/ayoisaiah/lift/internal/docstore"
	"github.com/ayoisaiah/lift/internal/logging"
	"github.com/ayoisaiah/lift/internal/osutil"
	"github.com/ayoisaiah/lift/internal/pathutil"
	"github.com/ayoisaiah/lift/internal/ui"
	"github.com/ayoisaiah/lift/plan"
	"github.com/ayoisaiah/lift/prefs"
	"github.com/ayoisaiah/lift/retry"
	"github.com/ayoisaiah/lift/store"
	"github.com/ayoisaiah/lift/timer"
)

// deps is everything a command needs, built once from the configuration.
type deps struct {
	cfg     *config.Config
	log     *slog.Logger
	kv      store.KV
	docs    *docstore.Store
	history *history.Repository
	plans   *plan.Repository
	prefs   *prefs.Repository
	closers []io.Closer
}

// load reads the configuration and opens storage for a command.
func load(ctx *cli.Context) (*deps, error) {
	cfg, err := config.New(
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	log, logCloser := logging.New(logging.Options{
		Path:       pathutil.LogFilePath(),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	opts := cfg.StoreOptions()

	if opts.Backend == store.BackendBolt || opts.Backend == store.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(opts.Path), osutil.DirPermission); err != nil {
			_ = logCloser.Close()
			return nil, err
		}
	}

	kv, err := store.Open(opts)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	d := newDeps(cfg, kv, log)
	d.closers = append(d.closers, logCloser)

	log.Debug("configuration loaded", slog.String("config", cfg.String()))

	return d, nil
}

// newDeps wires the repositories over an open store.
func newDeps(cfg *config.Config, kv store.KV, log *slog.Logger) *deps {
	exec := retry.New(
		retry.Options{
			MaxAttempts:   cfg.Retry.MaxAttempts,
			BaseDelay:     cfg.Retry.BaseDelay,
			MaxDelay:      cfg.Retry.MaxDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
			Timeout:       cfg.Retry.Timeout,
			Jitter:        cfg.Retry.Jitter,
		},
		retry.WithLogger(log.With(slog.String("component", "retry"))),
	)

	docs := docstore.New(kv, exec, log.With(slog.String("component", "docstore")))

	return &deps{
		cfg:  cfg,
		log:  log,
		kv:   kv,
		docs: docs,
		history: history.New(
			docs,
			history.WithLimit(cfg.History.Limit),
			history.WithLogger(log.With(slog.String("component", "history"))),
		),
		plans: plan.New(docs, plan.WithLogger(log.With(slog.String("component", "plan")))),
		prefs: prefs.New(docs, log.With(slog.String("component", "prefs"))),
	}
}

func (d *deps) userID() string {
	return d.cfg.Session.UserID
}

// unit returns the weight unit from the user's preferences, falling back
// to the configured unit.
func (d *deps) unit(ctx context.Context) string {
	p, ok, err := d.prefs.Lookup(ctx, d.userID())
	if err != nil || !ok {
		return d.cfg.Session.WeightUnit
	}

	return p.WeightUnit
}

// notify reports whether rest notifications should be shown. The command
// line and config file can only turn them off.
func (d *deps) notify(ctx context.Context) bool {
	if !d.cfg.Notifications.Enabled {
		return false
	}

	p, ok, err := d.prefs.Lookup(ctx, d.userID())
	if err != nil || !ok {
		return true
	}

	return p.Notifications
}

// engine returns a session engine for the configured user with its
// personal records loaded.
func (d *deps) engine(ctx context.Context, sched timer.Scheduler) (*engine.Engine, error) {
	e, err := engine.New(
		d.userID(),
		d.history,
		engine.WithScheduler(sched),
		engine.WithLogger(d.log.With(slog.String("component", "engine"))),
		engine.WithPlans(d.plans),
		engine.WithPreferences(d.prefs),
		engine.WithDefaultRest(d.cfg.Session.RestDuration),
	)
	if err != nil {
		return nil, err
	}

	if err := e.LoadRecords(ctx); err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

func (d *deps) Close() error {
	err := d.kv.Close()

	for _, c := range d.closers {
		_ = c.Close()
	}

	return err
}
