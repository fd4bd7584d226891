// Package retry runs storage operations with bounded exponential backoff,
// a hard per-attempt timeout and structured failure classification.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ayoisaiah/lift/internal/models"
)

// Options tunes an Executor.
type Options struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Timeout bounds every attempt.
	Timeout time.Duration
	// Jitter is the maximum relative deviation applied to each delay.
	Jitter float64
}

// DefaultOptions returns three attempts, 1s base delay doubling up to 5s,
// ±10% jitter and a 10s timeout per attempt.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2,
		Timeout:       10 * time.Second,
		Jitter:        0.1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}

	if o.BaseDelay <= 0 {
		o.BaseDelay = d.BaseDelay
	}

	if o.MaxDelay <= 0 {
		o.MaxDelay = d.MaxDelay
	}

	if o.BackoffFactor < 1 {
		o.BackoffFactor = d.BackoffFactor
	}

	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}

	if o.Jitter < 0 {
		o.Jitter = 0
	}

	return o
}

// Executor runs operations under Options. The zero value is not usable; use
// New.
type Executor struct {
	log     *slog.Logger
	metrics *Metrics
	sleep   func(ctx context.Context, d time.Duration) error
	random  func() float64
	opts    Options
}

// Option customises an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for retry and failure events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// WithMetrics records into m instead of the process-wide counters.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithSleep replaces the delay function. Tests use it to avoid real waits.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = fn
	}
}

// WithRandom replaces the jitter source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(e *Executor) {
		e.random = fn
	}
}

// New returns an Executor with opts, filling unset fields from
// DefaultOptions.
func New(opts Options, options ...Option) *Executor {
	e := &Executor{
		opts:    opts.withDefaults(),
		log:     slog.New(slog.DiscardHandler),
		metrics: defaultMetrics,
		sleep:   sleepCtx,
		random:  rand.Float64,
	}

	for _, o := range options {
		o(e)
	}

	return e
}

// Options returns the effective options.
func (e *Executor) Options() Options {
	return e.opts
}

// Delay returns the wait before the retry that follows failed attempt
// number attempt (0-based).
func (e *Executor) Delay(attempt int) time.Duration {
	base := float64(e.opts.BaseDelay) * math.Pow(e.opts.BackoffFactor, float64(attempt))
	base = math.Min(base, float64(e.opts.MaxDelay))

	jitter := (e.random()*2 - 1) * e.opts.Jitter

	return time.Duration(base * (1 + jitter))
}

// Do runs op until it succeeds, fails with a non-retryable error or runs out
// of attempts. name and key identify the operation in errors and logs.
func (e *Executor) Do(
	ctx context.Context,
	name, key string,
	op func(ctx context.Context) error,
) error {
	_, err := e.DoWithOutcome(ctx, name, key, op)

	return err
}

// DoWithOutcome is Do but also reports how the operation went.
func (e *Executor) DoWithOutcome(
	ctx context.Context,
	name, key string,
	op func(ctx context.Context) error,
) (models.RetryOutcome, error) {
	_, outcome, err := run(ctx, e, name, key, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})

	return outcome, err
}

// Value runs op through e and returns the result of the attempt that
// succeeded.
func Value[T any](
	ctx context.Context,
	e *Executor,
	name, key string,
	op func(ctx context.Context) (T, error),
) (T, error) {
	v, _, err := run(ctx, e, name, key, op)

	return v, err
}

func run[T any](
	ctx context.Context,
	e *Executor,
	name, key string,
	op func(ctx context.Context) (T, error),
) (T, models.RetryOutcome, error) {
	var (
		outcome models.RetryOutcome
		zero    T
	)

	for attempt := 0; attempt < e.opts.MaxAttempts; attempt++ {
		outcome.Attempts++
		e.metrics.attempts.Add(1)

		start := time.Now()

		v, err := runAttempt(ctx, e.opts.Timeout, op)
		if err == nil {
			e.metrics.recordSuccess(time.Since(start))
			return v, outcome, nil
		}

		class := Classify(err)
		outcome.Class = class.String()

		last := attempt == e.opts.MaxAttempts-1
		if !class.Retryable() || last {
			e.metrics.failures.Add(1)

			serr := &StorageError{
				Op:       name,
				Key:      key,
				Attempts: outcome.Attempts,
				Class:    class,
				Err:      err,
				Outcome:  outcome,
			}

			e.log.Error(
				"storage operation failed",
				slog.String("op", name),
				slog.String("key", key),
				slog.Int("attempts", outcome.Attempts),
				slog.String("class", class.String()),
				slog.Any("error", err),
			)

			return zero, outcome, serr
		}

		delay := e.Delay(attempt)
		outcome.Delays = append(outcome.Delays, delay)
		e.metrics.retries.Add(1)

		e.log.Warn(
			"retrying storage operation",
			slog.String("op", name),
			slog.String("key", key),
			slog.Int("attempt", outcome.Attempts),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		if serr := e.sleep(ctx, delay); serr != nil {
			e.metrics.failures.Add(1)

			return zero, outcome, &StorageError{
				Op:       name,
				Key:      key,
				Attempts: outcome.Attempts,
				Class:    class,
				Err:      errors.Join(err, serr),
				Outcome:  outcome,
			}
		}
	}

	// unreachable: the loop always returns on its last attempt
	return zero, outcome, nil
}

type result[T any] struct {
	v   T
	err error
}

// runAttempt runs op once, racing it against timeout. The operation does
// not observe the caller's cancellation so an in-flight write is never
// abandoned halfway; only the timeout ends it. A result that arrives after
// the timeout is dropped.
func runAttempt[T any](
	ctx context.Context,
	timeout time.Duration,
	op func(ctx context.Context) (T, error),
) (T, error) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	done := make(chan result[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result[T]{err: &panicError{value: r}}
			}
		}()

		v, err := op(opCtx)
		done <- result[T]{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-opCtx.Done():
		var zero T
		return zero, ErrTimeout
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
