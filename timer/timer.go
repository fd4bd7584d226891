// Package timer implements the rest countdown between sets.
package timer

import (
	"sync"
	"time"
)

// Tick is the countdown resolution.
const Tick = time.Second

// RestTimer is a single countdown. Starting a new countdown cancels the
// previous one, and completion is signalled at most once per countdown.
type RestTimer struct {
	sched      Scheduler
	cancel     func()
	onComplete func()
	onTick     func(remaining time.Duration)
	remaining  time.Duration
	gen        uint64
	mu         sync.Mutex
	active     bool
	paused     bool
}

// New returns an idle RestTimer driven by sched. A nil sched ticks on the
// wall clock.
func New(sched Scheduler) *RestTimer {
	if sched == nil {
		sched = RealScheduler{}
	}

	return &RestTimer{sched: sched}
}

// OnComplete sets the function called when a countdown reaches zero or is
// skipped. It runs without any timer lock held.
func (t *RestTimer) OnComplete(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onComplete = fn
}

// OnTick sets the function called after every decrement.
func (t *RestTimer) OnTick(fn func(remaining time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onTick = fn
}

// Start begins a countdown of d, replacing any running one. A non-positive
// d leaves the timer idle.
func (t *RestTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.haltLocked()

	if d <= 0 {
		t.remaining = 0
		return
	}

	t.remaining = d
	t.active = true
	t.scheduleLocked()
}

// Pause freezes the countdown.
func (t *RestTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || t.paused {
		return
	}

	t.unscheduleLocked()
	t.paused = true
}

// Resume continues a paused countdown from where it stopped.
func (t *RestTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || !t.paused {
		return
	}

	t.paused = false
	t.scheduleLocked()
}

// Extend adds seconds to the running countdown. A negative value shortens
// it and completes the countdown if nothing remains.
func (t *RestTimer) Extend(seconds int) {
	t.mu.Lock()

	if !t.active {
		t.mu.Unlock()
		return
	}

	t.remaining += time.Duration(seconds) * time.Second

	if t.remaining > 0 {
		t.mu.Unlock()
		return
	}

	fn := t.completeLocked()
	t.mu.Unlock()

	call(fn)
}

// Skip ends the countdown now and signals completion.
func (t *RestTimer) Skip() {
	t.mu.Lock()

	if !t.active {
		t.mu.Unlock()
		return
	}

	fn := t.completeLocked()
	t.mu.Unlock()

	call(fn)
}

// Stop cancels the countdown without signalling completion.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.haltLocked()
	t.remaining = 0
}

func (t *RestTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.remaining
}

func (t *RestTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.active
}

func (t *RestTimer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.paused
}

func (t *RestTimer) tick(gen uint64) {
	t.mu.Lock()

	if gen != t.gen || !t.active || t.paused {
		t.mu.Unlock()
		return
	}

	t.remaining -= Tick

	if t.remaining > 0 {
		fn, remaining := t.onTick, t.remaining
		t.mu.Unlock()

		if fn != nil {
			fn(remaining)
		}

		return
	}

	fn := t.completeLocked()
	t.mu.Unlock()

	call(fn)
}

func (t *RestTimer) scheduleLocked() {
	t.gen++
	gen := t.gen

	t.cancel = t.sched.Every(Tick, func() {
		t.tick(gen)
	})
}

// unscheduleLocked invalidates the current schedule so that a tick already
// in flight is ignored.
func (t *RestTimer) unscheduleLocked() {
	t.gen++

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *RestTimer) haltLocked() {
	t.unscheduleLocked()
	t.active = false
	t.paused = false
}

func (t *RestTimer) completeLocked() func() {
	t.haltLocked()
	t.remaining = 0

	return t.onComplete
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
