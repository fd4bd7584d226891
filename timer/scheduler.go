package timer

import (
	"context"
	"sync"
	"time"
)

// Scheduler delivers periodic ticks. The returned cancel function stops
// future ticks; it may be called more than once and from within fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// RealScheduler ticks on the wall clock.
type RealScheduler struct{}

func (RealScheduler) Every(interval time.Duration, fn func()) func() {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}

				fn()
			}
		}
	}()

	return cancel
}

// ManualScheduler ticks only when Advance is called.
type ManualScheduler struct {
	subs map[int]func()
	mu   sync.Mutex
	next int
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{subs: make(map[int]func())}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Advance delivers n ticks to every live subscription.
func (m *ManualScheduler) Advance(n int) {
	for range n {
		m.mu.Lock()

		fns := make([]func(), 0, len(m.subs))
		for _, fn := range m.subs {
			fns = append(fns, fn)
		}

		m.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Live returns the number of uncancelled subscriptions.
func (m *ManualScheduler) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs)
}
