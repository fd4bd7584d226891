package retry

import (
	"sync/atomic"
	"time"
)

// Metrics holds retry counters. All fields are updated atomically, so one
// Metrics may be shared by executors on any goroutine.
type Metrics struct {
	attempts     atomic.Int64
	successes    atomic.Int64
	failures     atomic.Int64
	retries      atomic.Int64
	latencyNanos atomic.Int64
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	Attempts       int64         `json:"attempts"`
	Successes      int64         `json:"successes"`
	Failures       int64         `json:"failures"`
	Retries        int64         `json:"retries"`
	AverageLatency time.Duration `json:"averageLatency"`
}

var defaultMetrics = &Metrics{}

func (m *Metrics) recordSuccess(latency time.Duration) {
	m.latencyNanos.Add(int64(latency))
	m.successes.Add(1)
}

// Snapshot returns the current counter values. AverageLatency is the mean
// duration of the successful attempts.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Attempts:  m.attempts.Load(),
		Successes: m.successes.Load(),
		Failures:  m.failures.Load(),
		Retries:   m.retries.Load(),
	}

	if s.Successes > 0 {
		s.AverageLatency = time.Duration(m.latencyNanos.Load() / s.Successes)
	}

	return s
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.attempts.Store(0)
	m.successes.Store(0)
	m.failures.Store(0)
	m.retries.Store(0)
	m.latencyNanos.Store(0)
}

// Diagnostics returns the process-wide counters.
func Diagnostics() Snapshot {
	return defaultMetrics.Snapshot()
}

// ResetDiagnostics clears the process-wide counters. They are never reset
// implicitly.
func ResetDiagnostics() {
	defaultMetrics.Reset()
}
