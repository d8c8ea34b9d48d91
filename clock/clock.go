// Package clock lets the bot's time-driven behaviour (uptime, inactivity
// sweeps, periodic loop hooks) run against a controllable clock in tests.
package clock

import (
	"sync"
	"time"
)

// TimeProvider is the only source of "now" for uptime, last-seen ages and
// hook scheduling. Sleeping between iterations always uses real time.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Since(t time.Time) time.Duration { return time.Since(t) }

// MockTimeProvider only moves when told to. Both iteration loops may read
// it while a test advances it.
//
//	tp := clock.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
//	policy := friends.NewPolicy(engine, store, friends.WithTimeProvider(tp))
//	tp.Advance(31 * 24 * time.Hour)
//	policy.Sweep()
type MockTimeProvider struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{now: start}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockTimeProvider) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Advance moves the clock forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set jumps to t, which may be in the past.
func (m *MockTimeProvider) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// OrDefault returns tp, or the wall clock when tp is nil.
func OrDefault(tp TimeProvider) TimeProvider {
	if tp == nil {
		return System{}
	}
	return tp
}
