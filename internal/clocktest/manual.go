// Package clocktest provides a hand-driven time source for tests.
package clocktest

import (
	"slices"
	"sync"
	"time"
)

// Manual is a time source whose clock only moves when told to. Sleeps
// and timers advance it instantly by the requested duration, so waits
// cost nothing in wall time while the arithmetic stays real.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	hold   bool
}

// NewManual returns a Manual source starting at an arbitrary fixed time.
func NewManual() *Manual {
	return &Manual{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
}

// Sleep records d and advances the clock by it.
func (m *Manual) Sleep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sleeps = append(m.sleeps, d)
	m.now = m.now.Add(d)
}

// After records d and returns a channel that has already fired, unless
// timers are held, in which case the channel never fires.
func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sleeps = append(m.sleeps, d)
	ch := make(chan time.Time, 1)
	if m.hold {
		return ch
	}
	m.now = m.now.Add(d)
	ch <- m.now

	return ch
}

// Hold makes subsequent timers never fire, which lets tests exercise
// context cancellation.
func (m *Manual) Hold(hold bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hold = hold
}

// Sleeps returns every wait requested so far, in order.
func (m *Manual) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.sleeps)
}

// Total sums every wait requested so far.
func (m *Manual) Total() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total time.Duration
	for _, d := range m.sleeps {
		total += d
	}
	return total
}
