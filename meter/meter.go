package meter

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/adamwoolhether/pacer/clock"
)

var ErrMustBePositive = errors.New("must be greater than zero")

// Meter measures the rate of a value over a trailing window.
//
// Each update stores a timestamped sample and drops samples that fell
// out of the window. Trimming is conservative: one sample at or before
// the window start is kept, so the measured span never shrinks below
// the window and the rate is never computed over a shorter period.
type Meter struct {
	mu     sync.Mutex
	window time.Duration
	src    clock.Source
	times  []time.Time
	values []float64
}

// Option configures a [Meter].
type Option func(*Meter)

// WithSource replaces [clock.System] as the sample timestamp source.
// A nil src is ignored.
func WithSource(src clock.Source) Option {
	return func(m *Meter) {
		if src != nil {
			m.src = src
		}
	}
}

// New returns a Meter measuring over the trailing window.
func New(window time.Duration, opts ...Option) (*Meter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window[%s] %w", window, ErrMustBePositive)
	}

	m := Meter{
		window: window,
		src:    clock.System,
	}
	for _, opt := range opts {
		opt(&m)
	}

	return &m, nil
}

// Window returns the measurement window.
func (m *Meter) Window() time.Duration {
	return m.window
}

// Restart removes all stored samples.
func (m *Meter) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.times = m.times[:0]
	m.values = m.values[:0]
}

// Update records one more iteration: the previous value plus one, or
// zero for the first sample.
func (m *Meter) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var v float64
	if n := len(m.values); n > 0 {
		v = m.values[n-1] + 1
	}
	m.record(v)
}

// UpdateValue records v as the current value, typically a running total.
func (m *Meter) UpdateValue(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(v)
}

// Rate returns the value change per second across the retained
// samples, or zero with fewer than two samples or a zero time span.
func (m *Meter) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.times)
	if n < 2 {
		return 0
	}

	span := m.times[n-1].Sub(m.times[0])
	if span == 0 {
		return 0
	}

	return (m.values[n-1] - m.values[0]) / span.Seconds()
}

// Len returns the number of retained samples.
func (m *Meter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.times)
}

func (m *Meter) record(v float64) {
	m.times = append(m.times, m.src.Now())
	m.values = append(m.values, v)
	m.trim()
}

// trim drops samples older than the window start, keeping the last one
// before it when no sample sits exactly on it.
func (m *Meter) trim() {
	cutoff := m.times[len(m.times)-1].Add(-m.window)

	i, found := slices.BinarySearchFunc(m.times, cutoff, func(t, target time.Time) int {
		return t.Compare(target)
	})
	if !found {
		i--
	}
	if i <= 0 {
		return
	}

	// Dropped entries are released when append next reallocates.
	m.times = m.times[i:]
	m.values = m.values[i:]
}
