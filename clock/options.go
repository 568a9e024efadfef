package clock

import (
	"errors"
	"log/slog"
	"time"
)

// Option configures a [Clock] at construction time.
type Option func(*options) error

type options struct {
	source Source
	logger *slog.Logger
}

// WithSource replaces the [System] time source. Tests use it to drive
// a clock deterministically.
func WithSource(src Source) Option {
	return func(o *options) error {
		if src == nil {
			return errors.New("source must not be nil")
		}
		o.source = src
		return nil
	}
}

// WithLogger enables warnings when a wait target has already passed.
// A nil logger keeps the clock silent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// /////////////////////////////////////////////////////////////////

// CallOption adjusts a single timing operation.
//
// NoReset and Inexact only affect [Clock.Elapsed]. MaxTicks and For
// only affect [Clock.Loop] and [Clock.AwaitLoop]. Every applies to all
// of them.
type CallOption func(*callOpts)

type callOpts struct {
	interval  time.Duration
	noReset   bool
	inexact   bool
	maxTicks  int
	hasMax    bool
	duration  time.Duration
	hasLength bool
}

// Every overrides the clock's interval for one call.
func Every(d time.Duration) CallOption {
	return func(o *callOpts) {
		o.interval = d
	}
}

// NoReset turns Elapsed into a pure poll that never mutates the clock.
func NoReset() CallOption {
	return func(o *callOpts) {
		o.noReset = true
	}
}

// Inexact makes Elapsed snap the reference to the poll time instead of
// advancing it by exactly one interval. Phase is lost, but a clock that
// fell behind stops reporting back-to-back boundaries.
func Inexact() CallOption {
	return func(o *callOpts) {
		o.inexact = true
	}
}

// MaxTicks bounds a loop to n ticks.
func MaxTicks(n int) CallOption {
	return func(o *callOpts) {
		o.maxTicks = n
		o.hasMax = true
	}
}

// For bounds a loop to ceil(d / interval) ticks, so it never runs
// shorter than d but may overrun by up to one interval.
func For(d time.Duration) CallOption {
	return func(o *callOpts) {
		o.duration = d
		o.hasLength = true
	}
}

func collect(opts []CallOption) callOpts {
	var o callOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
