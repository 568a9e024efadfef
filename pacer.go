// Package pacer exposes clock, limiter, meter and paced HTTP client
// builders.
package pacer

import (
	"time"

	"github.com/adamwoolhether/pacer/clock"
	"github.com/adamwoolhether/pacer/limiter"
	"github.com/adamwoolhether/pacer/meter"
)

// NewClock returns a *clock.Clock ticking every interval.
func NewClock(interval time.Duration, opts ...clock.Option) (*clock.Clock, error) {
	return clock.New(interval, opts...)
}

// NewMeter returns a *meter.Meter averaging over window.
func NewMeter(window time.Duration, opts ...meter.Option) (*meter.Meter, error) {
	return meter.New(window, opts...)
}

// NewLimiter returns a *limiter.Limiter letting limit calls through per
// interval. Calls over the limit return onFail's result.
func NewLimiter[T any](limit int, interval time.Duration, onFail limiter.Fallback[T], opts ...limiter.Option) (*limiter.Limiter[T], error) {
	return limiter.New(limiter.Config{Limit: limit, Interval: interval}, onFail, opts...)
}

// NewWaitingLimiter is NewLimiter for a limiter whose calls over the
// limit wait for the next interval.
func NewWaitingLimiter[T any](limit int, interval time.Duration, opts ...limiter.Option) (*limiter.Limiter[T], error) {
	return limiter.New(limiter.Config{Limit: limit, Interval: interval, Wait: true}, limiter.Fallback[T]{}, opts...)
}
