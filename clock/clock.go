package clock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrConfiguration   = errors.New("no interval configured")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWaitCancelled   = errors.New("clock wait cancelled")
)

// Clock tracks interval boundaries against a monotonic reference.
//
// The reference is unset until the first timing operation and is
// cleared again by Restart. Once set it only moves forward, either by
// exactly one interval (exact mode) or to the current time (inexact
// Elapsed). Exact advancement keeps the accumulated error bounded by
// clock resolution no matter how many ticks have passed.
//
// A Clock has a single writer: callers sharing one instance across
// goroutines must serialise the timing operations themselves.
type Clock struct {
	interval time.Duration
	src      Source
	logger   *slog.Logger
	late     rate.Sometimes

	ref     time.Time
	started bool
	ticks   int
}

// New returns a Clock ticking every interval. An interval of zero
// leaves the clock without a default; every call must then supply
// [Every] or it fails with [ErrConfiguration].
func New(interval time.Duration, opts ...Option) (*Clock, error) {
	if interval < 0 {
		return nil, fmt.Errorf("interval[%s] must not be negative: %w", interval, ErrInvalidArgument)
	}

	o := options{source: System}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("clock option: %w", err)
		}
	}

	c := Clock{
		interval: interval,
		src:      o.source,
		logger:   o.logger,
		late:     rate.Sometimes{Interval: time.Second},
	}

	return &c, nil
}

// Interval returns the clock's default interval.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Ticks returns the number of intervals consumed since the last restart.
func (c *Clock) Ticks() int {
	return c.ticks
}

// Started reports whether the time reference has been set.
func (c *Clock) Started() bool {
	return c.started
}

// Restart clears the time reference and the tick count. The reference
// is set again by the next timing operation.
func (c *Clock) Restart() {
	c.ref = time.Time{}
	c.started = false
	c.ticks = 0
}

// Elapsed reports whether at least one interval has passed since the
// reference. When it has, the clock counts a tick and moves the
// reference forward by one interval, or to now with [Inexact]. With
// [NoReset] the clock is only polled.
func (c *Clock) Elapsed(opts ...CallOption) (bool, error) {
	o := collect(opts)
	interval, err := c.resolve(o)
	if err != nil {
		return false, err
	}
	c.init()

	now := c.src.Now()
	elapsed := now.Sub(c.ref) >= interval
	if elapsed && !o.noReset {
		c.ticks++
		if o.inexact {
			c.ref = now
		} else {
			c.ref = c.ref.Add(interval)
		}
	}

	return elapsed, nil
}

// WaitNext blocks the calling goroutine until the end of the current
// interval. It returns immediately when that boundary already passed,
// which happens when a clock is reused without Restart.
func (c *Clock) WaitNext(opts ...CallOption) error {
	interval, err := c.resolve(collect(opts))
	if err != nil {
		return err
	}

	if wait := c.advance(interval); wait > 0 {
		c.src.Sleep(wait)
	}
	c.ticks++

	return nil
}

// AwaitNext waits for the end of the current interval or for ctx to
// end, whichever comes first. The reference is advanced before
// waiting, so a cancelled wait still spends its interval; only the
// tick count is left untouched.
func (c *Clock) AwaitNext(ctx context.Context, opts ...CallOption) error {
	interval, err := c.resolve(collect(opts))
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWaitCancelled, err)
	}

	wait := c.advance(interval)
	if wait > 0 {
		select {
		case <-c.src.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrWaitCancelled, ctx.Err())
		}
	}
	c.ticks++

	return nil
}

// advance moves the reference one interval forward and returns how
// long the caller has to wait to reach it.
func (c *Clock) advance(interval time.Duration) time.Duration {
	c.init()
	c.ref = c.ref.Add(interval)

	wait := c.ref.Sub(c.src.Now())
	if wait < 0 {
		c.warnLate(-wait, interval)
		return 0
	}

	return wait
}

func (c *Clock) init() {
	if c.started {
		return
	}
	c.ticks = 0
	c.ref = c.src.Now()
	c.started = true
}

func (c *Clock) resolve(o callOpts) (time.Duration, error) {
	switch {
	case o.interval < 0:
		return 0, fmt.Errorf("interval[%s] must not be negative: %w", o.interval, ErrInvalidArgument)
	case o.interval > 0:
		return o.interval, nil
	case c.interval > 0:
		return c.interval, nil
	}

	return 0, ErrConfiguration
}

func (c *Clock) warnLate(behind, interval time.Duration) {
	if c.logger == nil {
		return
	}

	c.late.Do(func() {
		c.logger.Warn("clock running late", "behind", behind.String(), "interval", interval.String(), "ticks", c.ticks)
	})
}
