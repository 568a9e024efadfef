package clock

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Loop returns a sequence of zero-based tick indices, blocking for one
// interval before each. Bound it with [MaxTicks] or [For], not both;
// unbounded loops run until the caller breaks out.
//
// Parameters are checked when iteration starts. An invalid combination
// yields a single (0, err) pair before any waiting.
//
// Running Loop again without Restart continues from the current
// reference, so consecutive loops stay phase-locked.
func (c *Clock) Loop(opts ...CallOption) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		interval, limit, err := c.loopParams(collect(opts))
		if err != nil {
			yield(0, err)
			return
		}

		for tick := 0; limit < 0 || tick < limit; tick++ {
			if err := c.WaitNext(Every(interval)); err != nil {
				yield(tick, err)
				return
			}
			if !yield(tick, nil) {
				return
			}
		}
	}
}

// AwaitLoop is the cancellable form of [Clock.Loop]. When ctx ends
// during a wait the sequence yields the pending index with the wrapped
// context error and stops.
func (c *Clock) AwaitLoop(ctx context.Context, opts ...CallOption) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		interval, limit, err := c.loopParams(collect(opts))
		if err != nil {
			yield(0, err)
			return
		}

		for tick := 0; limit < 0 || tick < limit; tick++ {
			if err := c.AwaitNext(ctx, Every(interval)); err != nil {
				yield(tick, err)
				return
			}
			if !yield(tick, nil) {
				return
			}
		}
	}
}

// loopParams validates loop bounds and converts them to a tick limit,
// -1 meaning unbounded. It also sets the reference if needed.
func (c *Clock) loopParams(o callOpts) (time.Duration, int, error) {
	if o.hasMax && o.hasLength {
		return 0, 0, fmt.Errorf("max ticks and duration are mutually exclusive: %w", ErrInvalidArgument)
	}
	if o.hasMax && o.maxTicks < 0 {
		return 0, 0, fmt.Errorf("max ticks[%d] must not be negative: %w", o.maxTicks, ErrInvalidArgument)
	}
	if o.hasLength && o.duration < 0 {
		return 0, 0, fmt.Errorf("duration[%s] must not be negative: %w", o.duration, ErrInvalidArgument)
	}

	interval, err := c.resolve(o)
	if err != nil {
		return 0, 0, err
	}
	c.init()

	switch {
	case o.hasMax:
		return interval, o.maxTicks, nil
	case o.hasLength:
		return interval, int((o.duration + interval - 1) / interval), nil
	}

	return interval, -1, nil
}
