// Package clock paces iterative work to a fixed interval without
// accumulating drift.
//
// # Polling
//
// [Clock.Elapsed] reports whether an interval boundary passed, letting
// the caller do other work between checks:
//
//	c, _ := clock.New(10 * time.Millisecond)
//	for {
//		if ok, _ := c.Elapsed(); ok {
//			sample()
//		}
//		doOtherWork()
//	}
//
// # Waiting
//
// [Clock.WaitNext] blocks the goroutine until the next boundary.
// [Clock.AwaitNext] does the same but gives up when its context ends.
//
// # Loops
//
// [Clock.Loop] and [Clock.AwaitLoop] wrap the waits in range-over-func
// sequences:
//
//	// Record 24 frames per second for ten seconds.
//	c, _ := clock.New(time.Second / 24)
//	for i, err := range c.Loop(clock.For(10 * time.Second)) {
//		if err != nil {
//			return err
//		}
//		record(i)
//	}
//
// Boundaries are computed from the previous boundary, not from the
// moment a wait returned, so a slow iteration is made up for by a
// shorter wait on the next one.
package clock
