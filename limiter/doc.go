// Package limiter caps how often a function may run per interval.
//
// # Usage
//
// Create a [Limiter] and wrap the call it should guard:
//
//	lim, err := limiter.New(
//		limiter.Config{Limit: 5, Interval: time.Second},
//		limiter.Value("busy"),
//	)
//	fetch := lim.Wrap(func(ctx context.Context) (string, error) {
//		return get(ctx)
//	})
//
// The first five calls in each interval run fetch; the rest return
// "busy" until the interval ends. With Config.Wait set, calls over the
// limit block until the next interval instead, or until their context
// ends.
//
// # Fallbacks
//
// [Value] returns a fixed result, [Call] and [CallContext] compute one,
// and [Fail] returns an error. The zero [Fallback] returns
// [ErrLimitExceeded].
//
// # Stacking
//
// Limiters compose by wrapping. [Chain] applies them innermost first:
//
//	perSecond, _ := limiter.New(limiter.Config{Limit: 10, Interval: time.Second}, limiter.Fallback[string]{})
//	perMinute, _ := limiter.New(limiter.Config{Limit: 100, Interval: time.Minute}, limiter.Fallback[string]{})
//	fetch = limiter.Chain(fetch, perSecond, perMinute)
//
// A call must pass perMinute before perSecond sees it, and each limiter
// keeps its own clock and counter.
package limiter
