package limiter

import "context"

type fallbackKind int

const (
	fallbackErr fallbackKind = iota
	fallbackValue
	fallbackCall
	fallbackCallContext
)

// Fallback is what a non-waiting [Limiter] returns in place of a call
// that went over the limit. Build one with [Value], [Call],
// [CallContext] or [Fail]. The zero Fallback fails with
// [ErrLimitExceeded].
type Fallback[T any] struct {
	kind    fallbackKind
	err     error
	value   T
	call    func() T
	callCtx func(context.Context) (T, error)
}

// Value returns v for every rejected call.
func Value[T any](v T) Fallback[T] {
	return Fallback[T]{kind: fallbackValue, value: v}
}

// Call returns the result of fn for every rejected call.
func Call[T any](fn func() T) Fallback[T] {
	return Fallback[T]{kind: fallbackCall, call: fn}
}

// CallContext returns the result of fn, which receives the rejected
// call's context and may block on it.
func CallContext[T any](fn func(context.Context) (T, error)) Fallback[T] {
	return Fallback[T]{kind: fallbackCallContext, callCtx: fn}
}

// Fail returns err for every rejected call. A nil err means
// [ErrLimitExceeded].
func Fail[T any](err error) Fallback[T] {
	return Fallback[T]{kind: fallbackErr, err: err}
}

func (f Fallback[T]) produce(ctx context.Context) (T, error) {
	switch f.kind {
	case fallbackValue:
		return f.value, nil
	case fallbackCall:
		return f.call(), nil
	case fallbackCallContext:
		return f.callCtx(ctx)
	}

	var zero T
	if f.err != nil {
		return zero, f.err
	}

	return zero, ErrLimitExceeded
}
