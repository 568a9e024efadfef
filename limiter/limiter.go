package limiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/pacer/clock"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrLimitExceeded = errors.New("call limit exceeded")
	ErrWaitingFailed = errors.New("limiter waiting failed")
)

// Config defines how many calls a limiter lets through per interval
// and whether calls over the limit wait for the next interval.
type Config struct {
	Limit    int           `yaml:"limit" json:"limit" validate:"gte=1"`
	Interval time.Duration `yaml:"interval" json:"interval" validate:"gt=0"`
	Wait     bool          `yaml:"wait" json:"wait"`
}

// Func is a call a [Limiter] can wrap.
type Func[T any] func(ctx context.Context) (T, error)

// Wrapper decorates a Func. [*Limiter] implements it, which is what
// makes limiters stack.
type Wrapper[T any] interface {
	Wrap(fn Func[T]) Func[T]
}

// Limiter caps how many times the calls it wraps run per interval.
//
// Every Limiter owns its own interval clock and call counter. Wrapping
// several functions with one Limiter makes them share that budget.
type Limiter[T any] struct {
	cfg     Config
	name    string
	clock   *clock.Clock
	src     clock.Source
	counter int
	sem     chan struct{}
	onFail  Fallback[T]
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics Metrics
}

// New returns a Limiter for cfg. onFail decides what rejected calls
// return when cfg.Wait is false; it is ignored otherwise.
func New[T any](cfg Config, onFail Fallback[T], opts ...Option) (*Limiter[T], error) {
	if cfg.Limit <= 0 || cfg.Interval <= 0 {
		return nil, fmt.Errorf("limit[%d] and interval[%s] %w", cfg.Limit, cfg.Interval, ErrMustNotBeZero)
	}

	o := options{
		source:  clock.System,
		tracer:  noop.NewTracerProvider().Tracer("no-op tracer"),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("limiter option: %w", err)
		}
	}
	if o.name == "" {
		o.name = "limiter-" + uuid.NewString()[:8]
	}

	clk, err := clock.New(cfg.Interval, clock.WithSource(o.source), clock.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("limiter clock: %w", err)
	}

	l := Limiter[T]{
		cfg:     cfg,
		name:    o.name,
		clock:   clk,
		src:     o.source,
		sem:     make(chan struct{}, 1),
		onFail:  onFail,
		logger:  o.logger,
		tracer:  o.tracer,
		metrics: o.metrics,
	}

	return &l, nil
}

// Name returns the limiter's label.
func (l *Limiter[T]) Name() string {
	return l.name
}

// Config returns the limiter's configuration.
func (l *Limiter[T]) Config() Config {
	return l.cfg
}

// Wrap returns fn limited by l. Calls over the limit either wait for
// the next interval, giving up when their context ends, or return the
// fallback without running fn.
func (l *Limiter[T]) Wrap(fn Func[T]) Func[T] {
	return func(ctx context.Context) (T, error) {
		admitted, err := l.admit(ctx, true)
		if err != nil {
			var zero T
			return zero, err
		}
		if !admitted {
			return l.onFail.produce(ctx)
		}

		return fn(ctx)
	}
}

// WrapFunc is the blocking form of [Limiter.Wrap] for calls without a
// context. Waits sleep the goroutine and cannot be interrupted.
func (l *Limiter[T]) WrapFunc(fn func() (T, error)) func() (T, error) {
	return func() (T, error) {
		ctx := context.Background()

		admitted, err := l.admit(ctx, false)
		if err != nil {
			var zero T
			return zero, err
		}
		if !admitted {
			return l.onFail.produce(ctx)
		}

		return fn()
	}
}

// admit counts the call and decides whether it may run. The counter
// and clock are only touched while holding sem, which also serialises
// waits so each clock has a single writer.
func (l *Limiter[T]) admit(ctx context.Context, cancellable bool) (bool, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %w", ErrWaitingFailed, ctx.Err())
	}
	defer func() { <-l.sem }()

	l.counter++

	crossed, err := l.clock.Elapsed()
	if err != nil {
		return false, fmt.Errorf("limiter clock: %w", err)
	}

	switch {
	case crossed:
		l.counter = 1

	case l.counter > l.cfg.Limit:
		if !l.cfg.Wait {
			l.metrics.Rejected(l.name)
			trace.SpanFromContext(ctx).AddEvent("limiter.rejected", trace.WithAttributes(attribute.String("limiter", l.name)))
			if l.logger != nil {
				l.logger.Debug("limiter call rejected", "limiter", l.name, "limit", l.cfg.Limit, "interval", l.cfg.Interval.String())
			}
			return false, nil
		}

		if err := l.wait(ctx, cancellable); err != nil {
			return false, err
		}
		l.counter = 1
		return true, nil
	}

	l.metrics.Allowed(l.name)

	return true, nil
}

func (l *Limiter[T]) wait(ctx context.Context, cancellable bool) error {
	ctx, span := l.tracer.Start(ctx, "limiter.wait", trace.WithAttributes(
		attribute.String("limiter", l.name),
		attribute.Int("limit", l.cfg.Limit),
		attribute.String("interval", l.cfg.Interval.String()),
	))
	defer span.End()

	if l.logger != nil {
		l.logger.Info("limiter calls exhausted", "limiter", l.name, "limit", l.cfg.Limit, "interval", l.cfg.Interval.String())
	}

	start := l.src.Now()
	var err error
	if cancellable {
		err = l.clock.AwaitNext(ctx)
	} else {
		err = l.clock.WaitNext()
	}
	waited := l.src.Now().Sub(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait failed")
		return fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	l.metrics.Waited(l.name, waited)
	if l.logger != nil {
		l.logger.Info("limiter wait complete", "limiter", l.name, "waited", waited.String())
	}

	return nil
}

// Chain stacks wrappers around fn. The first wrapper is innermost, so
// the last one is checked first and calls only reach the inner ones
// when it lets them through.
func Chain[T any](fn Func[T], ws ...Wrapper[T]) Func[T] {
	for _, w := range ws {
		fn = w.Wrap(fn)
	}

	return fn
}
