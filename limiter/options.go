package limiter

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/pacer/clock"
)

// Option configures a [Limiter].
type Option func(*options) error

type options struct {
	name    string
	source  clock.Source
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics Metrics
}

// WithName labels the limiter in logs, spans and metrics. A random
// name is generated when unset.
func WithName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.New("name must not be empty")
		}
		o.name = name
		return nil
	}
}

// WithSource sets the time source of the limiter's clock.
func WithSource(src clock.Source) Option {
	return func(o *options) error {
		if src == nil {
			return errors.New("source must not be nil")
		}
		o.source = src
		return nil
	}
}

// WithLogger enables logging of rejected and delayed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithTracer records a span for every wait on the limiter. A no-op
// tracer is used by default.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithMetrics reports call outcomes to m.
func WithMetrics(m Metrics) Option {
	return func(o *options) error {
		if m == nil {
			return errors.New("metrics must not be nil")
		}
		o.metrics = m
		return nil
	}
}
