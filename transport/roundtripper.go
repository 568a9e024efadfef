package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/pacer/limiter"
)

var (
	ErrNilLimiter   = errors.New("limiter must not be nil")
	ErrThrottled    = errors.New("request throttled")
	ErrContextEnded = errors.New("throttle context ended")
)

const tracerName = "github.com/adamwoolhether/pacer/transport"

// roundTripper is an http.RoundTripper that only hands requests to next
// when its limiter lets them through.
type roundTripper struct {
	limiter *limiter.Limiter[*http.Response]
	next    http.RoundTripper
	logFn   func() *slog.Logger
	tracer  trace.Tracer
}

// NewRoundTripper returns an http.RoundTripper that paces outbound
// requests through l. A waiting limiter delays requests over the limit;
// a non-waiting one answers them with its fallback, and fallback errors
// are wrapped with ErrThrottled. logFn lazily resolves the logger at
// request time and may return nil. A nil next means
// http.DefaultTransport.
func NewRoundTripper(l *limiter.Limiter[*http.Response], logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if l == nil {
		return nil, ErrNilLimiter
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	rt := roundTripper{
		limiter: l,
		next:    next,
		logFn:   logFn,
		tracer:  otel.Tracer(tracerName),
	}

	return &rt, nil
}

func (rt *roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	ctx, span := rt.tracer.Start(ctx, "transport.roundtrip", trace.WithAttributes(
		attribute.String("limiter", rt.limiter.Name()),
		attribute.String("http.method", r.Method),
		attribute.String("url.path", r.URL.Path),
	))
	defer span.End()

	var sent bool
	send := rt.limiter.Wrap(func(ctx context.Context) (*http.Response, error) {
		sent = true
		return rt.next.RoundTrip(r.WithContext(ctx))
	})

	resp, err := send(ctx)
	if sent {
		return resp, err
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "throttled")

		if errors.Is(err, limiter.ErrWaitingFailed) {
			return nil, fmt.Errorf("%w: %w", ErrContextEnded, err)
		}

		if logger := rt.logFn(); logger != nil {
			logger.Info("request throttled", "limiter", rt.limiter.Name(), "method", r.Method, "path", r.URL.Path)
		}
		return nil, fmt.Errorf("%w: %w", ErrThrottled, err)
	}

	if logger := rt.logFn(); logger != nil {
		logger.Info("request answered by fallback", "limiter", rt.limiter.Name(), "method", r.Method, "path", r.URL.Path)
	}

	return resp, nil
}
