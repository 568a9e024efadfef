package transport

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/pacer/limiter"
)

// Middleware limits the requests reaching a handler with l. Requests
// over the limit get 429 Too Many Requests with a Retry-After of one
// interval, or wait their turn when l is configured to wait. A waiting
// request whose context ends first gets 503 Service Unavailable.
// The result of l's fallback is discarded. log may be nil.
func Middleware(l *limiter.Limiter[struct{}], log *slog.Logger) (func(http.Handler) http.Handler, error) {
	if l == nil {
		return nil, ErrNilLimiter
	}

	retryAfter := strconv.Itoa(int(math.Ceil(l.Config().Interval.Seconds())))

	m := func(next http.Handler) http.Handler {
		h := func(w http.ResponseWriter, r *http.Request) {
			var served bool
			serve := l.Wrap(func(ctx context.Context) (struct{}, error) {
				served = true
				next.ServeHTTP(w, r.WithContext(ctx))
				return struct{}{}, nil
			})

			_, err := serve(r.Context())
			if served {
				return
			}

			switch {
			case errors.Is(err, limiter.ErrWaitingFailed):
				if log != nil {
					log.Info("request abandoned while waiting", "limiter", l.Name(), "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)
				}
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)

			default:
				if log != nil {
					log.Info("request throttled", "limiter", l.Name(), "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr)
				}
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			}
		}

		return http.HandlerFunc(h)
	}

	return m, nil
}
