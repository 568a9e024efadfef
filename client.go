package pacer

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/adamwoolhether/pacer/limiter"
	"github.com/adamwoolhether/pacer/transport"
)

// ClientOption defines optional settings for NewHTTPClient.
type ClientOption func(*clientOpts) error

type clientOpts struct {
	rt        http.RoundTripper
	timeout   *time.Duration
	userAgent string
	limit     *limiter.Config
	limitOpts []limiter.Option
	logger    *slog.Logger
}

// WithTransport replaces the base transport requests are sent on.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientOpts) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout bounds each request, including any time spent waiting on
// the limiter. Default is 10s.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientOpts) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to every request.
func WithUserAgent(header string) ClientOption {
	return func(c *clientOpts) error {
		c.userAgent = header
		return nil
	}
}

// WithLimit paces requests to limit per interval. Requests over the
// limit wait for the next interval.
func WithLimit(limit int, interval time.Duration, opts ...limiter.Option) ClientOption {
	return func(c *clientOpts) error {
		if limit <= 0 || interval <= 0 {
			return fmt.Errorf("limit[%d] and interval[%s] %w", limit, interval, limiter.ErrMustNotBeZero)
		}
		c.limit = &limiter.Config{Limit: limit, Interval: interval, Wait: true}
		c.limitOpts = opts
		return nil
	}
}

// WithLogger sets the logger for throttling events.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientOpts) error {
		c.logger = logger
		return nil
	}
}

// NewHTTPClient returns an *http.Client whose requests are paced by an
// interval limiter when WithLimit is given.
func NewHTTPClient(options ...ClientOption) (*http.Client, error) {
	var o clientOpts
	for _, opt := range options {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	rt := o.rt
	if rt == nil {
		rt = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
			MaxIdleConns: 5,
		}
	}

	if o.userAgent != "" {
		rt = userAgent{value: o.userAgent, base: rt}
	}

	if o.limit != nil {
		opts := append([]limiter.Option{limiter.WithLogger(o.logger)}, o.limitOpts...)
		l, err := limiter.New(*o.limit, limiter.Fallback[*http.Response]{}, opts...)
		if err != nil {
			return nil, fmt.Errorf("client limiter: %w", err)
		}

		logger := o.logger
		rt, err = transport.NewRoundTripper(l, func() *slog.Logger { return logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("client transport: %w", err)
		}
	}

	timeout := 10 * time.Second
	if o.timeout != nil {
		timeout = *o.timeout
	}

	return &http.Client{Transport: rt, Timeout: timeout}, nil
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
