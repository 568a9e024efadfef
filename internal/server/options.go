package server

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	host            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownFuncs   []shutdownFunc
}

type shutdownFunc func(ctx context.Context) error

// WithHost sets the address the server listens on. Default is ":9090".
func WithHost(host string) Option {
	return Option(func(opts *options) {
		opts.host = host
	})
}

// WithReadTimeout sets the maximum duration for reading a request.
// Default is 5s.
func WithReadTimeout(d time.Duration) Option {
	return Option(func(opts *options) {
		opts.readTimeout = d
	})
}

// WithWriteTimeout sets the maximum duration for writing a response.
// Default is 10s.
func WithWriteTimeout(d time.Duration) Option {
	return Option(func(opts *options) {
		opts.writeTimeout = d
	})
}

// WithShutdownTimeout bounds how long [Server.Run] waits for in-flight
// requests once its context ends. Default is 5s.
func WithShutdownTimeout(d time.Duration) Option {
	return Option(func(opts *options) {
		opts.shutdownTimeout = d
	})
}

// WithLogger sets the logger used for server lifecycle events.
// Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return Option(func(opts *options) {
		opts.logger = log
	})
}

// WithShutdownFunc registers a function to call during shutdown, before
// the HTTP server stops. Functions run in registration order.
func WithShutdownFunc(fn func(ctx context.Context) error) Option {
	return Option(func(opts *options) {
		opts.shutdownFuncs = append(opts.shutdownFuncs, fn)
	})
}
