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

// WithHost sets the host address the server listens on. Default is ":8080".
func WithHost(host string) Option {
	return func(opts *options) {
		opts.host = host
	}
}

// WithReadTimeout sets the maximum duration for reading the entire
// request, including the body. Default is 5s.
func WithReadTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration before timing out writes of
// the response. Default is 30s, leaving room for delayed fixtures.
func WithWriteTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.writeTimeout = d
	}
}

// WithShutdownTimeout bounds how long Serve waits for in-flight requests
// once its context ends. Default is 20s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.shutdownTimeout = d
	}
}

// WithLogger sets the logger used for server lifecycle events.
// Default is slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

// WithShutdownFunc registers a function to call during graceful shutdown,
// before the HTTP server is stopped. Multiple shutdown functions are
// called in the order they were registered.
func WithShutdownFunc(fn func(ctx context.Context) error) Option {
	return func(opts *options) {
		opts.shutdownFuncs = append(opts.shutdownFuncs, fn)
	}
}
