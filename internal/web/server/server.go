// Package server runs an http.Handler until its context ends, then drains
// in-flight requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps an [http.Server] with context-driven graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownFuncs   []shutdownFunc
}

// New creates a Server for the given handler. A default host of ":8080",
// sensible timeouts, and the default slog logger are used unless
// overridden via options.
func New(handler http.Handler, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if o.host != "" {
		srv.Addr = o.host
	}
	if o.readTimeout != 0 {
		srv.ReadTimeout = o.readTimeout
	}
	if o.writeTimeout != 0 {
		srv.WriteTimeout = o.writeTimeout
	}

	s := Server{
		srv:             srv,
		shutdownTimeout: 20 * time.Second,
		logger:          slog.Default(),
		shutdownFuncs:   o.shutdownFuncs,
	}

	if o.shutdownTimeout != 0 {
		s.shutdownTimeout = o.shutdownTimeout
	}
	if o.logger != nil {
		s.logger = o.logger
	}

	return &s
}

// Run listens on the configured address and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down
// gracefully. It returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrs := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", ln.Addr().String())
		serverErrs <- s.srv.Serve(ln)
	}()

	select {
	case err := <-serverErrs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}

		s.logger.Info("shutdown complete")

		return nil
	}
}

// Shutdown gracefully shuts down the server. It first runs any registered
// shutdown functions in order, then drains in-flight requests. Callers
// should set a deadline on ctx to bound how long shutdown may take.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, fn := range s.shutdownFuncs {
		if err := fn(ctx); err != nil {
			s.logger.Error("shutdown func", "error", err)
		}
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		s.srv.Close()
		return fmt.Errorf("server didn't stop gracefully: %w", err)
	}

	return nil
}
