// Package middleware provides the logging, error rendering and panic
// recovery middleware applied to every route.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/courier/internal/web/mux"
)

// Logger writes one access line per request once the handler returns. The
// level follows the recorded status: 5xx logs at Error, 4xx at Warn.
func Logger(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := mux.GetValues(ctx)

			err := handler(ctx, w, r)

			level := slog.LevelInfo
			switch {
			case v.StatusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.StatusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			log.LogAttrs(ctx, level, "request",
				slog.String("trace_id", v.TraceID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.RequestURI()),
				slog.Int("status", v.StatusCode),
				slog.Duration("took", time.Since(v.Now)),
				slog.String("remote_addr", r.RemoteAddr),
			)

			return err
		}

		return h
	}

	return m
}
