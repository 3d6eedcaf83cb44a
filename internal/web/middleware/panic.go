package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/adamwoolhether/courier/internal/web/errs"
	"github.com/adamwoolhether/courier/internal/web/mux"
)

// Panics turns a handler panic into an internal error and logs its stack.
// http.ErrAbortHandler is re-raised so net/http drops the connection.
func Panics(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					log.Debug("connection aborted", "trace_id", mux.GetValues(ctx).TraceID, "path", r.URL.Path)
					panic(rec)
				}

				log.Error("handler panic", "trace_id", mux.GetValues(ctx).TraceID, "panic", rec, "stack", string(debug.Stack()))
				err = errs.NewInternal(fmt.Errorf("panic: %v", rec))
			}()

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
