package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/adamwoolhether/courier/internal/web"
	"github.com/adamwoolhether/courier/internal/web/errs"
	"github.com/adamwoolhether/courier/internal/web/mux"
)

// Errors renders handler errors as JSON. Field errors answer 422, *errs.Error
// answers its own code and anything else becomes an obscured 500.
func Errors(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			reqLog := log.With("trace_id", mux.GetValues(ctx).TraceID, "method", r.Method, "path", r.URL.Path)

			if fieldErrs, ok := errors.AsType[errs.FieldErrors](err); ok {
				reqLog.Warn("invalid request", "fields", fieldErrs.Fields())
				return web.RespondJSON(ctx, w, http.StatusUnprocessableEntity, fieldErrs)
			}

			appErr, ok := errors.AsType[*errs.Error](err)
			if !ok {
				appErr = errs.NewInternal(err)
			}

			if appErr.Code >= http.StatusInternalServerError {
				reqLog.Error(err.Error(), "source_err_file", path.Base(appErr.FileName), "source_err_func", path.Base(appErr.FuncName))
			} else {
				reqLog.Warn(err.Error(), "code", appErr.Code)
			}

			resp := *appErr
			if resp.InnerErr {
				resp.Message = http.StatusText(resp.Code)
			}

			return web.RespondJSON(ctx, w, resp.Code, &resp)
		}

		return h
	}

	return m
}
