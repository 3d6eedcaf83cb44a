package mux

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type ctxKey int

const (
	base ctxKey = iota + 1
)

// BaseValues represents values that are shared across all requests for logging.
type BaseValues struct {
	TraceID    string
	Now        time.Time
	Tracer     trace.Tracer
	StatusCode int
}

// SetStatusCode records the status code written for the request.
func SetStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

// GetValues retrieves the BaseValues from the given context.
func GetValues(ctx context.Context) *BaseValues {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return &BaseValues{
			TraceID: uuid.Nil.String(),
			Tracer:  noop.NewTracerProvider().Tracer(""),
			Now:     time.Now(),
		}
	}

	return v
}

func setValues(ctx context.Context, v *BaseValues) context.Context {
	return context.WithValue(ctx, base, v)
}
