// Package mux routes requests to error-returning handlers wrapped in
// middleware, starting a span per request.
package mux

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// App routes requests to Handlers through its middleware stack.
type App struct {
	mux    *http.ServeMux
	mw     []Middleware
	prefix string
	logger *slog.Logger
	tracer trace.Tracer
}

// Handler is a http.Handler that returns an error.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware defines a signature to chain Handler together.
type Middleware func(handler Handler) Handler

// New creates an App with the given options. A no-op tracer and the
// default slog logger are used unless overridden via options.
func New(optFns ...Option) *App {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.tracer == nil {
		opts.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	return &App{
		mux:    http.NewServeMux(),
		mw:     opts.mw,
		logger: opts.logger,
		tracer: opts.tracer,
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Mount returns an App sharing the same routes, scoped to prefix.
func (a *App) Mount(prefix string) *App {
	return &App{
		mux:    a.mux,
		mw:     slices.Clone(a.mw),
		prefix: a.prefix + "/" + strings.Trim(prefix, "/"),
		logger: a.logger,
		tracer: a.tracer,
	}
}

// Get registers a handler for GET requests at the given path.
func (a *App) Get(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, fn, mw...)
}

// Post registers a handler for POST requests at the given path.
func (a *App) Post(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, fn, mw...)
}

// Delete registers a handler for DELETE requests at the given path.
func (a *App) Delete(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, fn, mw...)
}

// Handle registers handler for method and path. An empty method matches
// every method.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrap(mw, handler)
	handler = wrap(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.startSpan(w, r)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		if !span.SpanContext().TraceID().IsValid() {
			traceID = uuid.New().String()
		}

		v := BaseValues{
			TraceID: traceID,
			Now:     time.Now().UTC(),
			Tracer:  a.tracer,
		}

		r = r.WithContext(setValues(ctx, &v))

		if err := handler(r.Context(), w, r); err != nil {
			a.logger.Error("mux", "handle", err)
		}

		span.SetAttributes(attribute.Int("http.response.status_code", v.StatusCode))
	}

	pattern := a.prefix + path
	if method != "" {
		pattern = method + " " + pattern
	}

	a.mux.HandleFunc(pattern, h)
}

// startSpan extracts any propagated trace context, starts the handler span
// and echoes the trace context into the response headers.
func (a *App) startSpan(w http.ResponseWriter, r *http.Request) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ctx, span := a.tracer.Start(ctx, "mux.handler", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("url.path", r.URL.Path),
	)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

	return ctx, span
}

// wrap middleware around the handler and execute in order given.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			handler = mwFn(handler)
		}
	}

	return handler
}
