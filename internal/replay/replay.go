// Package replay serves queued mock outcomes over real HTTP, so fixture
// files written for client tests can also stand in for a remote API.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/internal/web"
	"github.com/adamwoolhether/courier/internal/web/errs"
	"github.com/adamwoolhether/courier/internal/web/middleware"
	"github.com/adamwoolhether/courier/internal/web/mux"
)

// AdminPrefix is where the registry management routes are mounted.
const AdminPrefix = "/_courier"

// Option configures the replay handler.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used for handler spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

type handlers struct {
	registry *mock.Registry
	origin   string
	logger   *slog.Logger
}

// New returns a handler answering every request from reg. Incoming paths
// are joined onto origin to form the registry resource, so fixtures keep
// the absolute URLs of the API they imitate.
func New(reg *mock.Registry, origin string, optFns ...Option) (http.Handler, error) {
	if reg == nil {
		return nil, errors.New("registry must not be nil")
	}

	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be absolute", origin)
	}

	opts := options{logger: slog.Default()}
	for _, opt := range optFns {
		opt(&opts)
	}

	muxOpts := []mux.Option{
		mux.WithLogger(opts.logger),
		mux.WithMiddleware(
			middleware.Logger(opts.logger),
			middleware.Errors(opts.logger),
			middleware.Panics(opts.logger),
		),
	}
	if opts.tracer != nil {
		muxOpts = append(muxOpts, mux.WithTracer(opts.tracer))
	}

	h := handlers{
		registry: reg,
		origin:   strings.TrimRight(origin, "/"),
		logger:   opts.logger,
	}

	app := mux.New(muxOpts...)

	admin := app.Mount(AdminPrefix)
	admin.Get("/mocks", h.pending)
	admin.Post("/mocks", h.register)
	admin.Delete("/mocks", h.reset)

	app.Handle("", "/", h.replay)

	return app, nil
}

func (h handlers) replay(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	method := request.Method(r.Method)
	resource := h.origin + r.URL.EscapedPath()

	outcome, ok := h.registry.Consume(method, resource)
	if !ok {
		return errs.New(http.StatusNotFound, fmt.Errorf("no mock provided for %s %s", method, resource))
	}

	if outcome.Delay > 0 {
		select {
		case <-time.After(outcome.Delay):
		case <-ctx.Done():
			return errs.New(http.StatusServiceUnavailable, ctx.Err())
		}
	}

	// Transport failures and missing responses can only be imitated by
	// dropping the connection.
	if outcome.Err != nil || outcome.StatusCode == 0 {
		h.logger.Info("dropping connection", "method", method, "resource", resource, "error", outcome.Err)
		panic(http.ErrAbortHandler)
	}

	return web.Respond(ctx, w, outcome.StatusCode, outcome.Header, outcome.Body)
}

type pendingKey struct {
	Method   string `json:"method"`
	Resource string `json:"resource"`
	Queued   int    `json:"queued"`
}

func (h handlers) pending(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
	keys := h.registry.Pending()
	slices.SortFunc(keys, func(a, b mock.Key) int {
		return strings.Compare(a.String(), b.String())
	})

	resp := make([]pendingKey, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, pendingKey{
			Method:   string(k.Method),
			Resource: k.Resource,
			Queued:   h.registry.Len(k.Method, k.Resource),
		})
	}

	return web.RespondJSON(ctx, w, http.StatusOK, resp)
}

func (h handlers) register(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var fx mock.Fixture
	if err := web.Decode(r, &fx); err != nil {
		return err
	}

	if err := h.registry.AddFixture(fx); err != nil {
		return errs.New(http.StatusBadRequest, err)
	}

	return web.RespondJSON(ctx, w, http.StatusCreated, pendingKey{
		Method:   strings.ToUpper(fx.Method),
		Resource: fx.Resource,
		Queued:   h.registry.Len(request.Method(strings.ToUpper(fx.Method)), fx.Resource),
	})
}

func (h handlers) reset(ctx context.Context, w http.ResponseWriter, _ *http.Request) error {
	h.registry.Reset()
	return web.RespondJSON(ctx, w, http.StatusNoContent, nil)
}
