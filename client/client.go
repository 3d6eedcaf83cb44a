package client

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/courier/client/errs"
	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/client/promise"
	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/client/task"
	"github.com/adamwoolhether/courier/client/throttle"
	"github.com/adamwoolhether/courier/client/transport"
)

const tracerName = "github.com/adamwoolhether/courier/client"

// Client dispatches Requestables and validates their responses.
// Every dispatch runs on its own task; Send never blocks on I/O.
type Client struct {
	transport task.Transport
	http      *transport.HTTP // nil when a custom task transport is used
	logger    *slog.Logger
	tracer    trace.Tracer
	mocks     *mock.Registry
	mode      mock.Mode
	buildOpts []request.BuildOption
}

// Build returns a Client configured by optFns.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		logger: slog.Default(),
		mocks:  opts.mocks,
		mode:   opts.mockMode,
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	tp := opts.tracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	client.tracer = tp.Tracer(tracerName)

	tr, err := client.buildTransport(opts)
	if err != nil {
		return nil, err
	}
	client.transport = tr

	headers := make(map[string]string, len(opts.headers)+1)
	maps.Copy(headers, opts.headers)
	if opts.userAgent != "" {
		headers["User-Agent"] = opts.userAgent
	}
	if len(headers) > 0 {
		client.buildOpts = append(client.buildOpts, request.WithDefaultHeaders(headers))
	}
	if opts.baseURL != "" {
		client.buildOpts = append(client.buildOpts, request.WithBaseURL(opts.baseURL))
	}

	return client, nil
}

func (c *Client) buildTransport(opts options) (task.Transport, error) {
	var tr task.Transport

	if opts.taskTransport != nil {
		tr = opts.taskTransport
	} else {
		hc := &http.Client{}
		if opts.client != nil {
			copied := *opts.client
			hc = &copied
		}

		if opts.timeout != nil {
			hc.Timeout = *opts.timeout
		}

		if opts.noFollowRedirects {
			hc.CheckRedirect = func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}
		}

		switch {
		case opts.rt != nil:
			hc.Transport = opts.rt
		case hc.Transport == nil:
			hc.Transport = http.DefaultTransport
		}

		c.http = transport.NewHTTP(hc,
			transport.WithLogger(c.logger),
			transport.WithMaxInFlight(opts.maxInFlight),
		)
		tr = c.http
	}

	if opts.throttle != nil {
		throttled, err := throttle.NewTransport(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return c.logger }, tr)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		tr = throttled
	}

	return tr, nil
}

// Send serializes r and dispatches it. Serialization failures are returned
// synchronously and no task is created. Everything else, including a missing
// mock in strict mode, is delivered through the returned Ride.
func (c *Client) Send(ctx context.Context, r request.Requestable, opts ...SendOption) (*Ride[task.Result], error) {
	var settings sendOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, fmt.Errorf("applying send option: %w", err)
		}
	}

	return c.send(ctx, r, settings)
}

func (c *Client) send(ctx context.Context, r request.Requestable, settings sendOpts) (*Ride[task.Result], error) {
	req, err := request.Build(ctx, r, c.buildOpts...)
	if err != nil {
		return nil, err
	}

	resource := resourceOf(req)
	outcome, mocked, err := c.lookupMock(r.Method(), resource, r.Message().Resource)
	if err != nil {
		c.logger.Debug("no mock provided", "method", r.Method(), "resource", resource)
	}

	spanCtx, span := c.tracer.Start(ctx, "courier.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(r.Method())),
			attribute.String("url.full", req.URL.String()),
			attribute.Bool("courier.mocked", mocked),
		),
	)
	req = req.WithContext(spanCtx)
	otel.GetTextMapPropagator().Inject(spanCtx, propagation.HeaderCarrier(req.Header))

	runOpts := []task.Option{task.WithLogger(c.logger)}

	var runner task.Runner
	switch {
	case err != nil:
		runner = task.NewCanned(req, nil, nil, err, runOpts...)
	case mocked:
		runner = task.NewCanned(req, outcome.Body, outcome.Response(resource), outcome.Err, runOpts...).After(outcome.Delay)
	default:
		runner = task.NewNetwork(req, c.transport, runOpts...)
	}

	span.SetAttributes(attribute.String("courier.task_id", runner.ID()))
	c.logger.Debug("dispatching request", "task", runner.ID(), "method", r.Method(), "resource", resource, "mocked", mocked)

	var once sync.Once
	endSpan := func(res task.Result, err error) {
		once.Do(func() {
			if res.Response != nil {
				span.SetAttributes(attribute.Int("http.response.status_code", res.Response.StatusCode))
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		})
	}

	validated := promise.Map(runner.Promise(), func(res task.Result) (task.Result, error) {
		err := settings.validate(res)
		endSpan(res, err)
		return res, err
	})
	validated.Fail(func(err error) {
		endSpan(task.Result{}, err)
	})

	ride := &Ride[task.Result]{
		Promise: validated,
		id:      runner.ID(),
		cancel: func() {
			runner.Cancel()
			once.Do(func() {
				span.SetStatus(codes.Error, "cancelled")
				span.End()
			})
		},
	}

	if err := runner.Run(); err != nil {
		endSpan(task.Result{}, err)
		return nil, fmt.Errorf("running task: %w", err)
	}

	return ride, nil
}

// lookupMock consults the registry according to the mock mode. The resolved
// resource is tried first, then the Message resource as written, so mocks
// registered under a path relative to the base URL still match. The error is
// NoMockProvided when strict mode finds nothing queued.
func (c *Client) lookupMock(method request.Method, resource, written string) (mock.Outcome, bool, error) {
	if c.mode == mock.Off || c.mocks == nil {
		return mock.Outcome{}, false, nil
	}

	if outcome, ok := c.mocks.Consume(method, resource); ok {
		return outcome, true, nil
	}
	if alt := mock.ResourceKey(written); alt != resource {
		if outcome, ok := c.mocks.Consume(method, alt); ok {
			return outcome, true, nil
		}
	}

	if c.mode == mock.Strict {
		return mock.Outcome{}, false, errs.New(errs.NoMockProvided, fmt.Errorf("%s %s", method, resource))
	}

	return mock.Outcome{}, false, nil
}

// Close stops the default transport and waits for in-flight requests. It is
// a no-op for custom task transports.
func (c *Client) Close(ctx context.Context) error {
	if c.http == nil {
		return nil
	}

	if err := c.http.Shutdown(ctx); err != nil {
		c.logger.Error("closing transport", "error", err)
		return fmt.Errorf("closing transport: %w", err)
	}

	return nil
}

// resourceOf is the mock key for req: its absolute URL without query or
// fragment.
func resourceOf(req *http.Request) string {
	return mock.ResourceKey(req.URL.String())
}
