package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/client/task"
	"github.com/adamwoolhether/courier/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	baseURL           string
	headers           map[string]string
	taskTransport     task.Transport
	mocks             *mock.Registry
	mockMode          mock.Mode
	tracerProvider    trace.TracerProvider
	maxInFlight       int
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTaskTransport replaces the default net/http backed transport, for
// example with transport.NewResty. WithClient, WithTransport, WithTimeout,
// WithNoFollowRedirects and WithMaxInFlight only affect the default transport.
func WithTaskTransport(tr task.Transport) Option {
	return func(c *options) error {
		if tr == nil {
			return errors.New("task transport must not be nil")
		}
		c.taskTransport = tr
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithBaseURL resolves relative Message resources against base.
func WithBaseURL(base string) Option {
	return func(c *options) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parsing base url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url %q must be absolute", base)
		}
		c.baseURL = base
		return nil
	}
}

// WithHeaders sets default headers sent with every request. A Message's own
// headers take precedence.
func WithHeaders(headers map[string]string) Option {
	return func(c *options) error {
		c.headers = headers
		return nil
	}
}

// WithMocks substitutes outcomes queued in reg for network I/O according to
// mode. Intended for test wiring only.
func WithMocks(reg *mock.Registry, mode mock.Mode) Option {
	return func(c *options) error {
		if reg == nil && mode != mock.Off {
			return errors.New("mock registry must not be nil")
		}
		c.mocks = reg
		c.mockMode = mode
		return nil
	}
}

// WithTracerProvider records a client span per dispatch. Tracing is a no-op
// by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		c.tracerProvider = tp
		return nil
	}
}

// WithMaxInFlight caps concurrently executing requests on the default
// transport. n <= 0 means unlimited.
func WithMaxInFlight(n int) Option {
	return func(c *options) error {
		c.maxInFlight = n
		return nil
	}
}

// SendOption is a functional option for [Client.Send] and the typed
// variants.
type SendOption func(*sendOpts) error

type sendOpts struct {
	statusCodes  []int
	contentTypes []string
	useJSONNum   bool
}

// WithStatusCodes replaces the default 200-299 acceptable status codes.
func WithStatusCodes(codes ...int) SendOption {
	return func(opts *sendOpts) error {
		if len(codes) == 0 {
			return errors.New("at least one status code is required")
		}
		for _, code := range codes {
			if code < 100 || code > 599 {
				return fmt.Errorf("invalid status code %d", code)
			}
		}
		opts.statusCodes = codes
		return nil
	}
}

// WithContentTypes declares the acceptable response media types. Wildcards
// "*/*", "type/*" and suffix patterns such as "application/*+json" are
// supported. Declaring any makes a missing Content-Type header an error.
func WithContentTypes(types ...string) SendOption {
	return func(opts *sendOpts) error {
		for _, ct := range types {
			if ct == "" {
				return errors.New("cannot use empty content type")
			}
		}
		opts.contentTypes = types
		return nil
	}
}

// WithJSONNumb makes the JSON decoders use json.Number for numbers instead
// of float64.
func WithJSONNumb() SendOption {
	return func(opts *sendOpts) error {
		opts.useJSONNum = true
		return nil
	}
}
