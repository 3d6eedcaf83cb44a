package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/adamwoolhether/courier/client/task"
)

// ErrShutdown is delivered to completions submitted after Shutdown.
var ErrShutdown = errors.New("transport shut down")

// Option is a functional option for transports.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	maxInFlight int
}

// WithLogger sets the logger used for body cleanup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxInFlight caps the number of concurrently executing requests.
// Submissions over the limit wait for a slot. n <= 0 means unlimited.
func WithMaxInFlight(n int) Option {
	return func(o *options) {
		o.maxInFlight = n
	}
}

// HTTP is a task.Transport executing requests with an *http.Client.
type HTTP struct {
	client   *http.Client
	logger   *slog.Logger
	sem      chan struct{}
	mu       sync.Mutex
	wg       sync.WaitGroup
	shutdown bool
}

var _ task.Transport = (*HTTP)(nil)

// NewHTTP returns an HTTP transport using hc, or http.DefaultClient when nil.
func NewHTTP(hc *http.Client, optFns ...Option) *HTTP {
	opts := options{logger: slog.Default()}
	for _, opt := range optFns {
		opt(&opts)
	}

	if hc == nil {
		hc = http.DefaultClient
	}

	t := &HTTP{
		client: hc,
		logger: opts.logger,
	}
	if opts.maxInFlight > 0 {
		t.sem = make(chan struct{}, opts.maxInFlight)
	}

	return t
}

// Submit executes req in the background and calls done exactly once with the
// full body, or with the transport error. Cancelling aborts the request
// context; done still fires, and the caller is expected to ignore it.
func (t *HTTP) Submit(req *http.Request, done task.Completion) func() {
	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		done(nil, nil, ErrShutdown)
		return func() {}
	}
	t.wg.Add(1)
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(req.Context())

	go func() {
		defer func() {
			cancel()
			t.wg.Done()
		}()

		if t.sem != nil {
			select {
			case t.sem <- struct{}{}:
				defer func() {
					<-t.sem
				}()
			case <-ctx.Done():
				done(nil, nil, ctx.Err())
				return
			}
		}

		done(t.exec(req.WithContext(ctx)))
	}()

	return cancel
}

func (t *HTTP) exec(req *http.Request) ([]byte, *task.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, nil, err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading body: %w", err)
	}

	return body, task.ResponseFrom(resp), nil
}

// Shutdown rejects new submissions and waits for in-flight ones to finish
// or for ctx to end.
func (t *HTTP) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.shutdown = true
	t.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight requests: %w", ctx.Err())
	}
}
