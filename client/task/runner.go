package task

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/adamwoolhether/courier/client/promise"
)

type state int32

const (
	stateCreated state = iota
	stateRunning
	stateCompleted
	stateCancelled
)

// Option is a functional option for runners.
type Option func(*options)

type options struct {
	logger *slog.Logger
	id     string
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithID overrides the generated runner ID.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// base holds the lifecycle shared by every runner. complete is the single
// writer to the promise.
type base struct {
	id      string
	req     *http.Request
	state   atomic.Int32
	promise *promise.Promise[Result]
	logger  *slog.Logger
}

func newBase(req *http.Request, optFns []Option) *base {
	opts := options{logger: slog.Default()}
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.id == "" {
		opts.id = uuid.NewString()
	}

	return &base{
		id:      opts.id,
		req:     req,
		promise: promise.New[Result](),
		logger:  opts.logger.With("task", opts.id),
	}
}

func (b *base) ID() string { return b.id }

func (b *base) Promise() *promise.Promise[Result] { return b.promise }

func (b *base) Request() *http.Request { return b.req }

// start moves the runner from created to running.
func (b *base) start() error {
	if b.state.CompareAndSwap(int32(stateCreated), int32(stateRunning)) {
		return nil
	}
	if state(b.state.Load()) == stateCancelled {
		return ErrCancelled
	}
	return ErrAlreadyStarted
}

// cancel reports whether this call moved the runner to cancelled.
func (b *base) cancel() bool {
	for {
		cur := state(b.state.Load())
		if cur == stateCompleted || cur == stateCancelled {
			return false
		}
		if b.state.CompareAndSwap(int32(cur), int32(stateCancelled)) {
			b.logger.Debug("task cancelled")
			return true
		}
	}
}

// complete settles the promise unless the runner was cancelled or already
// completed. Transport errors reject the promise unmodified.
func (b *base) complete(body []byte, resp *Response, err error) {
	if !b.state.CompareAndSwap(int32(stateRunning), int32(stateCompleted)) {
		b.logger.Debug("discarding late completion", "cancelled", state(b.state.Load()) == stateCancelled)
		return
	}

	if err != nil {
		b.logger.Debug("task failed", "error", err)
		b.promise.Reject(err)
		return
	}

	b.promise.Resolve(Result{Body: body, Response: resp})
}
