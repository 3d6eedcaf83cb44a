package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/adamwoolhether/courier/client/task"
)

// NewTransport returns a task.Transport that delays submissions to next
// using a token bucket rate limiter. logFn lazily resolves the logger at
// submit time, making option ordering irrelevant. A nil-returning logFn
// skips the exhaustion logging.
func NewTransport(rps, burst int, logFn func() *slog.Logger, next task.Transport) (task.Transport, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

// Submit waits for a token in the background, then hands req to the next
// transport. A wait failure completes with an error wrapping ErrWaitingFailed
// or ErrContextEnded.
func (t *throttle) Submit(req *http.Request, done task.Completion) func() {
	if t.limiter.Allow() {
		return t.next.Submit(req, done)
	}

	ctx, cancel := context.WithCancel(req.Context())

	// finish releases ctx once the request has completed.
	finish := func(body []byte, resp *task.Response, err error) {
		done(body, resp, err)
		cancel()
	}

	var (
		mu         sync.Mutex
		nextCancel func()
	)

	logger := t.logFn()
	if logger != nil {
		logger.Info("throttle tokens exhausted", "rate", t.rps, "burst", t.burst, "path", req.URL.Path)
	}

	go func() {
		start := time.Now()
		err := t.limiter.Wait(ctx)
		waited := time.Since(start)

		if logger != nil {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", t.rps, "burst", t.burst)
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				finish(nil, nil, fmt.Errorf("%w: %w", ErrContextEnded, ctxErr))
				return
			}
			finish(nil, nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err))
			return
		}

		c := t.next.Submit(req.WithContext(ctx), finish)

		mu.Lock()
		nextCancel = c
		mu.Unlock()
	}()

	return func() {
		cancel()

		mu.Lock()
		c := nextCancel
		mu.Unlock()

		if c != nil {
			c()
		}
	}
}
