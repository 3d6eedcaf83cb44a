package throttle

import (
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/adamwoolhether/courier/client/task"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle is a task.Transport, using the time/rate token
// bucket limiter to restrict submissions to next.
type throttle struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	next    task.Transport
	logFn   func() *slog.Logger
}
