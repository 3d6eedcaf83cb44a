package client

import (
	"github.com/adamwoolhether/courier/client/promise"
)

// Ride is the handle to one dispatch: a promise of its decoded result that
// can also be cancelled. After Cancel the promise stays pending.
type Ride[T any] struct {
	*promise.Promise[T]
	id     string
	cancel func()
}

// ID returns the task ID, matching the "task" attribute in logs and the
// courier.task_id span attribute.
func (r *Ride[T]) ID() string { return r.id }

// Cancel stops the dispatch. It is safe to call more than once.
func (r *Ride[T]) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

func mapRide[A, B any](r *Ride[A], fn func(A) (B, error)) *Ride[B] {
	return &Ride[B]{
		Promise: promise.Map(r.Promise, fn),
		id:      r.id,
		cancel:  r.cancel,
	}
}
