package promise

import (
	"context"
	"errors"
	"sync"
)

// ErrNilRejection replaces a nil error passed to [Promise.Reject].
var ErrNilRejection = errors.New("promise rejected with nil error")

// State is the settlement state of a [Promise].
type State int32

const (
	Pending State = iota
	Resolved
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Promise is a write-once deferred value. The zero value is not usable; create
// one with [New].
type Promise[T any] struct {
	mu        sync.Mutex
	state     State
	value     T
	err       error
	callbacks []func(T, error)
	done      chan struct{}
}

// New returns a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// ResolvedWith returns a promise already resolved with v.
func ResolvedWith[T any](v T) *Promise[T] {
	p := New[T]()
	p.Resolve(v)
	return p
}

// RejectedWith returns a promise already rejected with err.
func RejectedWith[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

// Resolve settles the promise with v. It reports false, leaving the stored
// outcome untouched, if the promise has already settled.
func (p *Promise[T]) Resolve(v T) bool {
	return p.settle(Resolved, v, nil)
}

// Reject settles the promise with err. It reports false, leaving the stored
// outcome untouched, if the promise has already settled.
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}

	var zero T
	return p.settle(Rejected, zero, err)
}

func (p *Promise[T]) settle(state State, v T, err error) bool {
	p.mu.Lock()
	if p.state != Pending {
		p.mu.Unlock()
		return false
	}

	p.state = state
	p.value = v
	p.err = err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}

	return true
}

// State returns the current settlement state.
func (p *Promise[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done returns a channel closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Always registers fn to run with the outcome once the promise settles.
// err is nil on resolution.
func (p *Promise[T]) Always(fn func(T, error)) *Promise[T] {
	p.mu.Lock()
	if p.state == Pending {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return p
	}
	v, err := p.value, p.err
	p.mu.Unlock()

	fn(v, err)
	return p
}

// Then registers fn to run if the promise resolves.
func (p *Promise[T]) Then(fn func(T)) *Promise[T] {
	return p.Always(func(v T, err error) {
		if err == nil {
			fn(v)
		}
	})
}

// Fail registers fn to run if the promise is rejected.
func (p *Promise[T]) Fail(fn func(error)) *Promise[T] {
	return p.Always(func(_ T, err error) {
		if err != nil {
			fn(err)
		}
	})
}

// Wait blocks until the promise settles or ctx ends. A ctx error leaves the
// promise pending.
func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Map returns a promise settled with fn applied to p's value. A rejection of p
// propagates unchanged and fn is not called.
func Map[A, B any](p *Promise[A], fn func(A) (B, error)) *Promise[B] {
	out := New[B]()
	p.Always(func(v A, err error) {
		if err != nil {
			out.Reject(err)
			return
		}

		mapped, err := fn(v)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(mapped)
	})

	return out
}
