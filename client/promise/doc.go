// Package promise provides a single-assignment deferred value.
//
// A [Promise] starts pending and settles exactly once, either resolved with
// a value or rejected with an error. Subscribers registered with
// [Promise.Then], [Promise.Fail] or [Promise.Always] run in registration
// order once the promise settles; subscribers registered afterwards run
// immediately with the stored outcome:
//
//	p := promise.New[int]()
//	p.Then(func(v int) { fmt.Println("got", v) })
//	p.Resolve(42)      // prints "got 42"
//	p.Resolve(7)       // discarded, returns false
//
// [Map] derives a new promise from a settled value, and [Promise.Wait]
// blocks until settlement or context cancellation.
package promise
