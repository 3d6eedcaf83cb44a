// Package task turns a serialized request into an asynchronous, cancellable
// unit of work whose outcome is delivered through a [promise.Promise].
//
// A [Network] runner hands the request to a [Transport] and forwards its
// single-shot completion. A [Canned] runner completes with pre-supplied
// bytes, response and error without any I/O, which makes dispatch
// deterministic under test. Both share the same lifecycle: Run once,
// Cancel at any time, and after Cancel the promise never settles.
package task
