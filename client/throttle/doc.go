// Package throttle rate-limits submissions to a [task.Transport] using a
// token-bucket algorithm from [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing transport with [NewTransport]:
//
//	tr, err := throttle.NewTransport(
//		10, // submissions per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		transport.NewHTTP(nil),
//	)
//
// When the rate limit is exceeded, submissions wait in the background
// until a token becomes available or the request context ends. Submit
// itself never blocks the caller.
package throttle
