// Package transport provides [task.Transport] implementations backed by
// [net/http] and by [github.com/go-resty/resty/v2].
//
// [HTTP] runs every submission on its own goroutine, optionally bounded by
// a concurrency limit, and can be shut down gracefully:
//
//	tr := transport.NewHTTP(http.DefaultClient, transport.WithMaxInFlight(8))
//	defer tr.Shutdown(ctx)
package transport
