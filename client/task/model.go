package task

import (
	"errors"
	"mime"
	"net/http"

	"github.com/adamwoolhether/courier/client/promise"
)

var (
	// ErrAlreadyStarted is returned by Run on every call after the first.
	ErrAlreadyStarted = errors.New("task already started")
	// ErrCancelled is returned by Run when Cancel came first.
	ErrCancelled = errors.New("task cancelled")
)

// Response is the metadata of an HTTP response, without its body.
type Response struct {
	StatusCode int
	Header     http.Header
	// ContentType is the media type of the Content-Type header, stripped of
	// parameters. Empty if the header is absent or unparsable.
	ContentType string
	URL         string
}

// ResponseFrom copies the metadata of resp. It returns nil for a nil resp.
func ResponseFrom(resp *http.Response) *Response {
	if resp == nil {
		return nil
	}

	r := &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header.Clone(),
		ContentType: MediaType(resp.Header.Get("Content-Type")),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		r.URL = resp.Request.URL.String()
	}

	return r
}

// MediaType returns the lower-cased media type of a Content-Type header value.
func MediaType(header string) string {
	if header == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return mediaType
}

// Result is what a completed task resolves with. Transport failures reject
// the promise instead.
type Result struct {
	Body     []byte
	Response *Response
}

// Completion receives the outcome of a submitted request. err is a
// transport-level failure.
type Completion func(body []byte, resp *Response, err error)

// Transport submits prepared requests. Implementations must call done at most
// once per Submit and may call it from any goroutine, including synchronously
// from within Submit. The returned func cancels the submission.
type Transport interface {
	Submit(req *http.Request, done Completion) (cancel func())
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(req *http.Request, done Completion) func()

func (f TransportFunc) Submit(req *http.Request, done Completion) func() {
	return f(req, done)
}

// Runner is a unit of work resolving a promise with a Result.
type Runner interface {
	// ID uniquely identifies the runner in logs and spans.
	ID() string
	// Run starts the work. Only the first call has an effect; later calls
	// return ErrAlreadyStarted.
	Run() error
	// Cancel suppresses completion. It's a no-op once the task has completed.
	Cancel()
	// Promise is settled by the completion hook, at most once.
	Promise() *promise.Promise[Result]
	// Request is the serialized request the runner executes.
	Request() *http.Request
}
