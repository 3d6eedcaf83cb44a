package mock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adamwoolhether/courier/client/request"
)

// Builder assembles an Outcome fluently. Nothing is queued until Add.
type Builder struct {
	registry *Registry
	key      Key
	outcome  Outcome
}

// Mock starts building an outcome for (method, resource). The default is an
// empty 200 response.
func (r *Registry) Mock(method request.Method, resource string) *Builder {
	return &Builder{
		registry: r,
		key:      Key{Method: method, Resource: resource},
		outcome:  Outcome{StatusCode: http.StatusOK, Header: http.Header{}},
	}
}

// Status sets the response status code.
func (b *Builder) Status(code int) *Builder {
	b.outcome.StatusCode = code
	return b
}

// Header sets a response header, replacing earlier values for key.
func (b *Builder) Header(key, value string) *Builder {
	b.outcome.Header.Set(key, value)
	return b
}

// Body sets the raw response body.
func (b *Builder) Body(body []byte) *Builder {
	b.outcome.Body = body
	return b
}

// Text sets a text/plain UTF-8 body.
func (b *Builder) Text(s string) *Builder {
	b.outcome.Body = []byte(s)
	return b.Header("Content-Type", "text/plain; charset=utf-8")
}

// JSON marshals v as the body and sets the JSON content type. It panics if v
// can't be marshaled, which is a bug in the test script.
func (b *Builder) JSON(v any) *Builder {
	body, err := json.Marshal(v)
	if err != nil {
		panic("mock: marshaling JSON body: " + err.Error())
	}
	b.outcome.Body = body
	return b.Header("Content-Type", "application/json")
}

// Fail makes the outcome a transport failure.
func (b *Builder) Fail(err error) *Builder {
	b.outcome.Err = err
	b.outcome.StatusCode = 0
	return b
}

// NoResponse drops the response metadata.
func (b *Builder) NoResponse() *Builder {
	b.outcome.StatusCode = 0
	return b
}

// After delays completion by d.
func (b *Builder) After(d time.Duration) *Builder {
	b.outcome.Delay = d
	return b
}

// Add queues the outcome and returns the registry for further scripting.
func (b *Builder) Add() *Registry {
	b.registry.Register(b.key.Method, b.key.Resource, b.outcome)
	return b.registry
}
