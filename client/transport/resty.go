package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/adamwoolhether/courier/client/task"
)

// Resty is a task.Transport backed by a resty client.
type Resty struct {
	client *resty.Client
}

var _ task.Transport = (*Resty)(nil)

// NewResty wraps rc, or a fresh resty.New() when nil.
func NewResty(rc *resty.Client) *Resty {
	if rc == nil {
		rc = resty.New()
	}
	return &Resty{client: rc}
}

// Submit executes req through resty on a new goroutine.
func (r *Resty) Submit(req *http.Request, done task.Completion) func() {
	ctx, cancel := context.WithCancel(req.Context())

	go func() {
		defer cancel()
		done(r.exec(ctx, req))
	}()

	return cancel
}

func (r *Resty) exec(ctx context.Context, req *http.Request) ([]byte, *task.Response, error) {
	rr := r.client.R().
		SetContext(ctx).
		SetHeaderMultiValues(req.Header)

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("reading request body: %w", err)
		}
		rr.SetBody(body)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, nil, err
	}

	meta := task.ResponseFrom(resp.RawResponse)
	if meta == nil {
		meta = &task.Response{
			StatusCode:  resp.StatusCode(),
			Header:      resp.Header().Clone(),
			ContentType: task.MediaType(resp.Header().Get("Content-Type")),
			URL:         req.URL.String(),
		}
	}

	return resp.Body(), meta, nil
}
