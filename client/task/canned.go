package task

import (
	"net/http"
	"sync"
	"time"
)

// Canned completes with pre-supplied data instead of performing I/O.
type Canned struct {
	*base
	body  []byte
	resp  *Response
	err   error
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

var _ Runner = (*Canned)(nil)

// NewCanned returns a runner completing with body, resp and err. resp may be
// nil to model a missing response.
func NewCanned(req *http.Request, body []byte, resp *Response, err error, opts ...Option) *Canned {
	return &Canned{
		base: newBase(req, opts),
		body: body,
		resp: resp,
		err:  err,
	}
}

// After delays completion by d. Zero completes synchronously within Run.
func (c *Canned) After(d time.Duration) *Canned {
	c.delay = d
	return c
}

// Run completes the task, synchronously unless a delay was set.
func (c *Canned) Run() error {
	if err := c.start(); err != nil {
		return err
	}

	if c.delay <= 0 {
		c.complete(c.body, c.resp, c.err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = time.AfterFunc(c.delay, func() {
		c.complete(c.body, c.resp, c.err)
	})

	return nil
}

// Cancel stops a pending delayed completion.
func (c *Canned) Cancel() {
	if !c.cancel() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}
