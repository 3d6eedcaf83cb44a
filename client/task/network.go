package task

import (
	"net/http"
	"sync"
)

// Network runs a request through a Transport.
type Network struct {
	*base
	transport Transport

	mu         sync.Mutex
	cancelFunc func()
}

var _ Runner = (*Network)(nil)

// NewNetwork returns a runner submitting req to transport on Run.
func NewNetwork(req *http.Request, transport Transport, opts ...Option) *Network {
	return &Network{
		base:      newBase(req, opts),
		transport: transport,
	}
}

// Run submits the request. The transport's completion is forwarded to the
// promise unless the runner is cancelled first.
func (n *Network) Run() error {
	if err := n.start(); err != nil {
		return err
	}

	n.logger.Debug("submitting request", "method", n.req.Method, "url", n.req.URL.String())

	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelFunc = n.transport.Submit(n.req, n.complete)

	return nil
}

// Cancel stops the submission. A completion arriving afterwards is discarded.
func (n *Network) Cancel() {
	if !n.cancel() {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancelFunc != nil {
		n.cancelFunc()
	}
}
