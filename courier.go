// Package courier builds clients that dispatch declarative HTTP requests and
// resolve their results through promises.
package courier

import (
	"net"
	"net/http"
	"time"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/client/mock"
)

// NewClient instantiates a new *client.Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewMockClient returns a client that never touches the network: every
// request is answered from reg, and requests with nothing queued fail with
// NoMockProvided.
func NewMockClient(reg *mock.Registry, opts ...client.Option) (*client.Client, error) {
	return client.Build(append(opts, client.WithMocks(reg, mock.Strict))...)
}

// NewTransport returns an *http.Transport with a bounded dial timeout and a
// small idle pool, suitable for client.WithTransport in short-lived tools.
func NewTransport(dialTimeout time.Duration, maxIdleConns int) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
		MaxIdleConns:        maxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
