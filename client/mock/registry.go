package mock

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/client/task"
)

// Mode decides when the dispatcher consults a Registry.
type Mode int

const (
	// Off never consults the registry.
	Off Mode = iota
	// Partial uses a queued outcome when one exists, else real I/O.
	Partial
	// Strict requires a queued outcome for every dispatch.
	Strict
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Partial:
		return "partial"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "off", "":
		return Off, nil
	case "partial":
		return Partial, nil
	case "strict":
		return Strict, nil
	}
	return Off, fmt.Errorf("unknown mock mode %q", s)
}

// Outcome is one scripted result. A zero StatusCode with a nil Err models a
// dispatch that produced no response metadata.
type Outcome struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Err        error
	Delay      time.Duration
}

// Response returns the response metadata the outcome describes, or nil.
func (o Outcome) Response(resource string) *task.Response {
	if o.StatusCode == 0 {
		return nil
	}

	header := o.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	return &task.Response{
		StatusCode:  o.StatusCode,
		Header:      header,
		ContentType: task.MediaType(header.Get("Content-Type")),
		URL:         resource,
	}
}

// Key identifies a queue.
type Key struct {
	Method   request.Method
	Resource string
}

// String renders the key as "METHOD resource".
func (k Key) String() string {
	return string(k.Method) + " " + k.Resource
}

// ResourceKey normalizes resource the way dispatched requests are keyed:
// query and fragment dropped, path escaped. Relative resources stay
// relative. Unparsable resources are returned unchanged.
func ResourceKey(resource string) string {
	u, err := url.Parse(resource)
	if err != nil {
		return resource
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

func keyFor(method request.Method, resource string) Key {
	return Key{
		Method:   request.Method(strings.ToUpper(string(method))),
		Resource: ResourceKey(resource),
	}
}

// Registry maps keys to FIFO queues of outcomes. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	queues map[Key][]Outcome
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{queues: map[Key][]Outcome{}}
}

// Register appends outcome to the queue of (method, resource). The resource
// is normalized with ResourceKey, so a query on it is ignored.
func (r *Registry) Register(method request.Method, resource string, outcome Outcome) {
	key := keyFor(method, resource)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.queues[key] = append(r.queues[key], outcome)
}

// Consume pops the head of the queue of (method, resource).
func (r *Registry) Consume(method request.Method, resource string) (Outcome, bool) {
	key := keyFor(method, resource)

	r.mu.Lock()
	defer r.mu.Unlock()

	queue := r.queues[key]
	if len(queue) == 0 {
		return Outcome{}, false
	}

	outcome := queue[0]
	if len(queue) == 1 {
		delete(r.queues, key)
	} else {
		r.queues[key] = queue[1:]
	}

	return outcome, true
}

// Len returns the number of outcomes queued for (method, resource).
func (r *Registry) Len(method request.Method, resource string) int {
	key := keyFor(method, resource)

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues[key])
}

// Pending lists every key that still has queued outcomes.
func (r *Registry) Pending() []Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]Key, 0, len(r.queues))
	for k := range r.queues {
		keys = append(keys, k)
	}
	return keys
}

// Reset drops every queued outcome.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queues = map[Key][]Outcome{}
}
