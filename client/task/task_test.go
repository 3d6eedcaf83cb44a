package task_test

import (
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/adamwoolhether/courier/client/promise"
	"github.com/adamwoolhether/courier/client/task"
)

// fakeTransport records submissions and lets the test fire completions.
type fakeTransport struct {
	mu        sync.Mutex
	submitted int
	cancelled int
	done      task.Completion
}

func (f *fakeTransport) Submit(_ *http.Request, done task.Completion) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	f.done = done
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancelled++
	}
}

func (f *fakeTransport) fire(body []byte, resp *task.Response, err error) {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	done(body, resp, err)
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://example.com/items", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	return req
}

func TestNetwork_Completes(t *testing.T) {
	ft := &fakeTransport{}
	runner := task.NewNetwork(newRequest(t), ft)

	if runner.ID() == "" {
		t.Error("exp generated id")
	}
	if err := runner.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	if runner.Promise().State() != promise.Pending {
		t.Fatal("exp pending before the transport completes")
	}

	ft.fire([]byte("ok"), &task.Response{StatusCode: http.StatusOK}, nil)

	res, err := runner.Promise().Wait(t.Context())
	if err != nil {
		t.Fatalf("exp resolution, got %v", err)
	}
	if string(res.Body) != "ok" || res.Response.StatusCode != http.StatusOK {
		t.Errorf("unexpected result: %+v", res)
	}

	// A second callback from a misbehaving transport is discarded.
	ft.fire([]byte("late"), nil, errors.New("late"))
	res, err = runner.Promise().Wait(t.Context())
	if err != nil || string(res.Body) != "ok" {
		t.Errorf("exp first outcome intact, got %q %v", res.Body, err)
	}

	runner.Cancel()
	if ft.cancelled != 0 {
		t.Error("exp cancel after completion to be a no-op")
	}
}

func TestNetwork_TransportErrorRejectsUnmodified(t *testing.T) {
	ft := &fakeTransport{}
	runner := task.NewNetwork(newRequest(t), ft)
	if err := runner.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}

	cause := errors.New("connection reset")
	ft.fire(nil, nil, cause)

	if _, err := runner.Promise().Wait(t.Context()); err != cause {
		t.Errorf("exp transport error unmodified, got %v", err)
	}
}

func TestNetwork_CancelSuppressesLateCompletion(t *testing.T) {
	ft := &fakeTransport{}
	runner := task.NewNetwork(newRequest(t), ft)
	if err := runner.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}

	runner.Cancel()
	runner.Cancel()
	if ft.cancelled != 1 {
		t.Errorf("exp transport cancel once, got %d", ft.cancelled)
	}

	ft.fire([]byte("late"), &task.Response{StatusCode: http.StatusOK}, nil)

	if state := runner.Promise().State(); state != promise.Pending {
		t.Errorf("exp promise to stay pending after cancel, got %s", state)
	}
}

func TestRunner_RunOnce(t *testing.T) {
	ft := &fakeTransport{}
	runner := task.NewNetwork(newRequest(t), ft)

	if err := runner.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := runner.Run(); !errors.Is(err, task.ErrAlreadyStarted) {
		t.Errorf("exp ErrAlreadyStarted, got %v", err)
	}
	if ft.submitted != 1 {
		t.Errorf("exp one submission, got %d", ft.submitted)
	}

	cancelled := task.NewCanned(newRequest(t), nil, nil, nil)
	cancelled.Cancel()
	if err := cancelled.Run(); !errors.Is(err, task.ErrCancelled) {
		t.Errorf("exp ErrCancelled, got %v", err)
	}
}

func TestCanned_Synchronous(t *testing.T) {
	resp := &task.Response{StatusCode: http.StatusCreated, ContentType: "application/json"}
	runner := task.NewCanned(newRequest(t), []byte(`{"a":1}`), resp, nil, task.WithID("fixed"))

	if runner.ID() != "fixed" {
		t.Errorf("exp fixed id, got %q", runner.ID())
	}
	if err := runner.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}

	if state := runner.Promise().State(); state != promise.Resolved {
		t.Fatalf("exp resolved synchronously, got %s", state)
	}

	res, _ := runner.Promise().Wait(t.Context())
	if res.Response != resp || string(res.Body) != `{"a":1}` {
		t.Errorf("exp canned data, got %+v", res)
	}
}

func TestCanned_DelayAndCancel(t *testing.T) {
	delayed := task.NewCanned(newRequest(t), []byte("x"), &task.Response{StatusCode: 200}, nil).After(5 * time.Millisecond)
	if err := delayed.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	if delayed.Promise().State() != promise.Pending {
		t.Error("exp delayed runner to be pending right after Run")
	}
	if _, err := delayed.Promise().Wait(t.Context()); err != nil {
		t.Errorf("exp delayed resolution, got %v", err)
	}

	cancelled := task.NewCanned(newRequest(t), []byte("x"), &task.Response{StatusCode: 200}, nil).After(5 * time.Millisecond)
	if err := cancelled.Run(); err != nil {
		t.Fatalf("running: %v", err)
	}
	cancelled.Cancel()

	time.Sleep(20 * time.Millisecond)
	if state := cancelled.Promise().State(); state != promise.Pending {
		t.Errorf("exp cancelled runner to stay pending, got %s", state)
	}
}

func TestResponseFrom(t *testing.T) {
	if task.ResponseFrom(nil) != nil {
		t.Error("exp nil for nil response")
	}

	req := newRequest(t)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"Application/JSON; charset=utf-8"}},
		Request:    req,
	}

	got := task.ResponseFrom(resp)
	if got.ContentType != "application/json" {
		t.Errorf("exp normalized media type, got %q", got.ContentType)
	}
	if got.URL != "https://example.com/items" {
		t.Errorf("exp request url, got %q", got.URL)
	}

	resp.Header.Set("X-Later", "1")
	if got.Header.Get("X-Later") != "" {
		t.Error("exp header to be copied")
	}
}
