package replay_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/client/errs"
	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/internal/replay"
)

const origin = "https://api.example.com"

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type test struct {
	registry *mock.Registry
	server   *httptest.Server
	client   *client.Client
}

func newTest(t *testing.T) *test {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := mock.NewRegistry()
	if err := reg.LoadFile("testdata/api.yaml"); err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}

	h, err := replay.New(reg, origin, replay.WithLogger(log))
	if err != nil {
		t.Fatalf("building handler: %v", err)
	}

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := client.Build(client.WithBaseURL(srv.URL), client.WithLogger(log))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	t.Cleanup(func() { c.Close(t.Context()) })

	return &test{registry: reg, server: srv, client: c}
}

func TestNew_Validation(t *testing.T) {
	testCases := map[string]struct {
		reg    *mock.Registry
		origin string
	}{
		"nilRegistry":    {reg: nil, origin: origin},
		"relativeOrigin": {reg: mock.NewRegistry(), origin: "/api"},
		"badOrigin":      {reg: mock.NewRegistry(), origin: "http://[::1"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := replay.New(tc.reg, tc.origin); err == nil {
				t.Fatal("exp error, got nil")
			}
		})
	}
}

func TestReplay_ServesFixturesInOrder(t *testing.T) {
	tt := newTest(t)
	req := request.GET(request.NewMessage("/users"))

	ride, err := client.SendJSON[[]user](t.Context(), tt.client, req)
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	users, err := ride.Wait(t.Context())
	if err != nil {
		t.Fatalf("waiting: %v", err)
	}
	if diff := cmp.Diff([]user{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}}, users); diff != "" {
		t.Errorf("users mismatch (-exp +got):\n%s", diff)
	}

	res, err := tt.client.Send(t.Context(), req, client.WithStatusCodes(http.StatusServiceUnavailable))
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	second, err := res.Wait(t.Context())
	if err != nil {
		t.Fatalf("waiting: %v", err)
	}
	if string(second.Body) != "maintenance" {
		t.Errorf("exp maintenance body, got %q", second.Body)
	}
	if got := second.Response.Header.Get("Retry-After"); got != "30" {
		t.Errorf("exp Retry-After 30, got %q", got)
	}

	third, err := tt.client.Send(t.Context(), req)
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	if _, err := third.Wait(t.Context()); !errors.Is(err, errs.Status(http.StatusNotFound)) {
		t.Errorf("exp 404 once exhausted, got %v", err)
	}
}

func TestReplay_DelayedNoContent(t *testing.T) {
	tt := newTest(t)

	ride, err := tt.client.Send(t.Context(), request.DELETE(request.NewMessage("/users/1")))
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	res, err := ride.Wait(t.Context())
	if err != nil {
		t.Fatalf("waiting: %v", err)
	}
	if res.Response.StatusCode != http.StatusNoContent {
		t.Errorf("exp 204, got %d", res.Response.StatusCode)
	}
}

func TestReplay_DropsConnectionForTransportFailures(t *testing.T) {
	tt := newTest(t)

	ride, err := tt.client.Send(t.Context(), request.POST(request.NewMessage("/users")))
	if err != nil {
		t.Fatalf("sending: %v", err)
	}

	_, err = ride.Wait(t.Context())
	if err == nil {
		t.Fatal("exp transport error")
	}
	if errs.IsTaxonomy(err) {
		t.Errorf("exp raw transport error, got %v", err)
	}
}

func TestReplay_NotFoundBody(t *testing.T) {
	tt := newTest(t)

	resp, err := http.Get(tt.server.URL + "/nothing/here")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	exp := map[string]any{"code": float64(404), "message": "no mock provided for GET https://api.example.com/nothing/here"}
	if diff := cmp.Diff(exp, body); diff != "" {
		t.Errorf("body mismatch (-exp +got):\n%s", diff)
	}
}

func TestReplay_Admin(t *testing.T) {
	tt := newTest(t)
	adminURL := tt.server.URL + replay.AdminPrefix + "/mocks"

	post := func(t *testing.T, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(adminURL, "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("register", func(t *testing.T) {
		resp := post(t, `{"method":"get","resource":"https://api.example.com/health","body":"ok"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		ride, err := client.SendString(t.Context(), tt.client, request.GET(request.NewMessage("/health")), "")
		if err != nil {
			t.Fatalf("sending: %v", err)
		}
		got, err := ride.Wait(t.Context())
		if err != nil {
			t.Fatalf("waiting: %v", err)
		}
		if got != "ok" {
			t.Errorf("exp ok, got %q", got)
		}
	})

	t.Run("validation", func(t *testing.T) {
		resp := post(t, `{"resource":"https://api.example.com/health"}`)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
		}

		var fields []map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if len(fields) != 1 || fields[0]["field"] != "method" {
			t.Errorf("exp method field error, got %v", fields)
		}
	})

	t.Run("invalidFixture", func(t *testing.T) {
		resp := post(t, `{"method":"brew","resource":"https://api.example.com/coffee"}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("pendingAndReset", func(t *testing.T) {
		resp, err := http.Get(adminURL)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		var pending []map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if len(pending) != 3 {
			t.Fatalf("exp 3 pending keys, got %v", pending)
		}
		if pending[0]["method"] != "DELETE" || pending[1]["queued"] != float64(2) {
			t.Errorf("unexpected pending listing %v", pending)
		}

		req, _ := http.NewRequestWithContext(t.Context(), http.MethodDelete, adminURL, nil)
		del, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		del.Body.Close()

		if del.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want %d", del.StatusCode, http.StatusNoContent)
		}
		if n := len(tt.registry.Pending()); n != 0 {
			t.Errorf("exp empty registry, got %d keys", n)
		}
	})
}
