package request_test

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamwoolhether/courier/client/errs"
	"github.com/adamwoolhether/courier/client/request"
	"github.com/google/go-cmp/cmp"
)

type color string

type userRequest struct {
	id string
}

func (u userRequest) Method() request.Method { return request.MethodGet }
func (u userRequest) Message() request.Message {
	return request.Message{Resource: "https://api.example.com/users/" + u.id}
}
func (u userRequest) ContentType() request.ContentType { return request.Query }

func TestBuild_Deterministic(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "avatar.png")
	if err := os.WriteFile(upload, []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("writing upload: %v", err)
	}

	msg := request.Message{
		Resource: "https://api.example.com/items",
		Parameters: map[string]any{
			"zeta":   "last",
			"alpha":  1,
			"tags":   []string{"b", "a"},
			"filter": map[string]any{"y": true, "x": 2.5},
			"shade":  color("blue"),
		},
		Headers: map[string]string{"X-Trace": "abc", "Accept": "application/json"},
	}

	multipartMsg := msg
	multipartMsg.Parameters = map[string]any{"name": "n", "avatar": request.File{Path: upload}}

	testCases := []struct {
		name string
		req  request.Requestable
	}{
		{"get", request.GET(msg)},
		{"head", request.HEAD(msg)},
		{"delete", request.DELETE(msg)},
		{"post json", request.POST(msg)},
		{"put form", request.PUT(msg).As(request.FormURLEncoded)},
		{"patch multipart", request.PATCH(multipartMsg).As(request.MultipartFormData)},
		{"custom requestable", userRequest{id: "7"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first := dump(t, tc.req)
			second := dump(t, tc.req)

			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("serialization not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func dump(t *testing.T, r request.Requestable) string {
	t.Helper()

	req, err := request.Build(t.Context(), r)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	b, err := httputil.DumpRequest(req, true)
	if err != nil {
		t.Fatalf("dumping request: %v", err)
	}

	return string(b)
}

func TestBuild_QueryEncoding(t *testing.T) {
	msg := request.Message{
		Resource: "https://api.example.com/search?page=2",
		Parameters: map[string]any{
			"q":      "go lang",
			"tags":   []any{"b", "a"},
			"filter": map[string]any{"min": 1, "max": 9},
			"empty":  nil,
		},
	}

	for _, r := range []request.Request{request.GET(msg), request.DELETE(msg), request.HEAD(msg), request.POST(msg).As(request.Query)} {
		req, err := request.Build(t.Context(), r)
		if err != nil {
			t.Fatalf("%s: building request: %v", r.Method(), err)
		}

		exp := "empty=&filter%5Bmax%5D=9&filter%5Bmin%5D=1&page=2&q=go+lang&tags%5B%5D=b&tags%5B%5D=a"
		if req.URL.RawQuery != exp {
			t.Errorf("%s: exp query %q, got %q", r.Method(), exp, req.URL.RawQuery)
		}
		if req.Body != nil && req.Body != http.NoBody {
			t.Errorf("%s: exp no body", r.Method())
		}
		if req.Method != string(r.Method()) {
			t.Errorf("exp method %s, got %s", r.Method(), req.Method)
		}
	}
}

func TestBuild_NilPointerParameters(t *testing.T) {
	link, _ := url.Parse("https://go.dev/doc")
	msg := request.Message{
		Resource: "https://api.example.com/links",
		Parameters: map[string]any{
			"missing": (*url.URL)(nil),
			"link":    link,
		},
	}

	req, err := request.Build(t.Context(), request.GET(msg))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	exp := "link=https%3A%2F%2Fgo.dev%2Fdoc&missing="
	if req.URL.RawQuery != exp {
		t.Errorf("exp query %q, got %q", exp, req.URL.RawQuery)
	}

	req, err = request.Build(t.Context(), request.POST(msg).As(request.FormURLEncoded))
	if err != nil {
		t.Fatalf("building form request: %v", err)
	}
	body, _ := io.ReadAll(req.Body)
	if string(body) != exp {
		t.Errorf("exp form body %q, got %q", exp, body)
	}
}

func TestBuild_BodyEncoding(t *testing.T) {
	msg := request.Message{
		Resource:   "https://api.example.com/users",
		Parameters: map[string]any{"name": "alice", "age": 30},
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}

	testCases := []struct {
		name   string
		req    request.Request
		expCT  string
		expRaw string
	}{
		{"json default", request.POST(msg), "application/json", `{"age":30,"name":"alice"}`},
		{"vendor json", request.PUT(msg).As("application/vnd.api+json"), "application/vnd.api+json", `{"age":30,"name":"alice"}`},
		{"form", request.PATCH(msg).As(request.FormURLEncoded), "application/x-www-form-urlencoded", "age=30&name=alice"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := request.Build(t.Context(), tc.req)
			if err != nil {
				t.Fatalf("building request: %v", err)
			}

			if got := req.Header.Get("Content-Type"); got != tc.expCT {
				t.Errorf("exp content type %q, got %q", tc.expCT, got)
			}

			b, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("reading body: %v", err)
			}
			if string(b) != tc.expRaw {
				t.Errorf("exp body %s, got %s", tc.expRaw, b)
			}
			if req.URL.RawQuery != "" {
				t.Errorf("exp empty query, got %q", req.URL.RawQuery)
			}
		})
	}
}

func TestBuild_Multipart(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(upload, []byte("hello upload"), 0o600); err != nil {
		t.Fatalf("writing upload: %v", err)
	}

	msg := request.Message{
		Resource:   "https://api.example.com/upload",
		Parameters: map[string]any{"title": "notes", "file": request.File{Path: upload, ContentType: "text/plain"}},
	}

	req, err := request.Build(t.Context(), request.POST(msg).As(request.MultipartFormData))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("exp multipart content type, got %q (%v)", req.Header.Get("Content-Type"), err)
	}

	mr := multipart.NewReader(req.Body, params["boundary"])
	got := map[string]string{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}
		b, _ := io.ReadAll(part)
		got[part.FormName()+"|"+part.FileName()] = string(b)
	}

	exp := map[string]string{"file|notes.txt": "hello upload", "title|": "notes"}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("multipart parts mismatch (-exp +got):\n%s", diff)
	}
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		req     request.Requestable
		expKind errs.Kind
	}{
		{"empty resource", request.GET(request.Message{}), errs.InvalidRequestURL},
		{"relative resource", request.GET(request.Message{Resource: "/users"}), errs.InvalidRequestURL},
		{"no scheme", request.POST(request.Message{Resource: "not a url"}), errs.InvalidRequestURL},
		{"bad host", request.GET(request.Message{Resource: "http://exa mple.com"}), errs.InvalidRequestURL},
		{"channel in query", request.GET(request.Message{Resource: "https://x.io", Parameters: map[string]any{"c": make(chan int)}}), errs.InvalidParameter},
		{"func in json", request.POST(request.Message{Resource: "https://x.io", Parameters: map[string]any{"f": func() {}}}), errs.InvalidParameter},
		{"file in json", request.POST(request.Message{Resource: "https://x.io", Parameters: map[string]any{"f": request.File{Path: "x"}}}), errs.InvalidParameter},
		{"file in query", request.GET(request.Message{Resource: "https://x.io", Parameters: map[string]any{"f": request.File{Path: "x"}}}), errs.InvalidParameter},
		{"empty header key", request.GET(request.Message{Resource: "https://x.io", Headers: map[string]string{"": "v"}}), errs.InvalidParameter},
		{"unsupported content type", request.POST(request.Message{Resource: "https://x.io", Parameters: map[string]any{"a": 1}}).As("application/xml"), errs.InvalidParameter},
		{"missing upload", request.POST(request.Message{Resource: "https://x.io", Parameters: map[string]any{"f": request.File{Path: filepath.Join(dir, "missing.bin")}}}).As(request.MultipartFormData), errs.InvalidUploadFilePath},
		{"directory upload", request.POST(request.Message{Resource: "https://x.io", Parameters: map[string]any{"f": request.File{Path: dir}}}).As(request.MultipartFormData), errs.InvalidUploadFilePath},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := request.Build(t.Context(), tc.req)
			if req != nil {
				t.Error("exp nil request on failure")
			}

			kind, ok := errs.KindOf(err)
			if !ok || kind != tc.expKind {
				t.Errorf("exp %s, got %v", tc.expKind, err)
			}
		})
	}
}

func TestBuild_BaseURLAndHeaders(t *testing.T) {
	msg := request.Message{
		Resource: "/v1/users",
		Headers:  map[string]string{"X-Override": "message"},
	}

	req, err := request.Build(t.Context(), request.GET(msg),
		request.WithBaseURL("https://api.example.com/"),
		request.WithDefaultHeaders(map[string]string{"X-Override": "default", "X-Default": "yes"}),
	)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}

	if got := req.URL.String(); got != "https://api.example.com/v1/users" {
		t.Errorf("exp joined url, got %q", got)
	}
	if got := req.Header.Get("X-Override"); got != "message" {
		t.Errorf("exp message header to win, got %q", got)
	}
	if got := req.Header.Get("X-Default"); got != "yes" {
		t.Errorf("exp default header, got %q", got)
	}

	if _, err := request.Build(t.Context(), request.GET(msg), request.WithBaseURL("relative/base")); err == nil {
		t.Error("exp relative base url to be rejected")
	}
}

func TestBuild_DoesNotMutateMessage(t *testing.T) {
	msg := request.Message{
		Resource:   "https://api.example.com/users?a=1",
		Parameters: map[string]any{"b": 2},
		Headers:    map[string]string{"X-A": "1"},
	}
	before, _ := json.Marshal(msg)

	if _, err := request.Build(t.Context(), request.POST(msg).As(request.Query)); err != nil {
		t.Fatalf("building request: %v", err)
	}

	after, _ := json.Marshal(msg)
	if string(before) != string(after) {
		t.Errorf("message mutated: %s -> %s", before, after)
	}
	if !strings.Contains(msg.Resource, "a=1") || strings.Contains(msg.Resource, "b=2") {
		t.Errorf("resource mutated: %s", msg.Resource)
	}
}
