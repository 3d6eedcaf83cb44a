package errs_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/adamwoolhether/courier/client/errs"
)

func TestError_Reason(t *testing.T) {
	testCases := []struct {
		name string
		err  *errs.Error
		exp  string
	}{
		{"no mock", errs.ErrNoMockProvided, "No mock provided for the current request and method"},
		{"invalid url", errs.ErrInvalidRequestURL, "Invalid request URL"},
		{"missing content type", errs.ErrMissingContentType, "Response content type was missing"},
		{"invalid parameter", errs.ErrInvalidParameter, "Parameter is not convertible to bytes"},
		{"upload path", errs.ErrInvalidUploadFilePath, "Invalid upload file path"},
		{"no data", errs.ErrNoDataInResponse, "No data in response"},
		{"no response", errs.ErrNoResponseReceived, "No response received"},
		{"status", errs.Status(404), "Response status code 404 was unacceptable"},
		{"content type", errs.ContentType("text/html"), "Response content type text/html was unacceptable"},
		{"json array", errs.ErrJSONArraySerializationFailed, "No JSON array in response data"},
		{"json dict", errs.ErrJSONDictionarySerializationFailed, "No JSON dictionary in response data"},
		{"string", errs.Encoding("utf-8", nil), "String could not be serialized with encoding: utf-8"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Reason(); got != tc.exp {
				t.Errorf("exp reason %q, got %q", tc.exp, got)
			}
			if got := tc.err.Error(); got != tc.exp {
				t.Errorf("exp error %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("dispatch: %w", errs.Status(404))

	if !errors.Is(wrapped, errs.ErrUnacceptableStatusCode) {
		t.Error("exp wrapped status error to match the payload-free sentinel")
	}
	if !errors.Is(wrapped, errs.Status(404)) {
		t.Error("exp wrapped status error to match the same code")
	}
	if errors.Is(wrapped, errs.Status(500)) {
		t.Error("exp wrapped status error not to match a different code")
	}
	if errors.Is(wrapped, errs.ErrNoDataInResponse) {
		t.Error("exp kinds to differ")
	}

	cause := errors.New("boom")
	withCause := errs.New(errs.InvalidParameter, cause)
	if !errors.Is(withCause, cause) {
		t.Error("exp cause to be reachable through Unwrap")
	}
	if !errors.Is(withCause, errs.ErrInvalidParameter) {
		t.Error("exp cause not to affect kind equality")
	}
}

func TestKindOf(t *testing.T) {
	kind, ok := errs.KindOf(fmt.Errorf("outer: %w", errs.ContentType("text/plain")))
	if !ok || kind != errs.UnacceptableContentType {
		t.Errorf("exp UnacceptableContentType, got %v (ok=%t)", kind, ok)
	}

	if _, ok := errs.KindOf(errors.New("plain")); ok {
		t.Error("exp plain error to have no kind")
	}
}

func TestKind_String(t *testing.T) {
	if got := errs.StringSerializationFailed.String(); got != "StringSerializationFailed" {
		t.Errorf("exp StringSerializationFailed, got %q", got)
	}
	if got := errs.Kind(99).String(); got != "Kind(99)" {
		t.Errorf("exp Kind(99), got %q", got)
	}
}

func TestIsOffline(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		exp  bool
	}{
		{"nil", nil, false},
		{"refused", &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNREFUSED)}, true},
		{"unreachable", fmt.Errorf("wrapped: %w", syscall.ENETUNREACH), true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("no route")}, true},
		{"dns", &net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true}, true},
		{"dns timeout", &net.DNSError{Err: "timeout", Name: "example.com", IsTimeout: true}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"taxonomy", errs.ErrNoResponseReceived, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errs.IsOffline(tc.err); got != tc.exp {
				t.Errorf("exp %t, got %t", tc.exp, got)
			}
		})
	}
}
