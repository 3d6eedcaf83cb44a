package client

import (
	"mime"
	"slices"
	"strings"

	"github.com/adamwoolhether/courier/client/errs"
	"github.com/adamwoolhether/courier/client/task"
)

// validate runs the response checks in order, returning the first failure.
// Transport errors never reach here: they reject the task's promise and pass
// through unchanged.
func (s sendOpts) validate(res task.Result) error {
	if res.Response == nil {
		return errs.New(errs.NoResponseReceived, nil)
	}

	if !s.acceptsStatus(res.Response.StatusCode) {
		return errs.Status(res.Response.StatusCode)
	}

	if len(s.contentTypes) == 0 {
		return nil
	}

	header := res.Response.Header.Get("Content-Type")
	if header == "" {
		return errs.New(errs.MissingContentType, nil)
	}

	mediaType := res.Response.ContentType
	if mediaType == "" {
		mediaType = strings.ToLower(strings.TrimSpace(header))
	}
	if !s.acceptsContentType(mediaType) {
		return errs.ContentType(mediaType)
	}

	return nil
}

func (s sendOpts) acceptsStatus(code int) bool {
	if len(s.statusCodes) == 0 {
		return code >= 200 && code < 300
	}
	return slices.Contains(s.statusCodes, code)
}

func (s sendOpts) acceptsContentType(mediaType string) bool {
	typ, sub, _ := strings.Cut(mediaType, "/")

	for _, accepted := range s.contentTypes {
		want, _, err := mime.ParseMediaType(accepted)
		if err != nil {
			want = strings.ToLower(accepted)
		}

		wantType, wantSub, _ := strings.Cut(want, "/")
		switch {
		case want == "*/*" || want == "*":
			return true
		case wantType != typ:
		case wantSub == "*" || wantSub == sub:
			return true
		case strings.HasPrefix(wantSub, "*+") && strings.HasSuffix(sub, wantSub[1:]):
			return true
		}
	}

	return false
}

// withDefaultContentTypes declares types only when the caller declared none.
func (s sendOpts) withDefaultContentTypes(types ...string) sendOpts {
	if len(s.contentTypes) == 0 {
		s.contentTypes = types
	}
	return s
}
