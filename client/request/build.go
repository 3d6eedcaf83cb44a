package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/adamwoolhether/courier/client/errs"
)

// BuildOption is a functional option for [Build].
type BuildOption func(*buildOpts) error

type buildOpts struct {
	baseURL string
	headers map[string]string
}

// WithBaseURL joins relative resources onto base.
func WithBaseURL(base string) BuildOption {
	return func(opts *buildOpts) error {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base url %q must be absolute", base)
		}
		opts.baseURL = base
		return nil
	}
}

// WithDefaultHeaders sets headers applied before the Message's own headers.
func WithDefaultHeaders(headers map[string]string) BuildOption {
	return func(opts *buildOpts) error {
		opts.headers = headers
		return nil
	}
}

// Build serializes r into an *http.Request. It fails with an errs.Error of
// kind InvalidRequestURL, InvalidParameter or InvalidUploadFilePath before
// any I/O takes place. Build doesn't modify r's Message.
func Build(ctx context.Context, r Requestable, optFns ...BuildOption) (*http.Request, error) {
	var opts buildOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying build option: %w", err)
		}
	}

	method := r.Method()
	if !method.Valid() {
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	msg := r.Message()
	if err := validateMessage(msg); err != nil {
		return nil, err
	}

	u, err := ResolveURL(opts.baseURL, msg.Resource)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		contentType string
	)

	enc := encQuery
	if method.HasBody() {
		enc = r.ContentType().encoding()
	}

	switch enc {
	case encQuery:
		if len(msg.Parameters) > 0 {
			values, err := encodeValues(msg.Parameters)
			if err != nil {
				return nil, err
			}
			query := u.Query()
			for k, vs := range values {
				query[k] = append(query[k], vs...)
			}
			u.RawQuery = query.Encode()
		}

	case encJSON:
		if len(msg.Parameters) > 0 {
			if body, err = encodeJSON(msg.Parameters); err != nil {
				return nil, err
			}
			contentType = string(r.ContentType())
		}

	case encForm:
		if len(msg.Parameters) > 0 {
			values, err := encodeValues(msg.Parameters)
			if err != nil {
				return nil, err
			}
			body = []byte(values.Encode())
			contentType = string(r.ContentType())
		}

	case encMultipart:
		if body, contentType, err = encodeMultipart(msg.Parameters); err != nil {
			return nil, err
		}

	default:
		return nil, errs.New(errs.InvalidParameter, fmt.Errorf("unsupported content type %q", r.ContentType()))
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), u.String(), reader)
	if err != nil {
		return nil, errs.New(errs.InvalidRequestURL, err)
	}

	for _, k := range sortedKeys(opts.headers) {
		req.Header.Set(k, opts.headers[k])
	}
	for _, k := range sortedKeys(msg.Headers) {
		req.Header.Set(k, msg.Headers[k])
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

// ResolveURL returns resource as an absolute URL, joining it onto base when
// resource is relative. It fails with InvalidRequestURL when no absolute URL
// can be formed.
func ResolveURL(base, resource string) (*url.URL, error) {
	if resource == "" {
		return nil, errs.New(errs.InvalidRequestURL, errors.New("empty resource"))
	}

	u, err := url.Parse(resource)
	if err != nil {
		return nil, errs.New(errs.InvalidRequestURL, err)
	}

	if !u.IsAbs() && base != "" {
		joined := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(resource, "/")
		if u, err = url.Parse(joined); err != nil {
			return nil, errs.New(errs.InvalidRequestURL, err)
		}
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errs.New(errs.InvalidRequestURL, fmt.Errorf("%q is not an absolute url", resource))
	}

	return u, nil
}
