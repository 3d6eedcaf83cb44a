package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"reflect"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/adamwoolhether/courier/client/errs"
	"github.com/adamwoolhether/courier/client/task"
)

const defaultEncoding = "utf-8"

func requireBody(res task.Result) ([]byte, error) {
	if len(res.Body) == 0 {
		return nil, errs.New(errs.NoDataInResponse, nil)
	}
	return res.Body, nil
}

func decodeData(res task.Result) ([]byte, error) {
	return requireBody(res)
}

func decodeJSONArray(res task.Result, useNumber bool) ([]any, error) {
	arr, err := decodeJSONInto[[]any](res, useNumber)
	if err != nil {
		return nil, err
	}
	if arr == nil {
		return nil, errs.New(errs.JSONArraySerializationFailed, errors.New("null document"))
	}

	return arr, nil
}

func decodeJSONDictionary(res task.Result, useNumber bool) (map[string]any, error) {
	dict, err := decodeJSONInto[map[string]any](res, useNumber)
	if err != nil {
		return nil, err
	}
	if dict == nil {
		return nil, errs.New(errs.JSONDictionarySerializationFailed, errors.New("null document"))
	}

	return dict, nil
}

// decodeJSONInto decodes into a T. Failures are reported as an array failure
// when T is a slice or array, and as a dictionary failure otherwise.
func decodeJSONInto[T any](res task.Result, useNumber bool) (T, error) {
	var v T

	kind := errs.JSONDictionarySerializationFailed
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Slice, reflect.Array:
		kind = errs.JSONArraySerializationFailed
	}

	body, err := requireBody(res)
	if err != nil {
		return v, err
	}

	d := json.NewDecoder(bytes.NewReader(body))
	if useNumber {
		d.UseNumber()
	}
	if err := d.Decode(&v); err != nil {
		return v, errs.New(kind, err)
	}
	if _, err := d.Token(); err != io.EOF {
		return v, errs.New(kind, errors.New("trailing data after document"))
	}

	return v, nil
}

// decodeString decodes the body with the named encoding. An empty name uses
// the response charset, falling back to UTF-8.
func decodeString(res task.Result, name string) (string, error) {
	body, err := requireBody(res)
	if err != nil {
		return "", err
	}

	if name == "" {
		name = responseCharset(res.Response)
	}

	enc, err := lookupEncoding(name)
	if err != nil {
		return "", errs.Encoding(name, err)
	}

	if enc == nil {
		if !utf8.Valid(body) {
			return "", errs.Encoding(name, errors.New("invalid utf-8"))
		}
		return string(body), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", errs.Encoding(name, err)
	}
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", errs.Encoding(name, errors.New("undecodable bytes"))
	}

	return string(out), nil
}

func responseCharset(resp *task.Response) string {
	if resp == nil {
		return defaultEncoding
	}

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || params["charset"] == "" {
		return defaultEncoding
	}

	return params["charset"]
}

// lookupEncoding resolves an IANA or WHATWG encoding name. A nil encoding
// with a nil error means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return nil, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err == nil && enc != nil {
		return enc, nil
	}

	enc, err = htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}

	return enc, nil
}
