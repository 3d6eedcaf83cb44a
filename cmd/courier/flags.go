package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adamwoolhether/courier/client/request"
)

// headerFlag collects repeated -H "Name: value" flags.
type headerFlag map[string]string

func (h headerFlag) String() string {
	pairs := make([]string, 0, len(h))
	for k, v := range h {
		pairs = append(pairs, k+": "+v)
	}
	return strings.Join(pairs, ", ")
}

func (h headerFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header %q must be formatted as Name: value", s)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

// listFlag collects repeated or comma separated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(s string) error {
	for v := range strings.SplitSeq(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

func (l listFlag) ints() ([]int, error) {
	out := make([]int, 0, len(l))
	for _, v := range l {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("status code %q: %w", v, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// contentTypes maps -as values to request body encodings.
var contentTypes = map[string]request.ContentType{
	"query":     request.Query,
	"json":      request.JSON,
	"form":      request.FormURLEncoded,
	"multipart": request.MultipartFormData,
}

// parseParams turns key=value arguments into Message parameters. A value
// starting with @ names a file to upload. Repeated keys become lists.
func parseParams(args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q must be formatted as key=value", arg)
		}

		var v any = value
		if path, isFile := strings.CutPrefix(value, "@"); isFile {
			v = request.File{Path: path}
		}

		switch prev := params[key].(type) {
		case nil:
			params[key] = v
		case []any:
			params[key] = append(prev, v)
		default:
			params[key] = []any{prev, v}
		}
	}
	return params, nil
}
