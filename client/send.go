package client

import (
	"context"
	"fmt"

	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/client/task"
)

// The typed entry points run the same pipeline as Client.Send and add a
// decoding stage. Each one requires a non-empty body.

// SendData resolves with the raw response body.
func SendData(ctx context.Context, c *Client, r request.Requestable, opts ...SendOption) (*Ride[[]byte], error) {
	ride, _, err := dispatch(ctx, c, r, opts)
	if err != nil {
		return nil, err
	}

	return mapRide(ride, decodeData), nil
}

// SendString resolves with the body decoded as text. An empty encoding uses
// the response charset, defaulting to UTF-8. Names are IANA or WHATWG
// encoding labels such as "iso-8859-1" or "shift_jis".
func SendString(ctx context.Context, c *Client, r request.Requestable, encoding string, opts ...SendOption) (*Ride[string], error) {
	ride, _, err := dispatch(ctx, c, r, opts)
	if err != nil {
		return nil, err
	}

	return mapRide(ride, func(res task.Result) (string, error) {
		return decodeString(res, encoding)
	}), nil
}

// SendJSONArray resolves with the body decoded as a JSON array.
func SendJSONArray(ctx context.Context, c *Client, r request.Requestable, opts ...SendOption) (*Ride[[]any], error) {
	ride, settings, err := dispatch(ctx, c, r, opts, jsonContentTypes...)
	if err != nil {
		return nil, err
	}

	return mapRide(ride, func(res task.Result) ([]any, error) {
		return decodeJSONArray(res, settings.useJSONNum)
	}), nil
}

// SendJSONDictionary resolves with the body decoded as a JSON object.
func SendJSONDictionary(ctx context.Context, c *Client, r request.Requestable, opts ...SendOption) (*Ride[map[string]any], error) {
	ride, settings, err := dispatch(ctx, c, r, opts, jsonContentTypes...)
	if err != nil {
		return nil, err
	}

	return mapRide(ride, func(res task.Result) (map[string]any, error) {
		return decodeJSONDictionary(res, settings.useJSONNum)
	}), nil
}

// SendJSON resolves with the body decoded into a T. Decoding failures report
// JSONArraySerializationFailed when T is a slice or array and
// JSONDictionarySerializationFailed otherwise.
func SendJSON[T any](ctx context.Context, c *Client, r request.Requestable, opts ...SendOption) (*Ride[T], error) {
	ride, settings, err := dispatch(ctx, c, r, opts, jsonContentTypes...)
	if err != nil {
		return nil, err
	}

	return mapRide(ride, func(res task.Result) (T, error) {
		return decodeJSONInto[T](res, settings.useJSONNum)
	}), nil
}

var jsonContentTypes = []string{"application/json", "application/*+json"}

func dispatch(ctx context.Context, c *Client, r request.Requestable, opts []SendOption, defaultTypes ...string) (*Ride[task.Result], sendOpts, error) {
	var settings sendOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, settings, fmt.Errorf("applying send option: %w", err)
		}
	}
	settings = settings.withDefaultContentTypes(defaultTypes...)

	ride, err := c.send(ctx, r, settings)
	return ride, settings, err
}
