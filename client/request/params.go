package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"

	"github.com/adamwoolhether/courier/client/errs"
)

// encodeValues flattens params into url.Values. Slices become key[] entries
// and maps become key[sub] entries. Encoding the result with Values.Encode
// sorts keys, which keeps the output deterministic.
func encodeValues(params map[string]any) (url.Values, error) {
	values := url.Values{}
	for _, key := range sortedKeys(params) {
		if err := appendValue(values, key, params[key]); err != nil {
			return nil, err
		}
	}

	return values, nil
}

func appendValue(values url.Values, key string, v any) error {
	if s, ok, err := scalar(v); err != nil {
		return err
	} else if ok {
		values.Add(key, s)
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if err := appendValue(values, key+"[]", rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return invalidParameter(key, v)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		for _, k := range keys {
			elem := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			if err := appendValue(values, key+"["+k+"]", elem.Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return invalidParameter(key, v)
}

// scalar converts v into its transport string. ok is false for composite
// values that need flattening.
func scalar(v any) (s string, ok bool, err error) {
	// Typed nil pointers encode like nil, before any String method sees them.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", true, nil
	}

	switch val := v.(type) {
	case nil:
		return "", true, nil
	case string:
		return val, true, nil
	case []byte:
		return string(val), true, nil
	case File:
		return "", false, errs.New(errs.InvalidParameter, fmt.Errorf("file %q can only be sent as multipart form data", val.Path))
	case fmt.Stringer:
		return val.String(), true, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits()), true, nil
	}

	return "", false, nil
}

func invalidParameter(key string, v any) error {
	return errs.New(errs.InvalidParameter, fmt.Errorf("parameter %q of type %T", key, v))
}

func encodeJSON(params map[string]any) ([]byte, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, errs.New(errs.InvalidParameter, err)
	}

	return b, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
