// Package web holds the request decoding and response helpers shared by
// handlers built on the mux package.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/courier/internal/web/errs"
	"github.com/adamwoolhether/courier/internal/web/mux"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("web: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

// Decode reads a JSON document from the request body into val and checks
// its validation tags.
func Decode[T any](r *http.Request, val *T) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return errs.New(http.StatusBadRequest, fmt.Errorf("decode: %w", err))
	}

	return Validate(val)
}

// Validate checks val against its declared tags.
func Validate(val any) error {
	if err := validate.Struct(val); err != nil {
		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		fields := make(errs.FieldErrors, 0, len(verrors))
		for _, verror := range verrors {
			fields = append(fields, errs.FieldError{
				Field: verror.Field(),
				Err:   verror.Translate(translator),
			})
		}
		return fields
	}

	return nil
}

// RespondJSON to an HTTP request, setting the status code and body if any.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	mux.SetStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// Respond writes body verbatim with the given headers and status code.
func Respond(ctx context.Context, w http.ResponseWriter, statusCode int, header http.Header, body []byte) error {
	mux.SetStatusCode(ctx, statusCode)

	for k, vs := range header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(statusCode)

	if len(body) == 0 {
		return nil
	}

	if _, err := w.Write(body); err != nil {
		return err
	}

	return nil
}
