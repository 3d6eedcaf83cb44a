package request

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/adamwoolhether/courier/client/errs"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("request: failed to get 'en' translator")
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

// validateMessage checks msg against its declared tags and maps the first
// failing field onto the taxonomy: resource problems are InvalidRequestURL,
// header problems InvalidParameter.
func validateMessage(msg Message) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return errs.New(errs.InvalidParameter, err)
	}

	verror := verrors[0]
	cause := fmt.Errorf("%s: %s", verror.Namespace(), verror.Translate(translator))
	if verror.StructField() == "Resource" {
		return errs.New(errs.InvalidRequestURL, cause)
	}

	return errs.New(errs.InvalidParameter, cause)
}
