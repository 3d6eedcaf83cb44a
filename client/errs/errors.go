// Package errs defines the closed set of failures a dispatch can report.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the failure taxonomy.
type Kind int

const (
	NoMockProvided Kind = iota + 1
	InvalidRequestURL
	MissingContentType
	InvalidParameter
	InvalidUploadFilePath
	NoDataInResponse
	NoResponseReceived
	UnacceptableStatusCode
	UnacceptableContentType
	JSONArraySerializationFailed
	JSONDictionarySerializationFailed
	StringSerializationFailed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NoMockProvided:
		return "NoMockProvided"
	case InvalidRequestURL:
		return "InvalidRequestURL"
	case MissingContentType:
		return "MissingContentType"
	case InvalidParameter:
		return "InvalidParameter"
	case InvalidUploadFilePath:
		return "InvalidUploadFilePath"
	case NoDataInResponse:
		return "NoDataInResponse"
	case NoResponseReceived:
		return "NoResponseReceived"
	case UnacceptableStatusCode:
		return "UnacceptableStatusCode"
	case UnacceptableContentType:
		return "UnacceptableContentType"
	case JSONArraySerializationFailed:
		return "JSONArraySerializationFailed"
	case JSONDictionarySerializationFailed:
		return "JSONDictionarySerializationFailed"
	case StringSerializationFailed:
		return "StringSerializationFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a taxonomy error. Only the payload field matching Kind is set:
// StatusCode for UnacceptableStatusCode, ContentType for UnacceptableContentType
// and Encoding for StringSerializationFailed.
type Error struct {
	Kind        Kind
	StatusCode  int
	ContentType string
	Encoding    string

	// Err is the underlying cause, if any. It does not take part in
	// the reason or in equality.
	Err error
}

// Reason returns the human-readable explanation derived from the kind and payload.
func (e *Error) Reason() string {
	switch e.Kind {
	case NoMockProvided:
		return "No mock provided for the current request and method"
	case InvalidRequestURL:
		return "Invalid request URL"
	case MissingContentType:
		return "Response content type was missing"
	case InvalidParameter:
		return "Parameter is not convertible to bytes"
	case InvalidUploadFilePath:
		return "Invalid upload file path"
	case NoDataInResponse:
		return "No data in response"
	case NoResponseReceived:
		return "No response received"
	case UnacceptableStatusCode:
		return fmt.Sprintf("Response status code %d was unacceptable", e.StatusCode)
	case UnacceptableContentType:
		return fmt.Sprintf("Response content type %s was unacceptable", e.ContentType)
	case JSONArraySerializationFailed:
		return "No JSON array in response data"
	case JSONDictionarySerializationFailed:
		return "No JSON dictionary in response data"
	case StringSerializationFailed:
		return fmt.Sprintf("String could not be serialized with encoding: %s", e.Encoding)
	default:
		return "Unknown error"
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason(), e.Err)
	}
	return e.Reason()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target carrying
// a payload only matches errors with the same payload, so
// errors.Is(err, errs.Status(404)) is stricter than errors.Is(err, ErrUnacceptableStatusCode).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}

	switch t.Kind {
	case UnacceptableStatusCode:
		return t.StatusCode == 0 || t.StatusCode == e.StatusCode
	case UnacceptableContentType:
		return t.ContentType == "" || t.ContentType == e.ContentType
	case StringSerializationFailed:
		return t.Encoding == "" || t.Encoding == e.Encoding
	}

	return true
}

// Sentinels for use with errors.Is. Payload-carrying kinds match any payload.
var (
	ErrNoMockProvided                    = &Error{Kind: NoMockProvided}
	ErrInvalidRequestURL                 = &Error{Kind: InvalidRequestURL}
	ErrMissingContentType                = &Error{Kind: MissingContentType}
	ErrInvalidParameter                  = &Error{Kind: InvalidParameter}
	ErrInvalidUploadFilePath             = &Error{Kind: InvalidUploadFilePath}
	ErrNoDataInResponse                  = &Error{Kind: NoDataInResponse}
	ErrNoResponseReceived                = &Error{Kind: NoResponseReceived}
	ErrUnacceptableStatusCode            = &Error{Kind: UnacceptableStatusCode}
	ErrUnacceptableContentType           = &Error{Kind: UnacceptableContentType}
	ErrJSONArraySerializationFailed      = &Error{Kind: JSONArraySerializationFailed}
	ErrJSONDictionarySerializationFailed = &Error{Kind: JSONDictionarySerializationFailed}
	ErrStringSerializationFailed         = &Error{Kind: StringSerializationFailed}
)

// New constructs an error of a payload-free kind, wrapping cause if non-nil.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Status constructs an UnacceptableStatusCode error.
func Status(code int) *Error {
	return &Error{Kind: UnacceptableStatusCode, StatusCode: code}
}

// ContentType constructs an UnacceptableContentType error.
func ContentType(contentType string) *Error {
	return &Error{Kind: UnacceptableContentType, ContentType: contentType}
}

// Encoding constructs a StringSerializationFailed error.
func Encoding(encoding string, cause error) *Error {
	return &Error{Kind: StringSerializationFailed, Encoding: encoding, Err: cause}
}

// KindOf returns the taxonomy kind of err, if err is or wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

// IsTaxonomy reports whether err is or wraps an *Error.
func IsTaxonomy(err error) bool {
	_, ok := KindOf(err)
	return ok
}
