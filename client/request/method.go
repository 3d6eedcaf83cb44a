package request

import (
	"mime"
	"strings"
)

// Method is one of the HTTP methods a Requestable can carry.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
	MethodHead   Method = "HEAD"
)

// Methods lists every supported method.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead:
		return true
	}
	return false
}

// HasBody reports whether parameters for m travel in the request body.
func (m Method) HasBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	}
	return false
}

// ContentType selects how body parameters are encoded. Any media type whose
// subtype is json or ends in +json is encoded as JSON.
type ContentType string

const (
	// Query forces parameters into the query string even for body methods.
	Query             ContentType = "query"
	JSON              ContentType = "application/json"
	FormURLEncoded    ContentType = "application/x-www-form-urlencoded"
	MultipartFormData ContentType = "multipart/form-data"
)

type encoding int

const (
	encUnsupported encoding = iota
	encQuery
	encJSON
	encForm
	encMultipart
)

func (ct ContentType) encoding() encoding {
	if ct == "" || ct == JSON {
		return encJSON
	}
	if ct == Query {
		return encQuery
	}

	mediaType, _, err := mime.ParseMediaType(string(ct))
	if err != nil {
		return encUnsupported
	}

	switch {
	case mediaType == string(FormURLEncoded):
		return encForm
	case mediaType == string(MultipartFormData):
		return encMultipart
	case strings.HasSuffix(mediaType, "/json"), strings.HasSuffix(mediaType, "+json"):
		return encJSON
	}

	return encUnsupported
}
