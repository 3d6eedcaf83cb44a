package request

// Message describes a logical HTTP call. It is treated as read-only once
// wrapped in a Requestable.
type Message struct {
	// Resource is the target URI. A relative resource is joined to the
	// base URL given with WithBaseURL.
	Resource string `json:"resource" validate:"required"`
	// Parameters are encoded into the query string or the body depending
	// on the method and content type.
	Parameters map[string]any `json:"parameters"`
	// Headers are applied after any default headers.
	Headers map[string]string `json:"headers" validate:"dive,keys,required,endkeys"`
}

// NewMessage returns a Message for resource with empty parameters and headers.
func NewMessage(resource string) Message {
	return Message{
		Resource:   resource,
		Parameters: map[string]any{},
		Headers:    map[string]string{},
	}
}

// Requestable is anything that can be serialized into an HTTP request by
// [Build]. Callers may implement it on their own types.
type Requestable interface {
	Method() Method
	Message() Message
	ContentType() ContentType
}

// Request is the tagged-union Requestable: a method paired with its Message.
type Request struct {
	Verb    Method
	Msg     Message
	Content ContentType
}

// Method implements Requestable.
func (r Request) Method() Method { return r.Verb }

// Message implements Requestable.
func (r Request) Message() Message { return r.Msg }

// ContentType defaults to JSON when unset.
func (r Request) ContentType() ContentType {
	if r.Content == "" {
		return JSON
	}
	return r.Content
}

// As returns a copy of r encoding its body with ct.
func (r Request) As(ct ContentType) Request {
	r.Content = ct
	return r
}

// GET returns a GET request for msg. Parameters encode into the query.
func GET(msg Message) Request { return Request{Verb: MethodGet, Msg: msg} }

// POST returns a POST request for msg, with a JSON body by default.
func POST(msg Message) Request { return Request{Verb: MethodPost, Msg: msg} }

// PUT returns a PUT request for msg, with a JSON body by default.
func PUT(msg Message) Request { return Request{Verb: MethodPut, Msg: msg} }

// PATCH returns a PATCH request for msg, with a JSON body by default.
func PATCH(msg Message) Request { return Request{Verb: MethodPatch, Msg: msg} }

// DELETE returns a DELETE request for msg. Parameters encode into the query.
func DELETE(msg Message) Request { return Request{Verb: MethodDelete, Msg: msg} }

// HEAD returns a HEAD request for msg. Parameters encode into the query.
func HEAD(msg Message) Request { return Request{Verb: MethodHead, Msg: msg} }
