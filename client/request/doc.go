// Package request models HTTP calls declaratively and serializes them into
// [net/http] requests.
//
// A [Message] names the target resource, its parameters and headers. A
// [Requestable] pairs a Message with one of the six supported methods;
// [Request] is the ready-made implementation:
//
//	msg := request.Message{
//		Resource:   "https://api.example.com/users",
//		Parameters: map[string]any{"page": 2},
//	}
//	req, err := request.Build(ctx, request.GET(msg))
//
// GET, DELETE and HEAD encode parameters into the query string with keys
// sorted. POST, PUT and PATCH encode them into the body according to the
// request's [ContentType]. Building the same Requestable twice yields
// byte-identical requests.
package request
