// Package client dispatches declarative requests and resolves their results
// asynchronously.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithBaseURL("https://api.example.com"),
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Sending Requests
//
// Describe the call with a [request.Message] and a verb, then dispatch it.
// [Client.Send] returns immediately with a [Ride]; the result arrives on the
// ride's promise once the response has passed validation:
//
//	msg := request.NewMessage("/users")
//	msg.Parameters = map[string]any{"page": 2}
//
//	ride, err := c.Send(ctx, request.GET(msg))
//	ride.Then(func(res task.Result) { ... }).Fail(func(err error) { ... })
//
// Serialization problems (an unusable URL, a parameter that can't be encoded,
// a missing upload) are returned by Send itself and nothing is dispatched.
//
// # Typed Results
//
// [SendData], [SendString], [SendJSONArray], [SendJSONDictionary] and
// [SendJSON] add a decoding stage. The JSON variants accept only JSON content
// types unless [WithContentTypes] says otherwise:
//
//	ride, err := client.SendJSON[[]User](ctx, c, request.GET(request.NewMessage("/users")))
//	users, err := ride.Wait(ctx)
//
// Every failure after dispatch is either the transport's own error, passed
// through untouched, or an [errs.Error] from the validation pipeline.
//
// # Mocking
//
// [WithMocks] substitutes outcomes queued in a [mock.Registry] for network
// I/O. In [mock.Strict] mode a request with nothing queued fails with
// [errs.ErrNoMockProvided]:
//
//	reg := mock.NewRegistry()
//	reg.Mock(request.MethodGet, "https://api.example.com/users").JSON(users).Add()
//	c, _ := client.Build(client.WithMocks(reg, mock.Strict))
package client
