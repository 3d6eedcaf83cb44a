// Package mock scripts canned outcomes for dispatches so tests never reach
// the network.
//
// A [Registry] keeps a FIFO queue of [Outcome] values per (method, resource)
// key. The dispatcher consumes the head of the queue instead of calling the
// transport:
//
//	reg := mock.NewRegistry()
//	reg.Mock(request.MethodGet, "https://api.example.com/users").
//		Status(http.StatusOK).
//		JSON([]string{"alice"}).
//		Add()
//
//	c, _ := client.Build(client.WithMocks(reg, mock.Strict))
//
// In [Strict] mode an exhausted queue fails the dispatch with
// NoMockProvided rather than falling through to real I/O.
//
// Registries can also be populated from YAML fixture files with
// [Registry.LoadFile].
package mock
