package throttle_test

import (
	"fmt"
	"log/slog"

	"github.com/adamwoolhether/courier/client/throttle"
	"github.com/adamwoolhether/courier/client/transport"
)

func ExampleNewTransport() {
	tr, err := throttle.NewTransport(
		10, // submissions per second
		5,  // burst capacity
		func() *slog.Logger { return slog.Default() },
		transport.NewHTTP(nil),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = tr

	fmt.Println("throttled transport created")
	// Output: throttled transport created
}
