// Command courier sends a single HTTP request through the courier client
// and prints the decoded response, or replays mock fixtures over HTTP.
//
// Usage:
//
//	courier [flags] METHOD URL [key=value | key=@file ...]
//	courier replay [flags] [fixtures.yaml ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamwoolhether/courier/client/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "courier:", err)
		if errs.IsOffline(err) {
			fmt.Fprintln(os.Stderr, "hint: the host could not be reached, check your network connection")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "replay" {
		return runReplay(ctx, args[1:], stderr)
	}

	return runSend(ctx, args, stdout, stderr)
}

var errUsage = errors.New("usage: courier [flags] METHOD URL [key=value ...]")
