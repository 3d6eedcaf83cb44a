package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/adamwoolhether/courier/internal/config"
	"github.com/adamwoolhether/courier/internal/replay"
	"github.com/adamwoolhether/courier/internal/web/server"
)

var errNoFixtures = errors.New("replay: no fixture files given and mock.file is unset")

// runReplay serves fixtures over HTTP until ctx ends.
func runReplay(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("courier replay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "YAML configuration file")
	envFile := fs.String("env", "", "dotenv file, defaults to .env when present")
	addr := fs.String("addr", "", "listen address, overrides replay.addr")
	origin := fs.String("origin", "", "absolute origin fixtures are keyed under, overrides replay.origin")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Replay.Addr = *addr
	}
	if *origin != "" {
		cfg.Replay.Origin = *origin
	}

	files := fs.Args()
	if len(files) == 0 && cfg.Mock.File != "" {
		files = []string{cfg.Mock.File}
	}
	if len(files) == 0 {
		return errNoFixtures
	}

	log, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	reg, err := loadFixtures(files...)
	if err != nil {
		return err
	}

	tp, shutdownTracer, err := initTracer(ctx, cfg.Trace)
	if err != nil {
		return err
	}

	h, err := replay.New(reg, cfg.Replay.Origin,
		replay.WithLogger(log),
		replay.WithTracer(tp.Tracer("github.com/adamwoolhether/courier/internal/replay")),
	)
	if err != nil {
		return fmt.Errorf("building replay handler: %w", err)
	}

	srv := server.New(h,
		server.WithHost(cfg.Replay.Addr),
		server.WithLogger(log),
		server.WithShutdownTimeout(cfg.Replay.ShutdownTimeout),
		server.WithShutdownFunc(shutdownTracer),
	)

	log.Info("replaying fixtures", "files", files, "origin", cfg.Replay.Origin, "pending", len(reg.Pending()))

	return srv.Run(ctx)
}
