package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/internal/config"
)

func newLogger(cfg config.Log, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// loadFixtures reads every path into a fresh registry.
func loadFixtures(paths ...string) (*mock.Registry, error) {
	reg := mock.NewRegistry()
	for _, path := range paths {
		if err := reg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func clientOptions(cfg *config.Config, log *slog.Logger) ([]client.Option, error) {
	opts := []client.Option{
		client.WithLogger(log),
		client.WithTimeout(cfg.Client.Timeout),
		client.WithUserAgent(cfg.Client.UserAgent),
		client.WithMaxInFlight(cfg.Client.MaxInFlight),
	}

	if cfg.Client.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(cfg.Client.BaseURL))
	}
	if cfg.Client.Throttle.RPS > 0 {
		opts = append(opts, client.WithThrottle(cfg.Client.Throttle.RPS, cfg.Client.Throttle.Burst))
	}

	if mode := cfg.MockMode(); mode != mock.Off {
		reg, err := loadFixtures(cfg.Mock.File)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithMocks(reg, mode))
	}

	return opts, nil
}
