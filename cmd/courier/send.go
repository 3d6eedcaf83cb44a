package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/client/mock"
	"github.com/adamwoolhether/courier/client/request"
	"github.com/adamwoolhether/courier/internal/config"
)

func runSend(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("courier", flag.ContinueOnError)
	fs.SetOutput(stderr)

	headers := headerFlag{}
	var statuses, accept listFlag

	configFile := fs.String("config", "", "YAML configuration file")
	envFile := fs.String("env", "", "dotenv file, defaults to .env when present")
	as := fs.String("as", "", "body encoding: query, json, form or multipart")
	decode := fs.String("decode", "raw", "output decoding: raw, string or json")
	encoding := fs.String("encoding", "", "text encoding for -decode string, defaults to the response charset")
	mockFile := fs.String("mock-file", "", "answer from this fixture file instead of the network")
	verbose := fs.Bool("v", false, "log at debug level")
	fs.Var(headers, "H", "request header as \"Name: value\", repeatable")
	fs.Var(&statuses, "status", "acceptable status codes, repeatable or comma separated")
	fs.Var(&accept, "accept", "acceptable response content types, repeatable or comma separated")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errUsage
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return err
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *mockFile != "" {
		cfg.Mock.File = *mockFile
		cfg.Mock.Mode = mock.Strict.String()
	}

	log, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	req, err := buildRequest(fs.Arg(0), fs.Arg(1), fs.Args()[2:], headers, *as)
	if err != nil {
		return err
	}

	sendOpts, err := buildSendOptions(statuses, accept)
	if err != nil {
		return err
	}

	tp, shutdown, err := initTracer(ctx, cfg.Trace)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Error("tracer shutdown", "error", err)
		}
	}()

	clientOpts, err := clientOptions(cfg, log)
	if err != nil {
		return err
	}
	clientOpts = append(clientOpts, client.WithTracerProvider(tp))

	c, err := client.Build(clientOpts...)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}
	defer c.Close(context.WithoutCancel(ctx))

	out, err := send(ctx, c, req, *decode, *encoding, sendOpts)
	if err != nil {
		return err
	}

	if _, err := stdout.Write(out); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	return nil
}

func buildRequest(method, resource string, params []string, headers headerFlag, as string) (request.Request, error) {
	m := request.Method(strings.ToUpper(method))
	if !m.Valid() {
		return request.Request{}, fmt.Errorf("unsupported method %q", method)
	}

	msg := request.NewMessage(resource)
	if len(headers) > 0 {
		msg.Headers = headers
	}

	p, err := parseParams(params)
	if err != nil {
		return request.Request{}, err
	}
	if len(p) > 0 {
		msg.Parameters = p
	}

	req := request.Request{Verb: m, Msg: msg}
	if as != "" {
		ct, ok := contentTypes[as]
		if !ok {
			return request.Request{}, fmt.Errorf("unsupported body encoding %q", as)
		}
		req = req.As(ct)
	}

	return req, nil
}

func buildSendOptions(statuses, accept listFlag) ([]client.SendOption, error) {
	var opts []client.SendOption

	if len(statuses) > 0 {
		codes, err := statuses.ints()
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithStatusCodes(codes...))
	}
	if len(accept) > 0 {
		opts = append(opts, client.WithContentTypes(accept...))
	}

	return opts, nil
}

// send dispatches req and waits for the body in the requested decoding.
func send(ctx context.Context, c *client.Client, req request.Request, decode, encoding string, opts []client.SendOption) ([]byte, error) {
	switch decode {
	case "raw":
		ride, err := client.SendData(ctx, c, req, opts...)
		if err != nil {
			return nil, err
		}
		return ride.Wait(ctx)

	case "string":
		ride, err := client.SendString(ctx, c, req, encoding, opts...)
		if err != nil {
			return nil, err
		}
		s, err := ride.Wait(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(s + "\n"), nil

	case "json":
		ride, err := client.SendJSON[any](ctx, c, req, append(opts, client.WithJSONNumb())...)
		if err != nil {
			return nil, err
		}
		v, err := ride.Wait(ctx)
		if err != nil {
			return nil, err
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("formatting json: %w", err)
		}
		return append(out, '\n'), nil
	}

	return nil, fmt.Errorf("unsupported decoding %q", decode)
}
