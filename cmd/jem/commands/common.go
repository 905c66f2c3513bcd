// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phylame/jem/cmd/jem/cli"
	"github.com/phylame/jem/lib/book"
	"github.com/phylame/jem/lib/config"
	"github.com/phylame/jem/lib/pmab"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

// commonParams are accepted by every command.
type commonParams struct {
	Config   string `flag:"config" desc:"configuration file (default: $JEM_CONFIG)"`
	LogLevel string `flag:"log-level" desc:"log level: debug, info, warn or error (overrides config)"`
}

// environment is what a command needs after its flags are parsed.
type environment struct {
	config   *config.Config
	logger   *slog.Logger
	registry *variant.Registry
}

func (p commonParams) setup(stderr io.Writer, command string) (*environment, error) {
	cfg, err := config.Resolve(p.Config)
	if err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if p.LogLevel != "" {
		if err := level.UnmarshalText([]byte(p.LogLevel)); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	logger, err := cli.NewCommandLogger(stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	return &environment{
		config:   cfg,
		logger:   logger.With("command", command),
		registry: variant.Builtin(),
	}, nil
}

// decode opens the container at path and decodes it. The returned
// container backs the book's lazy payloads; the caller closes it once
// done with the book.
func (env *environment) decode(ctx context.Context, path string) (*book.Book, vdm.Reader, error) {
	options, err := env.config.DecoderOptions(env.registry, env.logger)
	if err != nil {
		return nil, nil, err
	}
	decoder, err := pmab.NewDecoder(options)
	if err != nil {
		return nil, nil, err
	}

	reader, err := vdm.Open(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := decoder.Decode(ctx, reader)
	if err != nil {
		reader.Close()
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return b, reader, nil
}

func requireArgs(args []string, count int, usage string) error {
	if len(args) != count {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
