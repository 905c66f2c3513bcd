// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/phylame/jem/cmd/jem/cli"
	"github.com/phylame/jem/lib/config"
	"github.com/phylame/jem/lib/pmab"
	"github.com/phylame/jem/lib/vdm"
)

type repackParams struct {
	commonParams
	Type        string `flag:"type,t" desc:"output container type: zip or dir (overrides config)"`
	Compression string `flag:"compression" desc:"zip entry compression: deflate, store or zstd (overrides config)"`
	Level       string `flag:"level" desc:"compression level (overrides config)"`
	Encoding    string `flag:"encoding" desc:"charset for text payloads, e.g. UTF-8 or GBK (overrides config)"`
	Force       bool   `flag:"force" desc:"replace an existing destination"`
}

func repackCommand(streams Streams) *cli.Command {
	var params repackParams

	return &cli.Command{
		Name:    "repack",
		Summary: "Decode a book and encode it into a new container",
		Description: `Decode a PMAB book and write it again with the configured encoder.

The output is staged in a temporary sibling of <dst> (or in
container.temp_dir) and renamed into place only after the container is
complete, so a failed repack never leaves a partial book at <dst>.`,
		Usage:  "jem repack [flags] <src> <dst>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 2, "jem repack [flags] <src> <dst>"); err != nil {
				return err
			}
			env, err := params.setup(streams.Stderr, "repack")
			if err != nil {
				return err
			}
			if err := params.override(env.config); err != nil {
				return err
			}
			source, destination := args[0], filepath.Clean(args[1])
			logger := env.logger.With("source", source, "destination", destination)

			containerType, err := env.config.ContainerType()
			if err != nil {
				return err
			}
			writerOptions, err := env.config.WriterOptions()
			if err != nil {
				return err
			}
			encoderOptions, err := env.config.EncoderOptions(env.registry, env.logger)
			if err != nil {
				return err
			}
			encoder, err := pmab.NewEncoder(encoderOptions)
			if err != nil {
				return err
			}
			lock, err := lockDestination(destination)
			if err != nil {
				return err
			}
			defer lock.release(logger)

			if err := checkDestination(destination, params.Force); err != nil {
				return err
			}

			b, reader, err := env.decode(ctx, source)
			if err != nil {
				return err
			}
			defer reader.Close()

			staging, err := stagingPath(env.config, destination, containerType)
			if err != nil {
				return err
			}
			writer, err := vdm.Create(staging, containerType, writerOptions)
			if err != nil {
				os.RemoveAll(staging)
				return err
			}
			if err := encoder.Encode(ctx, b, writer); err != nil {
				writer.Close()
				os.RemoveAll(staging)
				return fmt.Errorf("encoding %s: %w", destination, err)
			}
			if err := writer.Close(); err != nil {
				os.RemoveAll(staging)
				return fmt.Errorf("finishing %s: %w", destination, err)
			}

			if params.Force {
				if err := os.RemoveAll(destination); err != nil {
					os.RemoveAll(staging)
					return fmt.Errorf("replacing %s: %w", destination, err)
				}
			}
			if err := os.Rename(staging, destination); err != nil {
				os.RemoveAll(staging)
				return fmt.Errorf("promoting %s: %w", destination, err)
			}

			logger.Info("repacked book",
				"type", containerType,
				"compression", writerOptions.Compression.String(),
				"encoding", env.config.PMAB.TextEncoding,
				"chapters", b.Count(),
			)
			return nil
		},
	}
}

// override applies flags that were given on top of cfg.
func (p *repackParams) override(cfg *config.Config) error {
	if p.Type != "" {
		cfg.Container.Type = p.Type
	}
	if p.Compression != "" {
		cfg.Container.Compression = p.Compression
	}
	if p.Level != "" {
		level, err := strconv.Atoi(p.Level)
		if err != nil {
			return fmt.Errorf("--level: %w", err)
		}
		cfg.Container.Level = level
	}
	if p.Encoding != "" {
		cfg.PMAB.TextEncoding = p.Encoding
	}
	return cfg.Validate()
}

// destinationLock serializes repacks that target the same path.
type destinationLock struct {
	lock *flock.Flock
}

func lockDestination(destination string) (*destinationLock, error) {
	path := filepath.Join(filepath.Dir(destination), "."+filepath.Base(destination)+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another repack to %s is in progress (lock %s)", destination, path)
	}
	return &destinationLock{lock: lock}, nil
}

func (l *destinationLock) release(logger *slog.Logger) {
	if err := l.lock.Unlock(); err != nil {
		logger.Warn("failed to release destination lock", "lock", l.lock.Path(), "error", err)
	}
	if err := os.Remove(l.lock.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove destination lock", "lock", l.lock.Path(), "error", err)
	}
}

func checkDestination(destination string, force bool) error {
	_, err := os.Lstat(destination)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	case !force:
		return fmt.Errorf("%s already exists (use --force to replace it)", destination)
	default:
		return nil
	}
}

// stagingPath reserves a fresh path for the output. Zip output gets
// an empty file, directory output an empty directory; either is
// replaced by vdm.Create.
func stagingPath(cfg *config.Config, destination string, containerType vdm.Type) (string, error) {
	dir := cfg.Container.TempDir
	if dir == "" {
		dir = filepath.Dir(destination)
	}
	pattern := "." + filepath.Base(destination) + ".tmp-*"

	if containerType == vdm.TypeDir {
		return os.MkdirTemp(dir, pattern)
	}
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	name := file.Name()
	return name, file.Close()
}
