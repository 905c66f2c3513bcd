// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/phylame/jem/cmd/jem/cli"
	"github.com/phylame/jem/lib/snapshot"
)

type dumpParams struct {
	commonParams
	Format  string `flag:"format,f" desc:"output format: json, yaml or cbor" default:"json"`
	MaxText int    `flag:"max-text" desc:"runes of each text to include (0 omits content, -1 keeps all)" default:"200"`
}

func dumpCommand(streams Streams) *cli.Command {
	var params dumpParams

	return &cli.Command{
		Name:    "dump",
		Summary: "Decode a book and print its snapshot",
		Description: `Decode a PMAB book and print every attribute, extension and chapter.

Attributes are printed with their type id and rendered value. Text is
cut to --max-text runes; files are described by name, media type, size
and BLAKE3 digest. CBOR output uses deterministic encoding, so two
dumps of equal books are byte-identical.`,
		Usage:  "jem dump [flags] <file>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "jem dump [flags] <file>"); err != nil {
				return err
			}
			format, err := snapshot.ParseFormat(params.Format)
			if err != nil {
				return err
			}
			env, err := params.setup(streams.Stderr, "dump")
			if err != nil {
				return err
			}

			b, reader, err := env.decode(ctx, args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			snap, err := snapshot.Build(b, snapshot.Options{Registry: env.registry, MaxText: params.MaxText})
			if err != nil {
				return err
			}
			env.logger.Debug("built snapshot", "source", args[0], "chapters", b.Count())
			return snapshot.Write(streams.Stdout, snap, format)
		},
	}
}
