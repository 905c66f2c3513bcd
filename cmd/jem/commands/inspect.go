// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/phylame/jem/cmd/jem/cli"
	"github.com/phylame/jem/lib/pmab"
	"github.com/phylame/jem/lib/vdm"
)

type inspectParams struct {
	commonParams
	FullDigest bool `flag:"full-digest" desc:"print full BLAKE3 digests instead of 12-character prefixes"`
}

func inspectCommand(streams Streams) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "List container entries with sizes and digests",
		Description: `Open a container and list its entries.

Prints the container type and whether it carries the PMAB media type,
then one line per entry with its uncompressed size and keyed BLAKE3
digest. Exits 1 without an error message when the container is
readable but is not a PMAB book.`,
		Usage:  "jem inspect [flags] <file>",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs(args, 1, "jem inspect [flags] <file>"); err != nil {
				return err
			}
			env, err := params.setup(streams.Stderr, "inspect")
			if err != nil {
				return err
			}

			reader, err := vdm.Open(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			isPMAB, err := pmab.Sniff(reader)
			if err != nil {
				return err
			}

			fmt.Fprintf(streams.Stdout, "container: %s (%s)\n", reader.Name(), reader.Type())
			fmt.Fprintf(streams.Stdout, "pmab:      %t\n\n", isPMAB)

			var rows [][]string
			var total int64
			for _, entry := range reader.Entries() {
				if err := ctx.Err(); err != nil {
					return err
				}
				hash, size, err := vdm.Digest(reader, entry)
				if err != nil {
					return err
				}
				digest := hash.Short()
				if params.FullDigest {
					digest = hash.String()
				}
				rows = append(rows, []string{entry, strconv.FormatInt(size, 10), digest})
				total += size
			}
			fmt.Fprintln(streams.Stdout, renderTable(
				[]string{"Entry", "Size", "Digest"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(streams.Stdout, "%d entries, %s\n", len(rows), humanize.Bytes(uint64(total)))
			env.logger.Debug("inspected container",
				"container", reader.Name(),
				"entries", len(rows),
				"bytes", total,
			)

			if !isPMAB {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
