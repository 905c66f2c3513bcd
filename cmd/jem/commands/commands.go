// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the jem command tree.
package commands

import (
	"io"
	"os"

	"github.com/phylame/jem/cmd/jem/cli"
)

// Streams are the output streams commands write to.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StandardStreams returns the process's stdout and stderr.
func StandardStreams() Streams {
	return Streams{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Root builds the complete jem command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "jem",
		Description: `jem: read, inspect and rewrite PMAB e-books.

PMAB is a ZIP (or directory) container holding book.xml for book-level
metadata, content.xml for the chapter tree, and externalized text and
binary payloads.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			inspectCommand(streams),
			dumpCommand(streams),
			repackCommand(streams),
			versionCommand(streams),
		},
		Examples: []cli.Example{
			{
				Description: "List the entries of a book with their digests",
				Command:     "jem inspect novel.pmab",
			},
			{
				Description: "Print the book tree as YAML, keeping 80 runes of each text",
				Command:     "jem dump --format yaml --max-text 80 novel.pmab",
			},
			{
				Description: "Rewrite a book with zstd entries and GBK text",
				Command:     "jem repack --compression zstd --encoding GBK novel.pmab novel-gbk.pmab",
			},
			{
				Description: "Unpack a book into a directory container",
				Command:     "jem repack --type dir novel.pmab novel/",
			},
		},
	}
}
