// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/phylame/jem/cmd/jem/cli"
	"github.com/phylame/jem/lib/snapshot"
	"github.com/phylame/jem/lib/version"
)

type versionParams struct {
	Format string `flag:"format,f" desc:"output format: text, json or yaml" default:"text"`
}

func versionCommand(streams Streams) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string) error {
			if params.Format == "text" {
				fmt.Fprintf(streams.Stdout, "jem %s\n", version.Full())
				return nil
			}
			format, err := snapshot.ParseFormat(params.Format)
			if err != nil {
				return err
			}
			return snapshot.Write(streams.Stdout, version.Current(), format)
		},
	}
}
