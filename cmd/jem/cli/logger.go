// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/term"
)

// Log formats accepted by NewCommandLogger.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewCommandLogger creates a structured logger writing to w. With the
// auto format it uses slog.TextHandler when w is a terminal and
// slog.JSONHandler when it is piped or redirected, so scripted runs
// get machine-parseable output.
//
// Callers scope the logger with command-specific context via With():
//
//	logger = logger.With("command", "repack", "source", source)
func NewCommandLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}
	switch format {
	case "", LogFormatAuto:
		if isTerminal(w) {
			return slog.New(slog.NewTextHandler(w, options)), nil
		}
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case LogFormatText:
		return slog.New(slog.NewTextHandler(w, options)), nil
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, text or json)", format)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}
