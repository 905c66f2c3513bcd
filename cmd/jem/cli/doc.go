// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the jem CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a flag source and a Run
// function. Flags come either from a [pflag.FlagSet] factory or from a
// tagged parameter struct bound by [FlagsFromParams]. Commands are
// assembled into a tree in cmd/jem/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// [NewCommandLogger] builds the structured logger commands write
// diagnostics to.
package cli
