// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the jem tools.
//
// Configuration is loaded from a single file named by the --config
// flag or the JEM_CONFIG environment variable (see [Resolve]). There
// is no ~/.config discovery and no automatic file search; without
// either, the built-in [Default] applies.
//
// Files are YAML. Files ending in .toml are TOML with the same keys.
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas, normalized before decoding.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${TMPDIR} and ${VAR:-default} patterns are expanded.
// No environment variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- master struct with PMAB, Container and Log sections
//   - [Default] -- a fully populated Config
//   - [Load], [LoadFile] and [Resolve] -- the loading entry points
//   - [Config.EncoderOptions], [Config.DecoderOptions] and
//     [Config.WriterOptions] -- translation into library options
package config
