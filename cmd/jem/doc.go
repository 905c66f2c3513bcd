// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Jem reads, inspects and rewrites PMAB e-books.
//
// Usage:
//
//	jem inspect <file>
//	jem dump [--format json|yaml|cbor] [--max-text N] <file>
//	jem repack [--type zip|dir] [--compression m] [--level n] [--encoding cs] <src> <dst>
//	jem version
//
// Every command accepts --config (default $JEM_CONFIG) and --log-level.
// Interrupting a running decode or encode with Ctrl-C cancels it at the
// next chapter boundary.
package main
