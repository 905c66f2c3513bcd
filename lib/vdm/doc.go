// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package vdm implements virtual document containers: flat collections
// of named entries that codecs read and write as byte streams.
//
// Entry paths are '/'-separated and unique. Prefixes such as "text/"
// are conventional only; containers do not model directories.
//
// Two container types exist:
//
//   - [TypeZip] stores entries in a ZIP archive. Entries are written
//     with the configured [Compression]; [Writer.Store] always writes
//     uncompressed. ZIP entries compressed with zstd (method 93) are
//     readable regardless of the writer configuration.
//   - [TypeDir] maps entries to files below a directory, confined to
//     it with [os.Root].
//
// A [Writer] hands out one entry stream at a time: the stream returned
// by [Writer.Create] is valid until the next call to Create, Store or
// Close. A [Reader] may have several entries open at once, but codecs
// open, consume and close each entry before opening the next.
//
// [Digest] computes a keyed BLAKE3 checksum of an entry for
// inspection tooling.
package vdm
