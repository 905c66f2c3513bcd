// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot flattens a decoded book into plain data for
// inspection and diffing.
//
// A [Snapshot] records every attribute with its type id and rendered
// value. Text payloads are materialized up to a rune limit; binary
// payloads are described by name, MIME type, size and BLAKE3 digest
// rather than embedded. Chapters nest as in the book.
//
// [Write] emits a snapshot as indented JSON, YAML or CBOR. CBOR output
// uses Core Deterministic Encoding, so equal snapshots produce equal
// bytes.
package snapshot
