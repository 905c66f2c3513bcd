// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package book is the in-memory document tree of an e-book: a [Book]
// root that owns book-level attributes and free-form extensions, and
// a recursive tree of [Chapter] nodes that form the table of contents.
//
// Every node carries a [variant.Map] of attributes and an optional
// body [variant.Text]. A node is a section when it has at least one
// child and a leaf chapter otherwise; the classification is
// structural and never stored.
//
// The tree has no serialization logic of its own. Codecs such as
// package pmab walk it through [Chapter.Children] and rebuild it with
// [Chapter.NewChild].
//
// # Vocabulary
//
// Well-known attribute names (title, author, cover, ...) have a
// declared type, available through [DeclaredType]. Accessors such as
// [Chapter.Title] read those names and fall back to an empty value of
// the declared kind. [Validator] builds a map validator that rejects
// values whose registry type contradicts the declared type.
//
// # Concurrency
//
// A tree is not safe for concurrent mutation. Independent trees may
// be used from different goroutines.
package book
