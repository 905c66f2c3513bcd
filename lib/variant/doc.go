// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package variant implements Jem's typed value model.
//
// Book metadata is a bag of loosely typed attributes: a title is a
// string, a word count an integer, a publication date a civil date, a
// cover an embedded binary resource. On the wire (PMAB XML) every
// value is a symbolic type id plus a text payload. This package is the
// bridge between the two representations:
//
//   - [Registry] maps type ids ("int", "real", "str", "bool", "date",
//     "time", "datetime", "locale", "text", "file") to Go kinds, picks
//     the best type id for a concrete value ([Registry.TypeFor]), and
//     provides per-type defaults, some of them computed at lookup
//     time through a [Default] supplier.
//   - [Converter] renders a value to canonical text and parses it
//     back. [NewTemporal] builds converters for date/time patterns
//     written in the yyyy-MM-dd vocabulary (see [Layout]).
//   - [Map] is the ordered, optionally validated name → value mapping
//     used for book attributes, extensions and chapter attributes.
//   - [Text] and [Blob] are handles for payloads too large to inline.
//     Lazy variants defer the read until first access.
//
// Go kinds for the builtin types:
//
//	int       int64 (other integer kinds are accepted on write)
//	real      float64 (float32 accepted on write)
//	str       string (fmt.Stringer accepted on write)
//	bool      bool
//	date      LocalDate
//	time      LocalTime
//	datetime  time.Time
//	locale    language.Tag (golang.org/x/text/language)
//	text      Text
//	file      Blob
//
// A Registry is safe for concurrent use. A Map is not.
package variant
