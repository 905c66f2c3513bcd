// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package pmab reads and writes PMAB books: a [book.Book] serialized
// into a [vdm] container as two XML documents plus externalized
// payload entries.
//
// # Layout
//
//	mimetype          "application/pmab+zip", stored first and uncompressed
//	book.xml          <pbm version="3.0"> with <attributes> and <extensions>
//	content.xml       <pbc version="3.0"> with a recursive <chapter> tree
//	text/<name>.<ext>       externalized text payloads
//	resources/<name>.<ext>  externalized binary payloads
//
// Every attribute is an <item name=".." type="..">text</item>. The
// type attribute is a builtin type id ("int", "str", ...), a temporal
// id with a pattern ("date;format=yyyy-MM-dd"), a text type with a
// charset ("text/plain;encoding=UTF-8") whose text names a text/
// entry, or the MIME type of a binary payload whose text names a
// resources/ entry.
//
// Chapter items carry a path prefix such as "chapter-2-1-" in their
// name so that externalized payloads stay unique within the
// container. The decoder strips the prefix of the enclosing chapter
// and also accepts unprefixed names.
//
// # Decoding
//
// [Decoder.Decode] verifies the mimetype entry, then pull-parses both
// documents and dispatches on the root version attribute. Only 3.0 is
// implemented. Externalized payloads become lazy handles that read
// the container on access, so the [vdm.Reader] must stay open as long
// as the returned book is used.
//
// Both directions honor context cancellation once per chapter and fail
// with [ErrInterrupted].
package pmab
