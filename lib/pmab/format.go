// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package pmab

import (
	"regexp"
	"strconv"
	"strings"
)

// MIMEType is the content of the mimetype entry.
const MIMEType = "application/pmab+zip"

// Container entry names and payload directories.
const (
	EntryMIMEType = "mimetype"
	EntryBook     = "book.xml"
	EntryContent  = "content.xml"

	textDir      = "text/"
	resourcesDir = "resources/"

	// bookTextName names the entry holding the root node's own body.
	bookTextName = "book"
)

// Document versions.
const (
	Version3 = "3.0"

	// Version2 is recognized but not decodable.
	Version2 = "2.0"
)

// Default patterns the encoder uses for temporal values.
const (
	DefaultDateFormat     = "yyyy-MM-dd"
	DefaultTimeFormat     = "HH:mm:ss"
	DefaultDateTimeFormat = "yyyy-MM-dd HH:mm:ss"
)

const (
	tagBook       = "pbm"
	tagContent    = "pbc"
	tagAttributes = "attributes"
	tagExtensions = "extensions"
	tagItem       = "item"
	tagChapter    = "chapter"
	tagBody       = "content"

	attrVersion = "version"
	attrName    = "name"
	attrType    = "type"

	paramEncoding = "encoding"
	paramFormat   = "format"

	chapterPrefix   = "chapter"
	extensionPrefix = "extension-"
)

// mimePattern matches a bare type/subtype pair.
var mimePattern = regexp.MustCompile(`^[A-Za-z0-9][\w.+-]*/[A-Za-z0-9][\w.+-]*$`)

// splitType splits a type tag into its base and its ;key=value
// parameters. Keys are lower-cased; a parameter without '=' is kept
// with an empty value.
func splitType(tag string) (string, map[string]string) {
	parts := strings.Split(tag, ";")
	base := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return base, nil
	}
	params := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			params[key] = strings.TrimSpace(value)
		}
	}
	return base, params
}

// joinType appends one parameter to a type tag.
func joinType(base, key, value string) string {
	return base + ";" + key + "=" + value
}

// nodePrefix returns the name prefix of the chapter at path, for
// example "chapter-2-1-" for [2 1]. The root has no prefix.
func nodePrefix(path []int) string {
	if len(path) == 0 {
		return ""
	}
	return nodeName(path) + "-"
}

// nodeName returns "chapter-2-1" for [2 1].
func nodeName(path []int) string {
	var name strings.Builder
	name.WriteString(chapterPrefix)
	for _, index := range path {
		name.WriteByte('-')
		name.WriteString(strconv.Itoa(index))
	}
	return name.String()
}

// textExtension returns the file extension for a text subtype.
func textExtension(subtype string) string {
	if subtype == "" || subtype == "plain" {
		return "txt"
	}
	return subtype
}
