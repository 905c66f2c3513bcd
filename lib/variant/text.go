// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Text subtypes used by Jem. Any other subtype is carried through
// unchanged.
const (
	TextPlain = "plain"
	TextHTML  = "html"
)

// DefaultCharset is the charset used when none is configured.
const DefaultCharset = "UTF-8"

// ErrUnknownCharset is returned for charset names missing from the
// WHATWG encoding index.
var ErrUnknownCharset = errors.New("variant: unknown charset")

// Text is a handle to textual content, such as a chapter body or a
// book introduction.
type Text interface {
	// Type returns the text subtype ("plain", "html", ...).
	Type() string

	// Text materializes the content. Lazy handles read their backing
	// store on every call and may fail.
	Text() (string, error)
}

// Opener opens a payload for reading. The caller closes the stream.
type Opener func() (io.ReadCloser, error)

// NewText returns an in-memory Text. An empty subtype means "plain".
func NewText(content, subtype string) Text {
	if subtype == "" {
		subtype = TextPlain
	}
	return &stringText{content: content, subtype: subtype}
}

type stringText struct {
	content string
	subtype string
}

func (t *stringText) Type() string { return t.subtype }

func (t *stringText) Text() (string, error) { return t.content, nil }

// NewLazyText returns a Text whose content is read through open and
// decoded from charset on every call to Text. Unknown charsets are
// reported at that point, not here.
func NewLazyText(subtype, charset string, open Opener) Text {
	if subtype == "" {
		subtype = TextPlain
	}
	if charset == "" {
		charset = DefaultCharset
	}
	return &LazyText{subtype: subtype, charset: charset, open: open}
}

// LazyText is the Text returned by NewLazyText.
type LazyText struct {
	subtype string
	charset string
	open    Opener
}

func (t *LazyText) Type() string { return t.subtype }

// Charset returns the charset the content is decoded from.
func (t *LazyText) Charset() string { return t.charset }

func (t *LazyText) Text() (string, error) {
	decoder, err := Charset(t.charset)
	if err != nil {
		return "", err
	}
	stream, err := t.open()
	if err != nil {
		return "", err
	}
	defer stream.Close()

	content, err := io.ReadAll(decoder.NewDecoder().Reader(stream))
	if err != nil {
		return "", fmt.Errorf("reading %s text: %w", t.charset, err)
	}
	return string(content), nil
}

// Charset resolves a charset name ("UTF-8", "gbk", "latin1", ...)
// through the WHATWG encoding index.
func Charset(name string) (encoding.Encoding, error) {
	resolved, err := htmlindex.Get(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return resolved, nil
}

// WriteText encodes content into charset and writes it to w.
func WriteText(w io.Writer, content, charset string) error {
	resolved, err := Charset(charset)
	if err != nil {
		return err
	}
	encoded, err := resolved.NewEncoder().String(content)
	if err != nil {
		return fmt.Errorf("encoding text as %s: %w", charset, err)
	}
	if _, err := io.WriteString(w, encoded); err != nil {
		return err
	}
	return nil
}
