// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"unicode/utf8"

	"github.com/phylame/jem/lib/book"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

// Snapshot is the plain-data form of a book.
type Snapshot struct {
	Title      string      `json:"title" yaml:"title"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Extensions []Attribute `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Body       *Text       `json:"body,omitempty" yaml:"body,omitempty"`
	Chapters   []Chapter   `json:"chapters,omitempty" yaml:"chapters,omitempty"`
}

// Chapter is the plain-data form of one chapter or section.
type Chapter struct {
	Title      string      `json:"title" yaml:"title"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Body       *Text       `json:"body,omitempty" yaml:"body,omitempty"`
	Chapters   []Chapter   `json:"chapters,omitempty" yaml:"chapters,omitempty"`
}

// Attribute is one named value. Exactly one of Value, Text and Blob
// is set.
type Attribute struct {
	Name string `json:"name" yaml:"name"`

	// Type is the registry type id, or empty for unregistered values.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Text  *Text  `json:"text,omitempty" yaml:"text,omitempty"`
	Blob  *Blob  `json:"blob,omitempty" yaml:"blob,omitempty"`
}

// Text describes a text payload.
type Text struct {
	Type    string `json:"type" yaml:"type"`
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`

	// Content holds the first runes of the text, up to the limit.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Runes is the full length of the text.
	Runes int `json:"runes" yaml:"runes"`

	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// Blob describes a binary payload.
type Blob struct {
	Name   string `json:"name" yaml:"name"`
	MIME   string `json:"mime" yaml:"mime"`
	Size   int64  `json:"size" yaml:"size"`
	Digest string `json:"digest" yaml:"digest"`
}

// Options configures Build.
type Options struct {
	// Registry classifies and renders values. Nil uses the shared
	// builtin registry.
	Registry *variant.Registry

	// MaxText limits materialized text to that many runes. Zero omits
	// content; a negative value keeps all of it.
	MaxText int
}

// Build snapshots b. Lazy payloads are read, so a decoded book's
// container must still be open.
func Build(b *book.Book, options Options) (*Snapshot, error) {
	if options.Registry == nil {
		options.Registry = variant.Builtin()
	}
	builder := &builder{options: options}

	snapshot := &Snapshot{Title: b.Title()}
	var err error
	if snapshot.Attributes, err = builder.attributes(b.Attributes); err != nil {
		return nil, err
	}
	if snapshot.Extensions, err = builder.attributes(b.Extensions); err != nil {
		return nil, err
	}
	if snapshot.Body, err = builder.body(b.Text); err != nil {
		return nil, err
	}
	if snapshot.Chapters, err = builder.chapters(b.Root()); err != nil {
		return nil, err
	}
	return snapshot, nil
}

type builder struct {
	options Options
}

func (b *builder) chapters(parent *book.Chapter) ([]Chapter, error) {
	var chapters []Chapter
	for _, child := range parent.Children() {
		chapter := Chapter{Title: child.Title()}
		var err error
		if chapter.Attributes, err = b.attributes(child.Attributes); err != nil {
			return nil, err
		}
		if chapter.Body, err = b.body(child.Text); err != nil {
			return nil, fmt.Errorf("chapter %q: %w", chapter.Title, err)
		}
		if chapter.Chapters, err = b.chapters(child); err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, nil
}

func (b *builder) attributes(attributes *variant.Map) ([]Attribute, error) {
	var result []Attribute
	for name, value := range attributes.All() {
		attribute, err := b.attribute(name, value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		result = append(result, attribute)
	}
	return result, nil
}

func (b *builder) attribute(name string, value any) (Attribute, error) {
	attribute := Attribute{Name: name}
	id, ok := b.options.Registry.TypeFor(value)
	if !ok {
		attribute.Value = fmt.Sprint(value)
		return attribute, nil
	}
	attribute.Type = id

	var err error
	switch id {
	case variant.TypeText:
		attribute.Text, err = b.text(value.(variant.Text))
	case variant.TypeFile:
		attribute.Blob, err = describeBlob(value.(variant.Blob))
	default:
		attribute.Value, err = b.options.Registry.Render(id, value)
		if err != nil {
			attribute.Value, err = fmt.Sprint(value), nil
		}
	}
	return attribute, err
}

func (b *builder) body(text variant.Text) (*Text, error) {
	if text == nil {
		return nil, nil
	}
	return b.text(text)
}

func (b *builder) text(text variant.Text) (*Text, error) {
	content, err := text.Text()
	if err != nil {
		return nil, err
	}
	snapshot := &Text{Type: text.Type(), Runes: utf8.RuneCountInString(content)}
	if lazy, ok := text.(*variant.LazyText); ok {
		snapshot.Charset = lazy.Charset()
	}

	limit := b.options.MaxText
	switch {
	case limit < 0 || snapshot.Runes <= limit:
		snapshot.Content = content
	case limit > 0:
		snapshot.Content = string([]rune(content)[:limit])
		snapshot.Truncated = true
	default:
		snapshot.Truncated = snapshot.Runes > 0
	}
	return snapshot, nil
}

func describeBlob(blob variant.Blob) (*Blob, error) {
	stream, err := blob.Open()
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	hash, size, err := vdm.HashStream(stream)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", blob.Name(), err)
	}
	return &Blob{Name: blob.Name(), MIME: blob.MIME(), Size: size, Digest: hash.String()}, nil
}
