// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package book

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/phylame/jem/lib/variant"
)

var (
	// ErrAttached is returned by Append when the node already has a
	// parent.
	ErrAttached = errors.New("book: chapter already has a parent")

	// ErrCycle is returned by Append when the node is the receiver or
	// one of its ancestors.
	ErrCycle = errors.New("book: chapter would become its own descendant")
)

// Chapter is one node of the table of contents.
type Chapter struct {
	// Attributes holds the node's metadata. It is never nil for nodes
	// built by this package.
	Attributes *variant.Map

	// Text is the optional body. Sections usually have none.
	Text variant.Text

	children []*Chapter
	parent   *Chapter
}

// NewChapter returns a detached chapter with the given title. An
// empty title leaves the attribute unset.
func NewChapter(title string) *Chapter {
	chapter := newChapter(nil)
	if title != "" {
		chapter.Attributes.Set(AttrTitle, title)
	}
	return chapter
}

func newChapter(validator variant.Validator) *Chapter {
	return &Chapter{Attributes: variant.NewMap(validator)}
}

// NewChild appends an empty chapter as the last child and returns it.
// The child's attributes share the receiver's validator.
func (c *Chapter) NewChild() *Chapter {
	child := newChapter(c.Attributes.Validator())
	child.parent = c
	c.children = append(c.children, child)
	return child
}

// Append attaches a detached chapter as the last child.
func (c *Chapter) Append(child *Chapter) error {
	if child.parent != nil {
		return ErrAttached
	}
	for ancestor := c; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == child {
			return ErrCycle
		}
	}
	child.parent = c
	c.children = append(c.children, child)
	return nil
}

// Children returns the direct children in order. The slice is a copy.
func (c *Chapter) Children() []*Chapter { return slices.Clone(c.children) }

// Child returns the i-th child (0-based), or nil when out of range.
func (c *Chapter) Child(i int) *Chapter {
	if i < 0 || i >= len(c.children) {
		return nil
	}
	return c.children[i]
}

// Len returns the number of direct children.
func (c *Chapter) Len() int { return len(c.children) }

// Parent returns the enclosing node, or nil for a root.
func (c *Chapter) Parent() *Chapter { return c.parent }

// IsSection reports whether c has at least one child.
func (c *Chapter) IsSection() bool { return len(c.children) > 0 }

// Path returns the 1-based child indices leading from the root to c.
// A root has an empty path.
func (c *Chapter) Path() []int {
	var path []int
	for node := c; node.parent != nil; node = node.parent {
		path = append(path, slices.Index(node.parent.children, node)+1)
	}
	slices.Reverse(path)
	return path
}

// Walk yields c's descendants in document order (pre-order), each
// with its depth below c starting at 1. c itself is not yielded.
func (c *Chapter) Walk() iter.Seq2[int, *Chapter] {
	return func(yield func(int, *Chapter) bool) {
		c.walk(1, yield)
	}
}

func (c *Chapter) walk(depth int, yield func(int, *Chapter) bool) bool {
	for _, child := range c.children {
		if !yield(depth, child) || !child.walk(depth+1, yield) {
			return false
		}
	}
	return true
}

// Title returns the title attribute, or "".
func (c *Chapter) Title() string { return c.stringAttr(AttrTitle) }

// SetTitle stores the title attribute.
func (c *Chapter) SetTitle(title string) error {
	_, err := c.Attributes.Set(AttrTitle, title)
	return err
}

// Author returns the author attribute, or "".
func (c *Chapter) Author() string { return c.stringAttr(AttrAuthor) }

// Genre returns the genre attribute, or "".
func (c *Chapter) Genre() string { return c.stringAttr(AttrGenre) }

// Publisher returns the publisher attribute, or "".
func (c *Chapter) Publisher() string { return c.stringAttr(AttrPublisher) }

// Rights returns the rights attribute, or "".
func (c *Chapter) Rights() string { return c.stringAttr(AttrRights) }

// Vendor returns the vendor attribute, or "".
func (c *Chapter) Vendor() string { return c.stringAttr(AttrVendor) }

// State returns the state attribute (for example "finished"), or "".
func (c *Chapter) State() string { return c.stringAttr(AttrState) }

// Cover returns the cover image, or nil.
func (c *Chapter) Cover() variant.Blob {
	cover, _ := c.attr(AttrCover).(variant.Blob)
	return cover
}

// Intro returns the introduction text, or nil.
func (c *Chapter) Intro() variant.Text {
	intro, _ := c.attr(AttrIntro).(variant.Text)
	return intro
}

// Date returns the date attribute as a calendar date. A datetime value
// is reduced to its date. The zero LocalDate means absent.
func (c *Chapter) Date() variant.LocalDate {
	switch date := c.attr(AttrDate).(type) {
	case variant.LocalDate:
		return date
	case time.Time:
		return variant.DateOf(date)
	}
	return variant.LocalDate{}
}

// Language returns the language attribute, or language.Und.
func (c *Chapter) Language() language.Tag {
	tag, ok := c.attr(AttrLanguage).(language.Tag)
	if !ok {
		return language.Und
	}
	return tag
}

// Words returns the word count attribute, or 0.
func (c *Chapter) Words() int64 {
	switch words := c.attr(AttrWords).(type) {
	case int64:
		return words
	case int:
		return int64(words)
	case int32:
		return int64(words)
	case uint32:
		return int64(words)
	}
	return 0
}

func (c *Chapter) attr(name string) any {
	value, _ := c.Attributes.Get(name)
	return value
}

func (c *Chapter) stringAttr(name string) string {
	switch value := c.attr(name).(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	}
	return ""
}
