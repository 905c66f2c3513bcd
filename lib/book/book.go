// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package book

import "github.com/phylame/jem/lib/variant"

// Book is the root of a document tree. Its embedded Chapter holds the
// book-level attributes, the optional body and the top-level chapters.
type Book struct {
	Chapter

	// Extensions holds implementation-defined data that is not part of
	// the attribute vocabulary. It never has a validator.
	Extensions *variant.Map
}

// Option configures New.
type Option func(*options)

type options struct {
	validator variant.Validator
}

// WithValidator attaches validator to the attributes of the book and
// of every chapter later created with NewChild.
func WithValidator(validator variant.Validator) Option {
	return func(o *options) { o.validator = validator }
}

// New returns an empty book. An empty title leaves the attribute unset.
func New(title string, opts ...Option) (*Book, error) {
	var settings options
	for _, opt := range opts {
		opt(&settings)
	}
	b := &Book{
		Chapter:    Chapter{Attributes: variant.NewMap(settings.validator)},
		Extensions: variant.NewMap(nil),
	}
	if title != "" {
		if err := b.SetTitle(title); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Root returns the book's root chapter.
func (b *Book) Root() *Chapter { return &b.Chapter }

// Count returns the number of chapters and sections below the root.
func (b *Book) Count() int {
	count := 0
	for range b.Walk() {
		count++
	}
	return count
}
