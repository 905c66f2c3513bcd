// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package book

import (
	"fmt"

	"github.com/phylame/jem/lib/variant"
)

// Well-known attribute names.
const (
	AttrTitle     = "title"
	AttrAuthor    = "author"
	AttrCover     = "cover"
	AttrIntro     = "intro"
	AttrGenre     = "genre"
	AttrDate      = "date"
	AttrPubDate   = "pubdate"
	AttrLanguage  = "language"
	AttrPublisher = "publisher"
	AttrRights    = "rights"
	AttrVendor    = "vendor"
	AttrWords     = "words"
	AttrState     = "state"
	AttrKeywords  = "keywords"
	AttrISBN      = "isbn"
	AttrPrice     = "price"
	AttrSeries    = "series"
	AttrSubject   = "subject"
)

var declaredTypes = map[string]string{
	AttrTitle:     variant.TypeString,
	AttrAuthor:    variant.TypeString,
	AttrCover:     variant.TypeFile,
	AttrIntro:     variant.TypeText,
	AttrGenre:     variant.TypeString,
	AttrDate:      variant.TypeDate,
	AttrPubDate:   variant.TypeDate,
	AttrLanguage:  variant.TypeLocale,
	AttrPublisher: variant.TypeString,
	AttrRights:    variant.TypeString,
	AttrVendor:    variant.TypeString,
	AttrWords:     variant.TypeInt,
	AttrState:     variant.TypeString,
	AttrKeywords:  variant.TypeString,
	AttrISBN:      variant.TypeString,
	AttrPrice:     variant.TypeReal,
	AttrSeries:    variant.TypeString,
	AttrSubject:   variant.TypeString,
}

// DeclaredType returns the type id declared for a well-known attribute
// name.
func DeclaredType(name string) (string, bool) {
	id, ok := declaredTypes[name]
	return id, ok
}

// Validator returns a map validator that rejects values of well-known
// attributes whose type in registry differs from the declared type.
// A datetime is accepted where a date is declared, since a date
// pattern with an hour field decodes to a datetime. Names outside the
// vocabulary are accepted unchanged.
func Validator(registry *variant.Registry) variant.Validator {
	return func(name string, value any) error {
		declared, ok := declaredTypes[name]
		if !ok {
			return nil
		}
		actual, ok := registry.TypeFor(value)
		if !ok {
			return &variant.ValidationError{
				Name:   name,
				Value:  value,
				Reason: fmt.Sprintf("want %s, got unregistered %T", declared, value),
			}
		}
		if actual == declared || (declared == variant.TypeDate && actual == variant.TypeDateTime) {
			return nil
		}
		return &variant.ValidationError{
			Name:   name,
			Value:  value,
			Reason: fmt.Sprintf("want %s, got %s", declared, actual),
		}
	}
}
