// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"reflect"
	"time"

	"golang.org/x/text/language"

	"github.com/phylame/jem/lib/clock"
)

// NewBuiltin returns a registry holding the builtin types. Temporal
// defaults ("today", "now") are read from c at lookup time.
//
// Registration order puts the structural kinds (text, file) ahead of
// str so that a Text or Blob that also implements fmt.Stringer is
// still classified by its structure.
func NewBuiltin(c clock.Clock) *Registry {
	registry := NewRegistry()
	for _, t := range builtinTypes(c) {
		if err := registry.Register(t); err != nil {
			panic("variant: builtin registration failed: " + err.Error())
		}
	}
	return registry
}

func builtinTypes(c clock.Clock) []Type {
	looseDate := mustTemporal(TypeDate)
	looseTime := mustTemporal(TypeTime)
	looseDateTime := mustTemporal(TypeDateTime)

	return []Type{
		{
			ID:        TypeInt,
			Kind:      reflect.TypeFor[int64](),
			Match:     matchInt,
			Converter: intConverter{},
			Default:   Constant(int64(0)),
		},
		{
			ID:   TypeReal,
			Kind: reflect.TypeFor[float64](),
			Match: func(value any) Match {
				switch value.(type) {
				case float64:
					return Exact
				case float32:
					return Assignable
				}
				return NoMatch
			},
			Converter: realConverter{},
			Default:   Constant(float64(0)),
		},
		{
			ID:        TypeBool,
			Kind:      reflect.TypeFor[bool](),
			Match:     exactly[bool],
			Converter: boolConverter{},
			Default:   Constant(false),
		},
		{
			ID:        TypeDate,
			Kind:      reflect.TypeFor[LocalDate](),
			Match:     exactly[LocalDate],
			Converter: looseDate,
			Default:   Supplier(func() any { return DateOf(c.Now()) }),
		},
		{
			ID:        TypeTime,
			Kind:      reflect.TypeFor[LocalTime](),
			Match:     exactly[LocalTime],
			Converter: looseTime,
			Default:   Supplier(func() any { return TimeOf(c.Now()) }),
		},
		{
			ID:        TypeDateTime,
			Kind:      reflect.TypeFor[time.Time](),
			Match:     exactly[time.Time],
			Converter: looseDateTime,
			Default:   Supplier(func() any { return c.Now() }),
		},
		{
			ID:        TypeLocale,
			Kind:      reflect.TypeFor[language.Tag](),
			Match:     exactly[language.Tag],
			Converter: localeConverter{},
			Default:   Constant(language.Und),
		},
		{
			ID:      TypeText,
			Kind:    reflect.TypeFor[Text](),
			Match:   assignable[Text],
			Default: Constant(NewText("", TextPlain)),
		},
		{
			ID:      TypeFile,
			Kind:    reflect.TypeFor[Blob](),
			Match:   assignable[Blob],
			Default: Constant(NewBytesBlob("", OctetStream, nil)),
		},
		{
			ID:   TypeString,
			Kind: reflect.TypeFor[string](),
			Match: func(value any) Match {
				switch value.(type) {
				case string:
					return Exact
				case fmt.Stringer:
					return Assignable
				}
				return NoMatch
			},
			Converter: stringConverter{},
			Default:   Constant(""),
		},
	}
}

func matchInt(value any) Match {
	switch value.(type) {
	case int64:
		return Exact
	case int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		return Assignable
	}
	return NoMatch
}

func exactly[T any](value any) Match {
	if _, ok := value.(T); ok {
		return Exact
	}
	return NoMatch
}

func assignable[T any](value any) Match {
	if _, ok := value.(T); ok {
		return Assignable
	}
	return NoMatch
}

func mustTemporal(id string) *Temporal {
	converter, err := NewTemporal(id, "", nil)
	if err != nil {
		panic("variant: " + err.Error())
	}
	return converter
}
