// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/phylame/jem/lib/clock"
)

var (
	// ErrEmptyTypeID is returned when a registry operation is given
	// an empty type id.
	ErrEmptyTypeID = errors.New("variant: empty type id")

	// ErrUnknownType is returned when a type id has not been
	// registered.
	ErrUnknownType = errors.New("variant: unknown type id")

	// ErrNoConverter is returned by Render and Parse for registered
	// types that have no text form (text, file).
	ErrNoConverter = errors.New("variant: type has no converter")
)

// Match is the result of testing a value against a registered type.
type Match int

const (
	// NoMatch means the value is not of this type.
	NoMatch Match = iota
	// Assignable means the value can be handled as this type, but a
	// registered type with an Exact match takes precedence.
	Assignable
	// Exact means the value's kind is the type's native kind.
	Exact
)

// Type describes one registered variant type.
type Type struct {
	// ID is the symbolic type id written to the wire.
	ID string

	// Kind is the native Go type of values of this type. Interface
	// kinds (Text, Blob) are expressed with reflect.TypeFor.
	Kind reflect.Type

	// Match classifies a value against this type. The result must
	// depend only on the value's dynamic type: TypeFor caches it per
	// reflect.Type.
	Match func(value any) Match

	// Converter renders and parses the text form. Nil for structural
	// types whose payload is externalized (text, file).
	Converter Converter

	// Default is the value DefaultFor returns for this type.
	Default Default
}

// Default is either a constant value or a supplier evaluated at
// lookup time. The zero Default means "no default".
type Default struct {
	value    any
	supplier func() any
	set      bool
}

// Constant returns a Default that always yields value.
func Constant(value any) Default {
	return Default{value: value, set: true}
}

// Supplier returns a Default that calls supply on every lookup.
func Supplier(supply func() any) Default {
	return Default{supplier: supply, set: supply != nil}
}

// IsSet reports whether d carries a value or a supplier.
func (d Default) IsSet() bool { return d.set }

// Value evaluates d. Returns nil for the zero Default.
func (d Default) Value() any {
	if d.supplier != nil {
		return d.supplier()
	}
	return d.value
}

// Registry maps type ids to native kinds, converters and defaults.
// The zero value is not usable; construct with NewRegistry or
// NewBuiltin.
type Registry struct {
	mu    sync.RWMutex
	types []*Type
	byID  map[string]*Type
	cache map[reflect.Type]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:  make(map[string]*Type),
		cache: make(map[reflect.Type]string),
	}
}

var (
	builtinOnce     sync.Once
	builtinRegistry *Registry
)

// Builtin returns the shared registry pre-populated with the builtin
// types and backed by the real clock. Callers that need isolation
// (tests, alternative defaults) construct their own with NewBuiltin.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		builtinRegistry = NewBuiltin(clock.Real())
	})
	return builtinRegistry
}

// Register adds t to the registry. Types are consulted by TypeFor in
// registration order.
func (r *Registry) Register(t Type) error {
	if t.ID == "" {
		return ErrEmptyTypeID
	}
	if t.Match == nil {
		return fmt.Errorf("variant: type %q has no match function", t.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; exists {
		return fmt.Errorf("variant: type %q already registered", t.ID)
	}
	registered := t
	r.types = append(r.types, &registered)
	r.byID[t.ID] = &registered
	clear(r.cache)
	return nil
}

// KindFor returns the native Go kind registered for id.
func (r *Registry) KindFor(id string) (reflect.Type, error) {
	t, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Kind, nil
}

// TypeFor returns the id of the registered type that best matches
// value. An Exact match wins over an Assignable one; among equals the
// earliest registration wins. Returns false for nil and for values no
// type accepts.
func (r *Registry) TypeFor(value any) (string, bool) {
	if value == nil {
		return "", false
	}
	kind := reflect.TypeOf(value)

	r.mu.RLock()
	id, cached := r.cache[kind]
	r.mu.RUnlock()
	if cached {
		return id, id != ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var assignable string
	for _, t := range r.types {
		switch t.Match(value) {
		case Exact:
			r.cache[kind] = t.ID
			return t.ID, true
		case Assignable:
			if assignable == "" {
				assignable = t.ID
			}
		}
	}
	r.cache[kind] = assignable
	return assignable, assignable != ""
}

// DefaultFor evaluates the default registered for id. A registered
// type without a default yields (nil, nil).
func (r *Registry) DefaultFor(id string) (any, error) {
	t, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.Default.Value(), nil
}

// SetDefault replaces the default for a registered type. Setting a
// default for an unknown id fails.
func (r *Registry) SetDefault(id string, d Default) error {
	if id == "" {
		return ErrEmptyTypeID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.byID[id]
	if !exists {
		return fmt.Errorf("setting default for %q: %w", id, ErrUnknownType)
	}
	t.Default = d
	return nil
}

// ConverterFor returns the converter registered for id.
func (r *Registry) ConverterFor(id string) (Converter, bool) {
	t, err := r.lookup(id)
	if err != nil || t.Converter == nil {
		return nil, false
	}
	return t.Converter, true
}

// Render converts value to text with the converter registered for id.
func (r *Registry) Render(id string, value any) (string, error) {
	converter, err := r.converter(id)
	if err != nil {
		return "", err
	}
	return converter.Render(value)
}

// Parse converts text to a value with the converter registered for id.
func (r *Registry) Parse(id, text string) (any, error) {
	converter, err := r.converter(id)
	if err != nil {
		return nil, err
	}
	return converter.Parse(text)
}

// IDs returns the registered type ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.types))
	for i, t := range r.types {
		ids[i] = t.ID
	}
	return ids
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.lookup(id)
	return err == nil
}

func (r *Registry) converter(id string) (Converter, error) {
	t, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if t.Converter == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoConverter, id)
	}
	return t.Converter, nil
}

// lookup returns a copy of the registered type so callers can read
// it without holding the lock.
func (r *Registry) lookup(id string) (Type, error) {
	if id == "" {
		return Type{}, ErrEmptyTypeID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.byID[id]
	if !exists {
		return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	return *t, nil
}
