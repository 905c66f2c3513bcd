// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrEmptyName is returned when a Map operation is given an empty
// attribute name.
var ErrEmptyName = errors.New("variant: empty attribute name")

// Validator inspects a (name, value) pair before a Map stores it. A
// non-nil error rejects the insertion.
type Validator func(name string, value any) error

// ValidationError reports a value a Map refused to store.
type ValidationError struct {
	// Name is the attribute name.
	Name string

	// Value is the rejected value.
	Value any

	// Reason describes the rule that rejected the value.
	Reason string

	// Err is the validator's error when it was not already a
	// *ValidationError.
	Err error
}

func (err *ValidationError) Error() string {
	message := fmt.Sprintf("variant: attribute %q rejected", err.Name)
	if err.Reason != "" {
		message += ": " + err.Reason
	}
	if err.Err != nil {
		message += ": " + err.Err.Error()
	}
	return message
}

func (err *ValidationError) Unwrap() error { return err.Err }

// Map is an ordered name → value mapping. Iteration follows first
// insertion order; replacing a value keeps its position.
//
// Map is not safe for concurrent mutation.
type Map struct {
	names     []string
	values    map[string]any
	validator Validator
}

// NewMap returns an empty Map. validator may be nil.
func NewMap(validator Validator) *Map {
	return &Map{
		values:    make(map[string]any),
		validator: validator,
	}
}

// Validator returns the map's validator, or nil.
func (m *Map) Validator() Validator { return m.validator }

// Set stores value under name and returns the previous value, if any.
// Nil values are rejected; use Remove to delete.
func (m *Map) Set(name string, value any) (any, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if value == nil {
		return nil, &ValidationError{Name: name, Reason: "nil value"}
	}
	if m.validator != nil {
		if err := m.validator(name, value); err != nil {
			var validationError *ValidationError
			if errors.As(err, &validationError) {
				return nil, err
			}
			return nil, &ValidationError{Name: name, Value: value, Err: err}
		}
	}

	previous, exists := m.values[name]
	if !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = value
	return previous, nil
}

// Get returns the value stored under name.
func (m *Map) Get(name string) (any, bool) {
	value, exists := m.values[name]
	return value, exists
}

// Remove deletes name and returns the value it held.
func (m *Map) Remove(name string) (any, bool) {
	previous, exists := m.values[name]
	if !exists {
		return nil, false
	}
	delete(m.values, name)
	m.names = slices.DeleteFunc(m.names, func(existing string) bool { return existing == name })
	return previous, true
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.names) }

// Names returns the entry names in iteration order.
func (m *Map) Names() []string { return slices.Clone(m.names) }

// All yields the entries in iteration order. The map must not be
// mutated during iteration.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range m.names {
			if !yield(name, m.values[name]) {
				return
			}
		}
	}
}
