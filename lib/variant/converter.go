// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Converter renders values of one type to text and parses them back.
type Converter interface {
	// Render returns the canonical text form of value.
	Render(value any) (string, error)

	// Parse converts text to a value. Text that does not match the
	// type's grammar fails with a *ConversionError.
	Parse(text string) (any, error)
}

// ConversionError reports text or a value that a converter cannot
// handle for its type.
type ConversionError struct {
	// TypeID is the type the conversion targeted.
	TypeID string

	// Text is the offending input for Parse failures. Empty for
	// Render failures.
	Text string

	// Value is the offending input for Render failures.
	Value any

	// Err is the underlying cause, if any.
	Err error
}

func (err *ConversionError) Error() string {
	var builder strings.Builder
	if err.Value != nil {
		fmt.Fprintf(&builder, "variant: cannot render %T as %s", err.Value, err.TypeID)
	} else {
		fmt.Fprintf(&builder, "variant: cannot parse %q as %s", err.Text, err.TypeID)
	}
	if err.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(err.Err.Error())
	}
	return builder.String()
}

func (err *ConversionError) Unwrap() error { return err.Err }

type intConverter struct{}

func (intConverter) Render(value any) (string, error) {
	switch number := value.(type) {
	case int64:
		return strconv.FormatInt(number, 10), nil
	case int:
		return strconv.Itoa(number), nil
	case int8:
		return strconv.FormatInt(int64(number), 10), nil
	case int16:
		return strconv.FormatInt(int64(number), 10), nil
	case int32:
		return strconv.FormatInt(int64(number), 10), nil
	case uint:
		return renderUint(uint64(number), value)
	case uint8:
		return strconv.FormatUint(uint64(number), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(number), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(number), 10), nil
	case uint64:
		return renderUint(number, value)
	default:
		return "", &ConversionError{TypeID: TypeInt, Value: value}
	}
}

// renderUint rejects values that Parse could not read back as int64.
func renderUint(number uint64, value any) (string, error) {
	if number > math.MaxInt64 {
		return "", &ConversionError{TypeID: TypeInt, Value: value, Err: strconv.ErrRange}
	}
	return strconv.FormatUint(number, 10), nil
}

func (intConverter) Parse(text string) (any, error) {
	number, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &ConversionError{TypeID: TypeInt, Text: text, Err: err}
	}
	return number, nil
}

type realConverter struct{}

func (realConverter) Render(value any) (string, error) {
	switch number := value.(type) {
	case float64:
		return strconv.FormatFloat(number, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(number), 'g', -1, 32), nil
	default:
		return "", &ConversionError{TypeID: TypeReal, Value: value}
	}
}

func (realConverter) Parse(text string) (any, error) {
	number, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &ConversionError{TypeID: TypeReal, Text: text, Err: err}
	}
	return number, nil
}

// stringConverter passes strings through unchanged.
type stringConverter struct{}

func (stringConverter) Render(value any) (string, error) {
	switch text := value.(type) {
	case string:
		return text, nil
	case fmt.Stringer:
		return text.String(), nil
	default:
		return "", &ConversionError{TypeID: TypeString, Value: value}
	}
}

func (stringConverter) Parse(text string) (any, error) {
	return text, nil
}

type boolConverter struct{}

func (boolConverter) Render(value any) (string, error) {
	flag, ok := value.(bool)
	if !ok {
		return "", &ConversionError{TypeID: TypeBool, Value: value}
	}
	return strconv.FormatBool(flag), nil
}

func (boolConverter) Parse(text string) (any, error) {
	flag, err := strconv.ParseBool(text)
	if err != nil {
		return nil, &ConversionError{TypeID: TypeBool, Text: text, Err: err}
	}
	return flag, nil
}

// localeConverter renders BCP 47 tags. Parsing also accepts the
// underscore form (zh_CN) older containers carry.
type localeConverter struct{}

func (localeConverter) Render(value any) (string, error) {
	tag, ok := value.(language.Tag)
	if !ok {
		return "", &ConversionError{TypeID: TypeLocale, Value: value}
	}
	return tag.String(), nil
}

func (localeConverter) Parse(text string) (any, error) {
	tag, err := language.Parse(strings.ReplaceAll(text, "_", "-"))
	if err != nil {
		return nil, &ConversionError{TypeID: TypeLocale, Text: text, Err: err}
	}
	return tag, nil
}

// Temporal converts date, time and datetime values using either an
// explicit pattern or, when the pattern is empty, the loose ISO
// grammar.
type Temporal struct {
	id       string
	pattern  string
	layout   string
	location *time.Location
}

// NewTemporal returns a converter for the temporal type id using
// pattern (yyyy-MM-dd vocabulary, see Layout). An empty pattern
// selects the loose ISO grammar. Values are rendered in, and text
// without a zone is parsed in, loc; nil means time.Local.
func NewTemporal(id, pattern string, loc *time.Location) (*Temporal, error) {
	if !IsTemporal(id) {
		return nil, fmt.Errorf("variant: %q is not a temporal type", id)
	}
	if loc == nil {
		loc = time.Local
	}
	converter := &Temporal{id: id, pattern: pattern, location: loc}
	if pattern != "" {
		layout, err := Layout(pattern)
		if err != nil {
			return nil, &ConversionError{TypeID: id, Text: pattern, Err: err}
		}
		converter.layout = layout
	}
	return converter, nil
}

// Pattern returns the pattern the converter was built with.
func (c *Temporal) Pattern() string { return c.pattern }

// Render formats a LocalDate, LocalTime or time.Time.
func (c *Temporal) Render(value any) (string, error) {
	var instant time.Time
	switch temporal := value.(type) {
	case time.Time:
		instant = temporal.In(c.location)
	case LocalDate:
		instant = temporal.In(c.location)
	case LocalTime:
		instant = temporal.On(LocalDate{Year: 1970, Month: time.January, Day: 1}, c.location)
	default:
		return "", &ConversionError{TypeID: c.id, Value: value}
	}

	layout := c.layout
	if layout == "" {
		switch c.id {
		case TypeDate:
			layout = "2006-01-02"
		case TypeTime:
			layout = "15:04:05.999999999"
		default:
			layout = time.RFC3339Nano
		}
	}
	return instant.Format(layout), nil
}

// Parse returns a LocalDate for date-typed text without an hour field,
// a LocalTime for time-typed text, and a time.Time otherwise.
func (c *Temporal) Parse(text string) (any, error) {
	var (
		instant  time.Time
		hasClock bool
		err      error
	)
	if c.layout != "" {
		instant, err = time.ParseInLocation(c.layout, text, c.location)
		hasClock = HasHour(c.pattern)
	} else {
		instant, _, hasClock, err = parseLoose(text, c.location)
	}
	if err != nil {
		return nil, &ConversionError{TypeID: c.id, Text: text, Err: err}
	}

	switch c.id {
	case TypeDate:
		if hasClock {
			return instant, nil
		}
		return DateOf(instant), nil
	case TypeTime:
		return TimeOf(instant), nil
	default:
		return instant, nil
	}
}
