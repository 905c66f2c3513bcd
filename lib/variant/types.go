// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"time"
)

// Builtin type ids. These strings appear verbatim in the type
// attribute of PMAB items and are protocol constants.
const (
	TypeInt      = "int"
	TypeReal     = "real"
	TypeString   = "str"
	TypeBool     = "bool"
	TypeDate     = "date"
	TypeTime     = "time"
	TypeDateTime = "datetime"
	TypeLocale   = "locale"
	TypeText     = "text"
	TypeFile     = "file"
)

// IsTemporal reports whether id names one of the three temporal types.
func IsTemporal(id string) bool {
	return id == TypeDate || id == TypeTime || id == TypeDateTime
}

// LocalDate is a calendar date without a time of day or zone.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) LocalDate {
	year, month, day := t.Date()
	return LocalDate{Year: year, Month: month, Day: day}
}

// In returns midnight of d in loc.
func (d LocalDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports whether d is the zero LocalDate.
func (d LocalDate) IsZero() bool {
	return d == LocalDate{}
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d LocalDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses YYYY-MM-DD.
func (d *LocalDate) UnmarshalText(data []byte) error {
	parsed, err := time.Parse("2006-01-02", string(data))
	if err != nil {
		return fmt.Errorf("parsing local date %q: %w", data, err)
	}
	*d = DateOf(parsed)
	return nil
}

// LocalTime is a time of day without a date or zone.
type LocalTime struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// TimeOf returns the time of day of t in t's location.
func TimeOf(t time.Time) LocalTime {
	return LocalTime{
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		Second:     t.Second(),
		Nanosecond: t.Nanosecond(),
	}
}

// On returns the instant at which the time of day lt occurs on date d
// in loc.
func (lt LocalTime) On(d LocalDate, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, lt.Hour, lt.Minute, lt.Second, lt.Nanosecond, loc)
}

func (lt LocalTime) String() string {
	if lt.Nanosecond == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", lt.Hour, lt.Minute, lt.Second)
	}
	return lt.On(LocalDate{Year: 1, Month: time.January, Day: 1}, time.UTC).Format("15:04:05.999999999")
}

// MarshalText encodes lt as HH:MM:SS with an optional fraction.
func (lt LocalTime) MarshalText() ([]byte, error) {
	return []byte(lt.String()), nil
}

// UnmarshalText parses HH:MM:SS with an optional fraction.
func (lt *LocalTime) UnmarshalText(data []byte) error {
	parsed, err := time.Parse("15:04:05", string(data))
	if err != nil {
		return fmt.Errorf("parsing local time %q: %w", data, err)
	}
	*lt = TimeOf(parsed)
	return nil
}
