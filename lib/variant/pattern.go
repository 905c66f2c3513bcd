// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// layoutCache memoizes pattern translations. Patterns come from a
// small set (configuration plus whatever ;format= values a container
// carries), so the cache is unbounded.
var layoutCache sync.Map

// Layout translates a date/time pattern in the yyyy-MM-dd vocabulary
// into a Go reference-time layout.
//
// Supported letters: y (year), M (month), d (day of month), D (day of
// year), H (hour 0-23), h (hour 1-12), m (minute), s (second), S
// (fraction, must follow '.' or ','), a (AM/PM), E (weekday), Z
// (-0700), X (Z07, Z0700, Z07:00 by count), z (zone abbreviation).
// Text between single quotes is literal; two single quotes produce
// one. Any other ASCII letter is rejected.
//
// Go layouts have no non-padded 24-hour form, so H and HH both
// render two digits; parsing accepts either width.
func Layout(pattern string) (string, error) {
	if cached, ok := layoutCache.Load(pattern); ok {
		return cached.(string), nil
	}
	layout, err := translatePattern(pattern)
	if err != nil {
		return "", err
	}
	layoutCache.Store(pattern, layout)
	return layout, nil
}

// HasHour reports whether pattern contains an unquoted hour field.
// A date-typed value whose pattern has an hour is decoded as a full
// datetime rather than a calendar date.
func HasHour(pattern string) bool {
	quoted := false
	for _, r := range pattern {
		switch {
		case r == '\'':
			quoted = !quoted
		case !quoted && (r == 'H' || r == 'h'):
			return true
		}
	}
	return false
}

func translatePattern(pattern string) (string, error) {
	var layout strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		current := runes[i]

		if current == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				layout.WriteRune('\'')
				i += 2
				continue
			}
			for i++; ; i++ {
				if i >= len(runes) {
					return "", fmt.Errorf("pattern %q: unterminated quote", pattern)
				}
				if runes[i] != '\'' {
					layout.WriteRune(runes[i])
					continue
				}
				if i+1 < len(runes) && runes[i+1] == '\'' {
					layout.WriteRune('\'')
					i++
					continue
				}
				break
			}
			i++
			continue
		}

		if !isPatternLetter(current) {
			layout.WriteRune(current)
			i++
			continue
		}

		count := 1
		for i+count < len(runes) && runes[i+count] == current {
			count++
		}
		field, err := patternField(current, count, layout.String())
		if err != nil {
			return "", fmt.Errorf("pattern %q: %w", pattern, err)
		}
		layout.WriteString(field)
		i += count
	}
	return layout.String(), nil
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func patternField(letter rune, count int, preceding string) (string, error) {
	switch letter {
	case 'y':
		if count == 2 {
			return "06", nil
		}
		return "2006", nil
	case 'M':
		switch count {
		case 1:
			return "1", nil
		case 2:
			return "01", nil
		case 3:
			return "Jan", nil
		default:
			return "January", nil
		}
	case 'd':
		if count == 1 {
			return "2", nil
		}
		return "02", nil
	case 'D':
		return "002", nil
	case 'H':
		return "15", nil
	case 'h':
		if count == 1 {
			return "3", nil
		}
		return "03", nil
	case 'm':
		if count == 1 {
			return "4", nil
		}
		return "04", nil
	case 's':
		if count == 1 {
			return "5", nil
		}
		return "05", nil
	case 'S':
		if !strings.HasSuffix(preceding, ".") && !strings.HasSuffix(preceding, ",") {
			return "", fmt.Errorf("fraction field must follow '.' or ','")
		}
		if count > 9 {
			count = 9
		}
		return strings.Repeat("0", count), nil
	case 'a':
		return "PM", nil
	case 'E':
		if count >= 4 {
			return "Monday", nil
		}
		return "Mon", nil
	case 'Z':
		return "-0700", nil
	case 'X':
		switch count {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		default:
			return "Z07:00", nil
		}
	case 'z':
		return "MST", nil
	default:
		return "", fmt.Errorf("unsupported pattern letter %q", letter)
	}
}

// looseLayout is one accepted shape of the loose ISO grammar.
type looseLayout struct {
	layout   string
	hasDate  bool
	hasClock bool
}

// looseLayouts lists the loose ISO grammar from most to least
// precise. Fractional seconds are accepted after any seconds field
// without being spelled out in the layout.
var looseLayouts = []looseLayout{
	{time.RFC3339, true, true},
	{"2006-01-02T15:04:05", true, true},
	{"2006-01-02 15:04:05Z07:00", true, true},
	{"2006-01-02 15:04:05", true, true},
	{"2006-01-02T15:04Z07:00", true, true},
	{"2006-01-02T15:04", true, true},
	{"2006-01-02 15:04", true, true},
	{"2006-01-02", true, false},
	{"2006-01", true, false},
	{"2006", true, false},
	{"15:04:05", false, true},
	{"15:04", false, true},
}

// parseLoose parses text with the loose ISO grammar. It reports which
// components the matched shape carried.
func parseLoose(text string, loc *time.Location) (parsed time.Time, hasDate, hasClock bool, err error) {
	for _, candidate := range looseLayouts {
		parsed, err = time.ParseInLocation(candidate.layout, text, loc)
		if err == nil {
			return parsed, candidate.hasDate, candidate.hasClock, nil
		}
	}
	return time.Time{}, false, false, fmt.Errorf("%q does not match the ISO date/time grammar", text)
}
