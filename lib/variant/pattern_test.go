// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import "testing"

func TestLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
		{"yyyy-M-d H:m:s", "2006-1-2 15:4:5"},
		{"yy/MM/dd", "06/01/02"},
		{"yyyy-MM-dd'T'HH:mm:ss.SSSXXX", "2006-01-02T15:04:05.000Z07:00"},
		{"EEE, d MMM yyyy hh:mm a", "Mon, 2 Jan 2006 03:04 PM"},
		{"EEEE MMMM", "Monday January"},
		{"HH:mm Z z", "15:04 -0700 MST"},
		{"yyyy.DDD", "2006.002"},
		{"'at' HH 'o''clock'", "at 15 o'clock"},
		{"''yyyy''", "'2006'"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Layout(tt.pattern)
			if err != nil {
				t.Fatalf("Layout(%q): %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("Layout(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestLayoutErrors(t *testing.T) {
	for _, pattern := range []string{
		"yyyy-QQ",      // unsupported letter
		"kk:mm",        // 1-24 hour has no layout
		"KK:mm a",      // 0-11 hour has no layout
		"HH:mm:ssSSS",  // fraction without separator
		"yyyy 'broken", // unterminated quote
	} {
		if layout, err := Layout(pattern); err == nil {
			t.Errorf("Layout(%q) = %q, want error", pattern, layout)
		}
	}
}

func TestLayoutCached(t *testing.T) {
	first, err := Layout("dd.MM.yyyy")
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	second, _ := Layout("dd.MM.yyyy")
	if first != second || first != "02.01.2006" {
		t.Errorf("Layout results %q and %q, want 02.01.2006", first, second)
	}
}

func TestHasHour(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"yyyy-MM-dd", false},
		{"yyyy-MM-dd HH:mm", true},
		{"hh:mm a", true},
		{"yyyy-MM-dd 'Hour'", false},
		{"yyyy-MM-dd kk:mm", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasHour(tt.pattern); got != tt.want {
			t.Errorf("HasHour(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}
