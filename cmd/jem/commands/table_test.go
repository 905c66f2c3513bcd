// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}, nil); got != "" {
		t.Errorf("renderTable without headers = %q, want empty", got)
	}

	output := renderTable(
		[]string{"Entry", "Size"},
		[][]string{{"mimetype", "20"}, {"book.xml"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	lines := strings.Split(output, "\n")
	// Top border, header, separator, two rows, bottom border.
	if len(lines) != 6 {
		t.Fatalf("rendered %d lines, want 6:\n%s", len(lines), output)
	}
	for _, want := range []string{"mimetype", "20", "book.xml"} {
		if !strings.Contains(output, want) {
			t.Errorf("table missing %q:\n%s", want, output)
		}
	}
	if !strings.Contains(lines[3], "mimetype") || !strings.HasSuffix(strings.TrimRight(lines[3], "│ "), "20") {
		t.Errorf("row = %q, want size right-aligned", lines[3])
	}
}
