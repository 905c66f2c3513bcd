// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"inspect", "inpsect", 2},
		{"repack", "repak", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"-"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if got := levenshtein(test.b, test.a); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, got, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "inspect"},
		{Name: "dump"},
		{Name: "repack"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"inpsect", "inspect"},
		{"dmp", "dump"},
		{"repackk", "repack"},
		{"vrsion", "version"},
		{"zzzzzzzzz", ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			if got := suggestCommand(test.input, commands); got != test.want {
				t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
			}
		})
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("compression", "", "")
		flagSet.String("encoding", "", "")
		flagSet.Int("level", 0, "")
		flagSet.StringP("type", "t", "", "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"close typo with double dash", []string{"--compresion"}, "--compression"},
		{"close typo with single dash", []string{"-encodng"}, "--encoding"},
		{"flag with equals", []string{"--levl=3"}, "--level"},
		{"known shorthand then typo", []string{"-t", "zip", "--encding"}, "--encoding"},
		{"nothing close", []string{"--zzzzzzzzz"}, ""},
		{"no flags", []string{"positional"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, makeFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
