// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/phylame/jem/lib/book"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

func sampleBook(t *testing.T) *book.Book {
	t.Helper()
	b, err := book.New("Sample")
	if err != nil {
		t.Fatalf("book.New: %v", err)
	}
	mustSet(t, b.Attributes, book.AttrAuthor, "Someone")
	mustSet(t, b.Attributes, book.AttrWords, int64(1200))
	mustSet(t, b.Attributes, book.AttrDate, variant.LocalDate{Year: 2026, Month: time.March, Day: 14})
	mustSet(t, b.Attributes, book.AttrCover, variant.NewBytesBlob("cover.png", "image/png", []byte("png-bytes")))
	mustSet(t, b.Attributes, book.AttrIntro, variant.NewText("A short introduction.", variant.TextPlain))
	mustSet(t, b.Extensions, "source", "archive")

	part := b.NewChild()
	if err := part.SetTitle("Part One"); err != nil {
		t.Fatal(err)
	}
	chapter := part.NewChild()
	if err := chapter.SetTitle("Chapter One"); err != nil {
		t.Fatal(err)
	}
	chapter.Text = variant.NewText("第一章的内容", variant.TextPlain)
	return b
}

func mustSet(t *testing.T, m *variant.Map, name string, value any) {
	t.Helper()
	if _, err := m.Set(name, value); err != nil {
		t.Fatalf("Set(%q): %v", name, err)
	}
}

func find(attributes []Attribute, name string) (Attribute, bool) {
	for _, attribute := range attributes {
		if attribute.Name == name {
			return attribute, true
		}
	}
	return Attribute{}, false
}

func TestBuild(t *testing.T) {
	snapshot, err := Build(sampleBook(t), Options{MaxText: -1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snapshot.Title != "Sample" {
		t.Errorf("Title = %q, want Sample", snapshot.Title)
	}

	tests := []struct {
		name, typ, value string
	}{
		{book.AttrAuthor, variant.TypeString, "Someone"},
		{book.AttrWords, variant.TypeInt, "1200"},
		{book.AttrDate, variant.TypeDate, "2026-03-14"},
	}
	for _, test := range tests {
		attribute, ok := find(snapshot.Attributes, test.name)
		if !ok {
			t.Errorf("attribute %q missing", test.name)
			continue
		}
		if attribute.Type != test.typ || attribute.Value != test.value {
			t.Errorf("%s = (%q, %q), want (%q, %q)", test.name, attribute.Type, attribute.Value, test.typ, test.value)
		}
	}

	cover, _ := find(snapshot.Attributes, book.AttrCover)
	if cover.Blob == nil {
		t.Fatal("cover has no blob description")
	}
	hash, size, err := vdm.HashStream(strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	want := Blob{Name: "cover.png", MIME: "image/png", Size: size, Digest: hash.String()}
	if *cover.Blob != want {
		t.Errorf("cover = %+v, want %+v", *cover.Blob, want)
	}

	intro, _ := find(snapshot.Attributes, book.AttrIntro)
	if intro.Text == nil || intro.Text.Content != "A short introduction." || intro.Text.Truncated {
		t.Errorf("intro = %+v", intro.Text)
	}

	if source, ok := find(snapshot.Extensions, "source"); !ok || source.Value != "archive" {
		t.Errorf("extension source = %+v", source)
	}
	if snapshot.Body != nil {
		t.Errorf("Body = %+v, want nil", snapshot.Body)
	}

	if len(snapshot.Chapters) != 1 || len(snapshot.Chapters[0].Chapters) != 1 {
		t.Fatalf("chapters = %+v", snapshot.Chapters)
	}
	part := snapshot.Chapters[0]
	if part.Title != "Part One" || part.Body != nil {
		t.Errorf("part = %+v", part)
	}
	leaf := part.Chapters[0]
	if leaf.Title != "Chapter One" || leaf.Body == nil || leaf.Body.Content != "第一章的内容" || leaf.Body.Runes != 6 {
		t.Errorf("leaf = %+v body %+v", leaf, leaf.Body)
	}
}

func TestBuildTextLimit(t *testing.T) {
	tests := []struct {
		limit     int
		content   string
		truncated bool
	}{
		{-1, "第一章的内容", false},
		{0, "", true},
		{3, "第一章", true},
		{6, "第一章的内容", false},
		{100, "第一章的内容", false},
	}
	b := sampleBook(t)
	for _, test := range tests {
		snapshot, err := Build(b, Options{MaxText: test.limit})
		if err != nil {
			t.Fatalf("Build(%d): %v", test.limit, err)
		}
		body := snapshot.Chapters[0].Chapters[0].Body
		if body.Content != test.content || body.Truncated != test.truncated || body.Runes != 6 {
			t.Errorf("MaxText %d: body = %+v, want content %q truncated %v", test.limit, body, test.content, test.truncated)
		}
	}
}

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestBuildUnregisteredValue(t *testing.T) {
	b, _ := book.New("T")
	mustSet(t, b.Attributes, "odd", struct{ N int }{7})
	mustSet(t, b.Attributes, "named", stringer{})

	snapshot, err := Build(b, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	odd, _ := find(snapshot.Attributes, "odd")
	if odd.Type != "" || odd.Value != "{7}" {
		t.Errorf("odd = %+v", odd)
	}
	named, _ := find(snapshot.Attributes, "named")
	if named.Type != variant.TypeString || named.Value != "stringer" {
		t.Errorf("named = %+v", named)
	}
}

func TestWriteRead(t *testing.T) {
	snapshot, err := Build(sampleBook(t), Options{MaxText: 50})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			var buffer bytes.Buffer
			if err := Write(&buffer, snapshot, format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			var decoded Snapshot
			if err := Read(&buffer, &decoded, format); err != nil {
				t.Fatalf("Read: %v", err)
			}
			if decoded.Title != snapshot.Title || len(decoded.Attributes) != len(snapshot.Attributes) {
				t.Errorf("decoded = %+v", decoded)
			}
			leaf := decoded.Chapters[0].Chapters[0]
			if leaf.Body == nil || leaf.Body.Content != "第一章的内容" {
				t.Errorf("leaf body = %+v", leaf.Body)
			}
		})
	}
}

func TestCBORDeterministic(t *testing.T) {
	snapshot, err := Build(sampleBook(t), Options{MaxText: -1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var first, second bytes.Buffer
	if err := Write(&first, snapshot, FormatCBOR); err != nil {
		t.Fatal(err)
	}
	if err := Write(&second, snapshot, FormatCBOR); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("CBOR encoding is not deterministic")
	}
}

func TestJSONOmitsEmpty(t *testing.T) {
	b, _ := book.New("T")
	snapshot, err := Build(b, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buffer bytes.Buffer
	if err := Write(&buffer, snapshot, FormatJSON); err != nil {
		t.Fatal(err)
	}
	output := buffer.String()
	for _, absent := range []string{"extensions", "chapters", "body"} {
		if strings.Contains(output, absent) {
			t.Errorf("output mentions %q:\n%s", absent, output)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"cbor", FormatCBOR, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		got, err := ParseFormat(test.name)
		if (err != nil) != test.wantErr || got != test.want {
			t.Errorf("ParseFormat(%q) = %q, %v", test.name, got, err)
		}
	}
	if err := Write(&bytes.Buffer{}, struct{}{}, "xml"); err == nil {
		t.Error("Write accepted an unknown format")
	}
}
