// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package book

import (
	"errors"
	"slices"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/phylame/jem/lib/clock"
	"github.com/phylame/jem/lib/variant"
)

func TestNewBook(t *testing.T) {
	b, err := New("T")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Title() != "T" {
		t.Errorf("Title() = %q, want T", b.Title())
	}
	if b.Extensions == nil || b.Extensions.Len() != 0 {
		t.Errorf("Extensions = %v, want empty map", b.Extensions)
	}
	if b.Parent() != nil {
		t.Error("root has a parent")
	}
	if b.IsSection() {
		t.Error("empty book reported as a section")
	}

	untitled, _ := New("")
	if untitled.Attributes.Len() != 0 {
		t.Errorf("untitled book has %d attributes", untitled.Attributes.Len())
	}
}

func TestSectionDerivation(t *testing.T) {
	b, _ := New("T")
	part := b.NewChild()
	if part.IsSection() {
		t.Error("new child reported as a section")
	}
	leaf := part.NewChild()
	if !part.IsSection() {
		t.Error("node with a child not reported as a section")
	}
	if leaf.IsSection() {
		t.Error("leaf reported as a section")
	}
	if !b.IsSection() {
		t.Error("book with chapters not reported as a section")
	}
	if leaf.Parent() != part || part.Parent() != b.Root() {
		t.Error("parent links broken")
	}
}

func TestChildrenOrderAndPath(t *testing.T) {
	b, _ := New("T")
	first := b.NewChild()
	second := b.NewChild()
	first.SetTitle("one")
	second.SetTitle("two")
	nested := second.NewChild()
	nested.SetTitle("two.one")

	children := b.Children()
	if len(children) != 2 || children[0] != first || children[1] != second {
		t.Fatalf("Children() = %v", children)
	}
	children[0] = nil
	if b.Child(0) != first {
		t.Error("Children() returned the internal slice")
	}
	if b.Child(2) != nil || b.Child(-1) != nil {
		t.Error("Child out of range returned a node")
	}

	if path := nested.Path(); !slices.Equal(path, []int{2, 1}) {
		t.Errorf("nested.Path() = %v, want [2 1]", path)
	}
	if path := b.Path(); len(path) != 0 {
		t.Errorf("root Path() = %v, want empty", path)
	}
}

func TestWalk(t *testing.T) {
	b, _ := New("T")
	a := b.NewChild()
	a.SetTitle("a")
	a1 := a.NewChild()
	a1.SetTitle("a1")
	bb := b.NewChild()
	bb.SetTitle("b")

	var titles []string
	var depths []int
	for depth, chapter := range b.Walk() {
		titles = append(titles, chapter.Title())
		depths = append(depths, depth)
	}
	if !slices.Equal(titles, []string{"a", "a1", "b"}) {
		t.Errorf("Walk titles = %v", titles)
	}
	if !slices.Equal(depths, []int{1, 2, 1}) {
		t.Errorf("Walk depths = %v", depths)
	}
	if b.Count() != 3 {
		t.Errorf("Count() = %d, want 3", b.Count())
	}

	seen := 0
	for range b.Walk() {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("Walk continued after break: %d", seen)
	}
}

func TestAppend(t *testing.T) {
	b, _ := New("T")
	chapter := NewChapter("C1")
	if err := b.Append(chapter); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if chapter.Parent() != b.Root() || b.Len() != 1 {
		t.Error("Append did not attach the chapter")
	}
	if err := b.Append(chapter); !errors.Is(err, ErrAttached) {
		t.Errorf("second Append error = %v, want ErrAttached", err)
	}

	detached := NewChapter("loop")
	if err := detached.Append(detached); !errors.Is(err, ErrCycle) {
		t.Errorf("self Append error = %v, want ErrCycle", err)
	}
	inner := detached.NewChild()
	if err := inner.Append(detached); !errors.Is(err, ErrCycle) {
		t.Errorf("ancestor Append error = %v, want ErrCycle", err)
	}
}

func TestAccessorDefaults(t *testing.T) {
	chapter := NewChapter("")
	if chapter.Title() != "" || chapter.Author() != "" || chapter.Genre() != "" ||
		chapter.Publisher() != "" || chapter.Rights() != "" || chapter.Vendor() != "" ||
		chapter.State() != "" {
		t.Error("string accessors returned non-empty defaults")
	}
	if chapter.Cover() != nil {
		t.Error("Cover() default is not nil")
	}
	if chapter.Intro() != nil {
		t.Error("Intro() default is not nil")
	}
	if !chapter.Date().IsZero() {
		t.Errorf("Date() default = %v", chapter.Date())
	}
	if chapter.Language() != language.Und {
		t.Errorf("Language() default = %v", chapter.Language())
	}
	if chapter.Words() != 0 {
		t.Errorf("Words() default = %d", chapter.Words())
	}
}

func TestAccessorValues(t *testing.T) {
	chapter := NewChapter("C")
	chapter.Attributes.Set(AttrAuthor, "A. Writer")
	chapter.Attributes.Set(AttrWords, 42)
	chapter.Attributes.Set(AttrLanguage, language.MustParse("zh-CN"))
	chapter.Attributes.Set(AttrDate, time.Date(2020, 1, 15, 10, 30, 0, 0, time.UTC))
	chapter.Attributes.Set(AttrIntro, variant.NewText("intro", variant.TextPlain))
	chapter.Attributes.Set(AttrCover, variant.NewBytesBlob("cover.png", "", []byte{1}))

	if chapter.Author() != "A. Writer" {
		t.Errorf("Author() = %q", chapter.Author())
	}
	if chapter.Words() != 42 {
		t.Errorf("Words() = %d, want 42", chapter.Words())
	}
	if chapter.Language().String() != "zh-CN" {
		t.Errorf("Language() = %v", chapter.Language())
	}
	if chapter.Date() != (variant.LocalDate{Year: 2020, Month: time.January, Day: 15}) {
		t.Errorf("Date() = %v", chapter.Date())
	}
	if chapter.Intro() == nil || chapter.Cover() == nil {
		t.Error("Intro() or Cover() missing")
	}

	// A value of the wrong kind reads as the empty default.
	chapter.Attributes.Set(AttrWords, "many")
	if chapter.Words() != 0 {
		t.Errorf("Words() with string value = %d, want 0", chapter.Words())
	}
}

func TestDeclaredType(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"title", variant.TypeString, true},
		{"cover", variant.TypeFile, true},
		{"intro", variant.TypeText, true},
		{"pubdate", variant.TypeDate, true},
		{"language", variant.TypeLocale, true},
		{"words", variant.TypeInt, true},
		{"price", variant.TypeReal, true},
		{"mood", "", false},
	}
	for _, tt := range tests {
		got, ok := DeclaredType(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DeclaredType(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestValidator(t *testing.T) {
	registry := variant.NewBuiltin(clock.Fake(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	b, err := New("T", WithValidator(Validator(registry)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	accepted := []struct {
		name  string
		value any
	}{
		{AttrWords, int64(42)},
		{AttrWords, 7},
		{AttrDate, variant.LocalDate{Year: 2020, Month: time.January, Day: 1}},
		{AttrDate, time.Now()},
		{AttrIntro, variant.NewText("x", "")},
		{"mood", 3.5},
	}
	for _, tt := range accepted {
		if _, err := b.Attributes.Set(tt.name, tt.value); err != nil {
			t.Errorf("Set(%s, %#v): %v", tt.name, tt.value, err)
		}
	}

	rejected := []struct {
		name  string
		value any
	}{
		{AttrWords, "42"},
		{AttrTitle, 1},
		{AttrCover, "cover.png"},
		{AttrLanguage, "en"},
		{AttrPrice, struct{}{}},
	}
	for _, tt := range rejected {
		_, err := b.Attributes.Set(tt.name, tt.value)
		var validationError *variant.ValidationError
		if !errors.As(err, &validationError) {
			t.Errorf("Set(%s, %#v) error = %v, want *ValidationError", tt.name, tt.value, err)
		}
	}

	// Children inherit the validator; extensions do not have one.
	child := b.NewChild()
	if _, err := child.Attributes.Set(AttrWords, "many"); err == nil {
		t.Error("child accepted a string word count")
	}
	if _, err := b.Extensions.Set(AttrWords, "many"); err != nil {
		t.Errorf("extensions rejected a value: %v", err)
	}
}

func TestNewRejectsInvalidTitle(t *testing.T) {
	refuse := func(string, any) error { return errors.New("read-only") }
	if _, err := New("T", WithValidator(refuse)); err == nil {
		t.Error("New succeeded although the validator rejects the title")
	}
}
