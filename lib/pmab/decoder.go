// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package pmab

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/phylame/jem/lib/book"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

// DecoderOptions configures a Decoder. The zero value reads UTF-8 text
// and the loose ISO grammar for temporal items without a pattern,
// using the shared builtin registry.
type DecoderOptions struct {
	Registry *variant.Registry

	// TextEncoding is the charset assumed for text payloads whose type
	// tag has no encoding parameter.
	TextEncoding string

	// DateFormat, TimeFormat and DateTimeFormat are used for temporal
	// items without a format parameter. Empty selects the loose ISO
	// grammar.
	DateFormat     string
	TimeFormat     string
	DateTimeFormat string

	// Location is the zone for temporal text without an offset.
	Location *time.Location

	// Strict attaches book.Validator to every decoded attribute map,
	// so a well-known attribute of the wrong type fails the decode.
	Strict bool

	Logger *slog.Logger
}

// Decoder reads PMAB containers into books. A Decoder is safe for
// concurrent use on different containers.
type Decoder struct {
	registry *variant.Registry
	charset  string
	patterns map[string]string
	location *time.Location
	strict   bool
	logger   *slog.Logger
}

// NewDecoder validates options and returns a Decoder.
func NewDecoder(options DecoderOptions) (*Decoder, error) {
	decoder := &Decoder{
		registry: options.Registry,
		charset:  options.TextEncoding,
		patterns: map[string]string{
			variant.TypeDate:     options.DateFormat,
			variant.TypeTime:     options.TimeFormat,
			variant.TypeDateTime: options.DateTimeFormat,
		},
		location: options.Location,
		strict:   options.Strict,
		logger:   options.Logger,
	}
	if decoder.registry == nil {
		decoder.registry = variant.Builtin()
	}
	if decoder.charset == "" {
		decoder.charset = variant.DefaultCharset
	}
	if decoder.logger == nil {
		decoder.logger = slog.New(slog.DiscardHandler)
	}
	for id, pattern := range decoder.patterns {
		if _, err := variant.NewTemporal(id, pattern, decoder.location); err != nil {
			return nil, fmt.Errorf("pmab: %s format: %w", id, err)
		}
	}
	return decoder, nil
}

// Decode reads the book stored in r. Lazy text and blob values in the
// result read from r, which must stay open while they are used.
func (d *Decoder) Decode(ctx context.Context, r vdm.Reader) (*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}
	if err := checkMIMEType(r); err != nil {
		return nil, err
	}

	var options []book.Option
	if d.strict {
		options = append(options, book.WithValidator(book.Validator(d.registry)))
	}
	b, err := book.New("", options...)
	if err != nil {
		return nil, err
	}

	run := &decodeRun{
		decoder:   d,
		reader:    r,
		book:      b,
		temporals: make(map[string]*variant.Temporal),
	}
	if err := run.parse(ctx, EntryBook, tagBook, run.bookHandler); err != nil {
		return nil, err
	}
	if err := run.parse(ctx, EntryContent, tagContent, run.contentHandler); err != nil {
		return nil, err
	}
	d.logger.Debug("decoded pmab container",
		"container", r.Name(),
		"attributes", b.Attributes.Len(),
		"extensions", b.Extensions.Len(),
		"chapters", b.Count(),
	)
	return b, nil
}

// Sniff reports whether r holds the PMAB mimetype entry. It reads no
// other entry.
func Sniff(r vdm.Reader) (bool, error) {
	err := checkMIMEType(r)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrBadFormat):
		return false, nil
	default:
		return false, err
	}
}

func checkMIMEType(r vdm.Reader) error {
	stream, err := r.Open(EntryMIMEType)
	if errors.Is(err, vdm.ErrNotFound) {
		return fmt.Errorf("%w: no %s entry", ErrBadFormat, EntryMIMEType)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	content, err := io.ReadAll(io.LimitReader(stream, int64(len(MIMEType))+1))
	if err != nil {
		return &vdm.EntryError{Op: "read", Container: r.Name(), Path: EntryMIMEType, Err: err}
	}
	if string(content) != MIMEType {
		return fmt.Errorf("%w: mimetype %q", ErrBadFormat, content)
	}
	return nil
}

// handler receives the events of one document below its root element.
type handler interface {
	// start handles an opening tag. Returning errSkip discards the
	// element and its subtree.
	start(element xml.StartElement) error

	// chars receives character data.
	chars(data xml.CharData)

	// end handles a closing tag.
	end(name string) error
}

// errSkip asks parse to skip the current element.
var errSkip = errors.New("skip element")

// handlerFor returns the handler for a document version.
type handlerFor func(version string) (handler, bool)

// decodeRun holds the state of one Decode call.
type decodeRun struct {
	decoder   *Decoder
	reader    vdm.Reader
	book      *book.Book
	temporals map[string]*variant.Temporal
}

// parse pull-parses one entry, dispatching on the root version.
func (r *decodeRun) parse(ctx context.Context, entry, root string, handlers handlerFor) error {
	stream, err := r.reader.Open(entry)
	if err != nil {
		if errors.Is(err, vdm.ErrNotFound) {
			return &ParseError{Entry: entry, Reason: "entry missing", Err: err}
		}
		return err
	}
	defer stream.Close()

	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		encoding, err := variant.Charset(label)
		if err != nil {
			return nil, err
		}
		return encoding.NewDecoder().Reader(input), nil
	}
	line := func() int {
		line, _ := decoder.InputPos()
		return line
	}
	fail := func(err error) error {
		if errors.Is(err, ErrInterrupted) {
			return err
		}
		var parseError *ParseError
		if !errors.As(err, &parseError) {
			parseError = &ParseError{Err: err}
		}
		if parseError.Entry == "" {
			parseError.Entry = entry
		}
		if parseError.Line == 0 {
			parseError.Line = line()
		}
		return parseError
	}

	var current handler
	depth := 0
	for {
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(err)
		}

		switch token := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				if token.Name.Local != root {
					return fail(&ParseError{Tag: token.Name.Local, Reason: fmt.Sprintf("root element is not <%s>", root)})
				}
				version, ok := attribute(token, attrVersion)
				if !ok {
					return fail(&ParseError{Tag: root, Attr: attrVersion})
				}
				current, ok = handlers(version)
				if !ok {
					return &UnsupportedVersionError{
						Entry:   entry,
						Line:    line(),
						Version: version,
						Legacy:  version == Version2,
					}
				}
				r.decoder.logger.Debug("parsing pmab document", "entry", entry, "version", version)
				continue
			}
			if err := current.start(token); err != nil {
				if !errors.Is(err, errSkip) {
					return fail(err)
				}
				if err := decoder.Skip(); err != nil {
					return fail(err)
				}
				depth--
			}
		case xml.CharData:
			if depth > 1 {
				current.chars(token)
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				continue
			}
			if err := current.end(token.Name.Local); err != nil {
				return fail(err)
			}
		}
	}
	if current == nil {
		return fail(&ParseError{Reason: fmt.Sprintf("no <%s> root element", root)})
	}
	return nil
}

func attribute(element xml.StartElement, name string) (string, bool) {
	for _, attr := range element.Attr {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// item accumulates one <item> or <content> element. The map it
// populates is fixed when the element opens.
type item struct {
	name      string
	typeTag   string
	target    *variant.Map
	text      strings.Builder
	capturing bool
}

func (it *item) begin(element xml.StartElement, target *variant.Map) {
	it.name, _ = attribute(element, attrName)
	it.typeTag, _ = attribute(element, attrType)
	it.target = target
	it.text.Reset()
	it.capturing = true
}

// nested rejects a structural element that opens while an item is
// still capturing its text.
func (it *item) nested(element xml.StartElement) error {
	if !it.capturing {
		return nil
	}
	return &ParseError{Tag: element.Name.Local, Reason: fmt.Sprintf("<%s> inside an item", element.Name.Local)}
}

func (it *item) chars(data xml.CharData) {
	if it.capturing {
		it.text.Write(data)
	}
}

// finish stops capturing and returns the trimmed text.
func (it *item) finish() string {
	it.capturing = false
	return strings.TrimSpace(it.text.String())
}

// bookHandler parses book.xml.
func (r *decodeRun) bookHandler(version string) (handler, bool) {
	if version != Version3 {
		return nil, false
	}
	return &bookV3{run: r}, true
}

type bookV3 struct {
	run    *decodeRun
	target *variant.Map
	item   item
}

func (h *bookV3) start(element xml.StartElement) error {
	switch element.Name.Local {
	case tagAttributes, tagExtensions, tagItem:
		if err := h.item.nested(element); err != nil {
			return err
		}
	}
	switch element.Name.Local {
	case tagAttributes:
		h.target = h.run.book.Attributes
	case tagExtensions:
		h.target = h.run.book.Extensions
	case tagItem:
		if h.target == nil {
			return &ParseError{Tag: tagItem, Reason: "item outside <attributes> or <extensions>"}
		}
		if err := requireAttr(element, attrName); err != nil {
			return err
		}
		h.item.begin(element, h.target)
	default:
		return errSkip
	}
	return nil
}

func (h *bookV3) chars(data xml.CharData) { h.item.chars(data) }

func (h *bookV3) end(name string) error {
	switch name {
	case tagAttributes, tagExtensions:
		h.target = nil
	case tagItem:
		return h.run.setItem(h.item.target, h.item.name, h.item.typeTag, h.item.finish())
	}
	return nil
}

// contentHandler parses content.xml.
func (r *decodeRun) contentHandler(version string) (handler, bool) {
	if version != Version3 {
		return nil, false
	}
	return &contentV3{run: r, current: r.book.Root()}, true
}

type contentV3 struct {
	run     *decodeRun
	current *book.Chapter
	item    item
}

func (h *contentV3) start(element xml.StartElement) error {
	switch element.Name.Local {
	case tagChapter, tagItem, tagBody:
		if err := h.item.nested(element); err != nil {
			return err
		}
	}
	switch element.Name.Local {
	case tagChapter:
		h.current = h.current.NewChild()
	case tagItem:
		if h.current.Parent() == nil {
			return &ParseError{Tag: tagItem, Reason: "item outside <chapter>"}
		}
		if err := requireAttr(element, attrName); err != nil {
			return err
		}
		h.item.begin(element, h.current.Attributes)
	case tagBody:
		if err := requireAttr(element, attrType); err != nil {
			return err
		}
		h.item.begin(element, nil)
	default:
		return errSkip
	}
	return nil
}

func (h *contentV3) chars(data xml.CharData) { h.item.chars(data) }

func (h *contentV3) end(name string) error {
	switch name {
	case tagChapter:
		h.current = h.current.Parent()
	case tagItem:
		itemName := h.item.name
		if stripped, ok := strings.CutPrefix(itemName, nodePrefix(h.current.Path())); ok && stripped != "" {
			itemName = stripped
		}
		return h.run.setItem(h.item.target, itemName, h.item.typeTag, h.item.finish())
	case tagBody:
		text := h.item.finish()
		body, err := h.run.bodyValue(h.item.typeTag, text)
		if err != nil {
			return &ParseError{Tag: tagBody, Attr: attrType, Text: text, Err: err}
		}
		h.current.Text = body
	}
	return nil
}

func requireAttr(element xml.StartElement, name string) error {
	if _, ok := attribute(element, name); !ok {
		return &ParseError{Tag: element.Name.Local, Attr: name}
	}
	return nil
}

// setItem converts one item and stores it in target.
func (r *decodeRun) setItem(target *variant.Map, name, typeTag, text string) error {
	value, err := r.value(name, typeTag, text)
	if err != nil {
		return &ParseError{Tag: tagItem, Text: text, Reason: fmt.Sprintf("item %q of type %q", name, typeTag), Err: err}
	}
	if _, err := target.Set(name, value); err != nil {
		return &ParseError{Tag: tagItem, Reason: fmt.Sprintf("item %q", name), Err: err}
	}
	return nil
}

// value rebuilds an attribute value from its type tag and text. A
// blank or unresolvable tag falls back to the declared type of a
// well-known name, then to the raw text.
func (r *decodeRun) value(name, typeTag, text string) (any, error) {
	base, params := splitType(typeTag)
	if !r.resolvable(base) {
		declared, ok := book.DeclaredType(name)
		if !ok {
			return text, nil
		}
		base, params = declared, nil
	}

	switch {
	case strings.HasPrefix(base, textDir):
		return r.lazyText(strings.TrimPrefix(base, textDir), params, text), nil
	case base == variant.TypeText:
		return variant.NewText(text, variant.TextPlain), nil
	case base == variant.TypeFile:
		return variant.NewLazyBlob(path.Base(text), variant.OctetStream, r.opener(text)), nil
	case variant.IsTemporal(base):
		converter, err := r.temporal(base, params[paramFormat])
		if err != nil {
			return nil, err
		}
		return converter.Parse(text)
	case r.decoder.registry.Has(base):
		converter, ok := r.decoder.registry.ConverterFor(base)
		if !ok {
			return text, nil
		}
		return converter.Parse(text)
	default:
		return variant.NewLazyBlob(path.Base(text), base, r.opener(text)), nil
	}
}

// resolvable reports whether a type base has a decoding rule.
func (r *decodeRun) resolvable(base string) bool {
	return base != "" && (r.decoder.registry.Has(base) || mimePattern.MatchString(base))
}

// bodyValue rebuilds a chapter body from a <content> element.
func (r *decodeRun) bodyValue(typeTag, text string) (variant.Text, error) {
	base, params := splitType(typeTag)
	switch {
	case strings.HasPrefix(base, textDir) && mimePattern.MatchString(base):
		return r.lazyText(strings.TrimPrefix(base, textDir), params, text), nil
	case base == variant.TypeText:
		return variant.NewText(text, variant.TextPlain), nil
	default:
		return nil, fmt.Errorf("content type %q is not a text type", typeTag)
	}
}

func (r *decodeRun) lazyText(subtype string, params map[string]string, entry string) variant.Text {
	charset := params[paramEncoding]
	if charset == "" {
		charset = r.decoder.charset
	}
	return variant.NewLazyText(subtype, charset, r.opener(entry))
}

func (r *decodeRun) opener(entry string) variant.Opener {
	reader := r.reader
	return func() (io.ReadCloser, error) { return reader.Open(entry) }
}

// temporal returns a converter for id with pattern, or with the
// configured pattern when pattern is empty.
func (r *decodeRun) temporal(id, pattern string) (*variant.Temporal, error) {
	if pattern == "" {
		pattern = r.decoder.patterns[id]
	}
	key := id + ";" + pattern
	if converter, ok := r.temporals[key]; ok {
		return converter, nil
	}
	converter, err := variant.NewTemporal(id, pattern, r.decoder.location)
	if err != nil {
		return nil, err
	}
	r.temporals[key] = converter
	return converter, nil
}
