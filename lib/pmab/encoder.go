// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package pmab

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phylame/jem/lib/book"
	"github.com/phylame/jem/lib/variant"
	"github.com/phylame/jem/lib/vdm"
)

// EncoderOptions configures an Encoder. The zero value writes UTF-8
// text and the default temporal patterns in the local time zone,
// using the shared builtin registry.
type EncoderOptions struct {
	// Registry classifies and renders attribute values.
	Registry *variant.Registry

	// TextEncoding is the charset of externalized text payloads.
	TextEncoding string

	// DateFormat, TimeFormat and DateTimeFormat are yyyy-MM-dd style
	// patterns for temporal values. Each is recorded in the item's
	// type tag.
	DateFormat     string
	TimeFormat     string
	DateTimeFormat string

	// Location is the zone datetimes are rendered in.
	Location *time.Location

	Logger *slog.Logger
}

// Encoder writes books as PMAB containers. An Encoder is safe for
// concurrent use on different books and containers.
type Encoder struct {
	registry  *variant.Registry
	charset   string
	temporals map[string]*variant.Temporal
	logger    *slog.Logger
}

// NewEncoder validates options and returns an Encoder.
func NewEncoder(options EncoderOptions) (*Encoder, error) {
	encoder := &Encoder{
		registry:  options.Registry,
		charset:   options.TextEncoding,
		temporals: make(map[string]*variant.Temporal, 3),
		logger:    options.Logger,
	}
	if encoder.registry == nil {
		encoder.registry = variant.Builtin()
	}
	if encoder.charset == "" {
		encoder.charset = variant.DefaultCharset
	}
	if _, err := variant.Charset(encoder.charset); err != nil {
		return nil, fmt.Errorf("pmab: text encoding: %w", err)
	}
	if encoder.logger == nil {
		encoder.logger = slog.New(slog.DiscardHandler)
	}

	patterns := map[string]string{
		variant.TypeDate:     orDefault(options.DateFormat, DefaultDateFormat),
		variant.TypeTime:     orDefault(options.TimeFormat, DefaultTimeFormat),
		variant.TypeDateTime: orDefault(options.DateTimeFormat, DefaultDateTimeFormat),
	}
	for id, pattern := range patterns {
		converter, err := variant.NewTemporal(id, pattern, options.Location)
		if err != nil {
			return nil, fmt.Errorf("pmab: %s format: %w", id, err)
		}
		encoder.temporals[id] = converter
	}
	return encoder, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Encode writes b into w: the mimetype entry first, then book.xml and
// content.xml, with externalized payloads written as they are met.
// Encode does not close w. On error the container is incomplete and
// should be discarded.
func (e *Encoder) Encode(ctx context.Context, b *book.Book, w vdm.Writer) error {
	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}
	if err := w.Store(EntryMIMEType, []byte(MIMEType)); err != nil {
		return err
	}

	run := &encodeRun{encoder: e, writer: w}
	if err := run.writeBook(b); err != nil {
		return err
	}
	if err := run.writeContent(ctx, b); err != nil {
		return err
	}
	e.logger.Debug("encoded pmab container",
		"container", w.Name(),
		"chapters", b.Count(),
		"payloads", run.payloads,
	)
	return nil
}

// encodeRun holds the state of one Encode call.
type encodeRun struct {
	encoder  *Encoder
	writer   vdm.Writer
	payloads int
}

func (r *encodeRun) writeBook(b *book.Book) error {
	doc := newDocument()
	doc.start(tagBook, attrVersion, Version3)

	doc.start(tagAttributes)
	if err := r.writeItems(doc, b.Attributes, "", ""); err != nil {
		return err
	}
	doc.end(tagAttributes)

	doc.start(tagExtensions)
	if err := r.writeItems(doc, b.Extensions, "", extensionPrefix); err != nil {
		return err
	}
	doc.end(tagExtensions)

	doc.end(tagBook)
	return r.commit(EntryBook, doc)
}

func (r *encodeRun) writeContent(ctx context.Context, b *book.Book) error {
	doc := newDocument()
	doc.start(tagContent, attrVersion, Version3)
	if b.Text != nil {
		if err := r.writeBody(doc, b.Text, textDir+bookTextName+"."+textExtension(b.Text.Type())); err != nil {
			return err
		}
	}
	for index, chapter := range b.Children() {
		if err := r.writeChapter(ctx, doc, chapter, []int{index + 1}); err != nil {
			return err
		}
	}
	doc.end(tagContent)
	return r.commit(EntryContent, doc)
}

func (r *encodeRun) writeChapter(ctx context.Context, doc *document, chapter *book.Chapter, path []int) error {
	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}
	prefix := nodePrefix(path)
	doc.start(tagChapter)
	if err := r.writeItems(doc, chapter.Attributes, prefix, prefix); err != nil {
		return err
	}
	if chapter.Text != nil {
		if err := r.writeBody(doc, chapter.Text, textDir+nodeName(path)+"."+textExtension(chapter.Text.Type())); err != nil {
			return err
		}
	}
	for index, child := range chapter.Children() {
		if err := r.writeChapter(ctx, doc, child, append(path[:len(path):len(path)], index+1)); err != nil {
			return err
		}
	}
	doc.end(tagChapter)
	return nil
}

// writeItems emits one <item> per entry of attributes. namePrefix is
// prepended to item names, filePrefix to externalized entry names.
func (r *encodeRun) writeItems(doc *document, attributes *variant.Map, namePrefix, filePrefix string) error {
	for name, value := range attributes.All() {
		typeTag, text, err := r.encodeValue(filePrefix+name, value)
		if err != nil {
			return fmt.Errorf("pmab: encoding attribute %q: %w", namePrefix+name, err)
		}
		doc.start(tagItem, attrName, namePrefix+name, attrType, typeTag)
		doc.text(text)
		doc.end(tagItem)
	}
	return nil
}

func (r *encodeRun) writeBody(doc *document, text variant.Text, entry string) error {
	typeTag, err := r.writeText(entry, text)
	if err != nil {
		return fmt.Errorf("pmab: encoding chapter text: %w", err)
	}
	doc.start(tagBody, attrType, typeTag)
	doc.text(entry)
	doc.end(tagBody)
	return nil
}

// encodeValue returns the type tag and item text for value.
// fileName is the base of any externalized entry.
func (r *encodeRun) encodeValue(fileName string, value any) (string, string, error) {
	registry := r.encoder.registry
	id, ok := registry.TypeFor(value)
	if !ok {
		return variant.TypeString, fmt.Sprint(value), nil
	}

	switch id {
	case variant.TypeText:
		text := value.(variant.Text)
		entry := textDir + fileName + "." + textExtension(text.Type())
		typeTag, err := r.writeText(entry, text)
		return typeTag, entry, err

	case variant.TypeFile:
		blob := value.(variant.Blob)
		entry := resourcesDir + fileName + "." + variant.Extension(blob.Name(), "dat")
		if err := r.writeBlob(entry, blob); err != nil {
			return "", "", err
		}
		mimeType := blob.MIME()
		if mimeType == "" {
			mimeType = variant.OctetStream
		}
		return mimeType, entry, nil

	case variant.TypeDate, variant.TypeTime, variant.TypeDateTime:
		converter := r.encoder.temporals[id]
		text, err := converter.Render(value)
		if err != nil {
			return "", "", err
		}
		return joinType(id, paramFormat, converter.Pattern()), text, nil
	}

	converter, ok := registry.ConverterFor(id)
	if !ok {
		return id, fmt.Sprint(value), nil
	}
	text, err := converter.Render(value)
	if err != nil {
		return "", "", err
	}
	return id, text, nil
}

// writeText externalizes text and returns its type tag.
func (r *encodeRun) writeText(entry string, text variant.Text) (string, error) {
	content, err := text.Text()
	if err != nil {
		return "", fmt.Errorf("reading text for %s: %w", entry, err)
	}
	stream, err := r.writer.Create(entry)
	if err != nil {
		return "", err
	}
	if err := variant.WriteText(stream, content, r.encoder.charset); err != nil {
		return "", err
	}
	r.wrote(entry)
	subtype := text.Type()
	if subtype == "" {
		subtype = variant.TextPlain
	}
	return joinType(textDir+subtype, paramEncoding, r.encoder.charset), nil
}

func (r *encodeRun) writeBlob(entry string, blob variant.Blob) error {
	source, err := blob.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", blob.Name(), err)
	}
	defer source.Close()
	stream, err := r.writer.Create(entry)
	if err != nil {
		return err
	}
	if _, err := io.Copy(stream, source); err != nil {
		return fmt.Errorf("copying %s: %w", blob.Name(), err)
	}
	r.wrote(entry)
	return nil
}

func (r *encodeRun) commit(entry string, doc *document) error {
	data, err := doc.bytes()
	if err != nil {
		return fmt.Errorf("pmab: rendering %s: %w", entry, err)
	}
	stream, err := r.writer.Create(entry)
	if err != nil {
		return err
	}
	if _, err := stream.Write(data); err != nil {
		return err
	}
	r.encoder.logger.Debug("wrote pmab document", "entry", entry, "bytes", len(data))
	return nil
}

func (r *encodeRun) wrote(entry string) {
	r.payloads++
	r.encoder.logger.Debug("wrote pmab payload", "entry", entry)
}

// document buffers one XML document. The first encoding error sticks
// and is reported by bytes.
type document struct {
	buffer  bytes.Buffer
	encoder *xml.Encoder
	err     error
}

func newDocument() *document {
	doc := &document{}
	doc.buffer.WriteString(xml.Header)
	doc.encoder = xml.NewEncoder(&doc.buffer)
	doc.encoder.Indent("", "  ")
	return doc
}

// start opens an element with attrs given as name, value pairs.
func (d *document) start(name string, attrs ...string) {
	element := xml.StartElement{Name: xml.Name{Local: name}}
	for i := 0; i+1 < len(attrs); i += 2 {
		element.Attr = append(element.Attr, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	d.token(element)
}

func (d *document) end(name string) {
	d.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (d *document) text(content string) {
	d.token(xml.CharData(content))
}

func (d *document) token(token xml.Token) {
	if d.err == nil {
		d.err = d.encoder.EncodeToken(token)
	}
}

func (d *document) bytes() ([]byte, error) {
	if d.err == nil {
		d.err = d.encoder.Flush()
	}
	if d.err != nil {
		return nil, d.err
	}
	d.buffer.WriteByte('\n')
	return d.buffer.Bytes(), nil
}
