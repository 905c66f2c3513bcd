// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package vdm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ZipReader reads a ZIP container.
type ZipReader struct {
	name    string
	archive *zip.Reader
	files   map[string]*zip.File
	entries []string
	closer  io.Closer
}

// OpenZip opens the ZIP file at path.
func OpenZip(path string) (*ZipReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vdm: opening zip container: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("vdm: opening zip container: %w", err)
	}
	reader, err := NewZipReader(file, info.Size(), path)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file
	return reader, nil
}

// NewZipReader reads a ZIP container of the given size from r. Close
// does not close r.
func NewZipReader(r io.ReaderAt, size int64, name string) (*ZipReader, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("vdm: reading zip container %s: %w", name, err)
	}
	archive.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	reader := &ZipReader{
		name:    name,
		archive: archive,
		files:   make(map[string]*zip.File, len(archive.File)),
	}
	for _, file := range archive.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		if _, duplicate := reader.files[file.Name]; duplicate {
			continue
		}
		reader.files[file.Name] = file
		reader.entries = append(reader.entries, file.Name)
	}
	return reader, nil
}

func (r *ZipReader) Name() string { return r.name }

func (r *ZipReader) Type() Type { return TypeZip }

func (r *ZipReader) Entries() []string { return append([]string(nil), r.entries...) }

func (r *ZipReader) Open(path string) (io.ReadCloser, error) {
	if r.files == nil {
		return nil, &EntryError{Op: "open", Container: r.name, Path: path, Err: ErrClosed}
	}
	file, ok := r.files[path]
	if !ok {
		return nil, &EntryError{Op: "open", Container: r.name, Path: path, Err: ErrNotFound}
	}
	stream, err := file.Open()
	if err != nil {
		return nil, &EntryError{Op: "open", Container: r.name, Path: path, Err: err}
	}
	return stream, nil
}

func (r *ZipReader) Close() error {
	r.files = nil
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer.Close()
}

// ZipWriter writes a ZIP container.
type ZipWriter struct {
	name    string
	archive *zip.Writer
	options WriterOptions
	method  uint16
	paths   map[string]struct{}
	closer  io.Closer
	closed  bool
}

// CreateZip creates (or truncates) the ZIP file at path.
func CreateZip(path string, options WriterOptions) (*ZipWriter, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("vdm: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("vdm: creating zip container: %w", err)
	}
	writer, err := NewZipWriter(file, path, options)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.closer = file
	return writer, nil
}

// NewZipWriter writes a ZIP container to w. Close flushes the archive
// but does not close w.
func NewZipWriter(w io.Writer, name string, options WriterOptions) (*ZipWriter, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("vdm: %w", err)
	}
	archive := zip.NewWriter(w)
	writer := &ZipWriter{
		name:    name,
		archive: archive,
		options: options,
		paths:   make(map[string]struct{}),
	}

	switch options.Compression {
	case CompressionStore:
		writer.method = zip.Store
	case CompressionDeflate:
		writer.method = zip.Deflate
		level := options.Level
		if level == 0 {
			level = flate.DefaultCompression
		}
		archive.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	case CompressionZstd:
		writer.method = zstd.ZipMethodWinZip
		encoderOptions := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if options.Level != 0 {
			encoderOptions = append(encoderOptions, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(options.Level)))
		}
		archive.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor(encoderOptions...))
	}
	return writer, nil
}

func (w *ZipWriter) Name() string { return w.name }

func (w *ZipWriter) Type() Type { return TypeZip }

func (w *ZipWriter) Create(path string) (io.Writer, error) {
	stream, err := w.begin("create", path, w.method)
	if err != nil {
		return nil, err
	}
	return &entryWriter{writer: stream, container: w.name, path: path}, nil
}

func (w *ZipWriter) Store(path string, data []byte) error {
	stream, err := w.begin("store", path, zip.Store)
	if err != nil {
		return err
	}
	if _, err := io.Copy(stream, bytes.NewReader(data)); err != nil {
		return &EntryError{Op: "store", Container: w.name, Path: path, Err: err}
	}
	return nil
}

func (w *ZipWriter) begin(op, path string, method uint16) (io.Writer, error) {
	if w.closed {
		return nil, &EntryError{Op: op, Container: w.name, Path: path, Err: ErrClosed}
	}
	if err := checkPath(w.name, op, path); err != nil {
		return nil, err
	}
	if _, duplicate := w.paths[path]; duplicate {
		return nil, &EntryError{Op: op, Container: w.name, Path: path, Err: fs.ErrExist}
	}
	header := &zip.FileHeader{Name: path, Method: method}
	if w.options.Clock != nil {
		header.Modified = w.options.Clock.Now()
	}
	stream, err := w.archive.CreateHeader(header)
	if err != nil {
		return nil, &EntryError{Op: op, Container: w.name, Path: path, Err: err}
	}
	w.paths[path] = struct{}{}
	return stream, nil
}

func (w *ZipWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.archive.Close()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	if err != nil {
		return fmt.Errorf("vdm: finishing zip container %s: %w", w.name, err)
	}
	return nil
}

// entryWriter attributes write failures to the entry being written.
type entryWriter struct {
	writer    io.Writer
	container string
	path      string
}

func (e *entryWriter) Write(p []byte) (int, error) {
	n, err := e.writer.Write(p)
	if err != nil {
		return n, &EntryError{Op: "write", Container: e.container, Path: e.path, Err: err}
	}
	return n, nil
}
