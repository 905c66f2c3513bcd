// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package variant

import (
	"bytes"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// OctetStream is the MIME type of blobs whose content type is unknown.
const OctetStream = "application/octet-stream"

// Blob is a handle to binary content, such as a cover image.
type Blob interface {
	// Name returns the blob's source name. Its extension selects the
	// extension of the container entry the blob is written to.
	Name() string

	// MIME returns the content type.
	MIME() string

	// Open returns a stream over the content. The caller closes it.
	Open() (io.ReadCloser, error)
}

// NewBytesBlob returns an in-memory Blob. An empty mime is guessed
// from the name's extension.
func NewBytesBlob(name, mimeType string, data []byte) Blob {
	return &bytesBlob{name: name, mime: guessMIME(name, mimeType), data: data}
}

type bytesBlob struct {
	name string
	mime string
	data []byte
}

func (b *bytesBlob) Name() string { return b.name }

func (b *bytesBlob) MIME() string { return b.mime }

func (b *bytesBlob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// NewLazyBlob returns a Blob whose content is read through open.
func NewLazyBlob(name, mimeType string, open Opener) Blob {
	return &lazyBlob{name: name, mime: guessMIME(name, mimeType), open: open}
}

type lazyBlob struct {
	name string
	mime string
	open Opener
}

func (b *lazyBlob) Name() string { return b.name }

func (b *lazyBlob) MIME() string { return b.mime }

func (b *lazyBlob) Open() (io.ReadCloser, error) { return b.open() }

// NewFileBlob returns a Blob backed by a file on disk. The file is
// opened on each call to Open.
func NewFileBlob(filePath, mimeType string) Blob {
	return NewLazyBlob(filepath.Base(filePath), mimeType, func() (io.ReadCloser, error) {
		return os.Open(filePath)
	})
}

// ReadBlob reads the whole content of b.
func ReadBlob(b Blob) ([]byte, error) {
	stream, err := b.Open()
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return io.ReadAll(stream)
}

// Extension returns the extension of name without the dot, or
// fallback when name has none.
func Extension(name, fallback string) string {
	extension := strings.TrimPrefix(path.Ext(name), ".")
	if extension == "" {
		return fallback
	}
	return extension
}

func guessMIME(name, mimeType string) string {
	if mimeType != "" {
		return mimeType
	}
	if guessed := mime.TypeByExtension(path.Ext(name)); guessed != "" {
		if base, _, found := strings.Cut(guessed, ";"); found {
			return strings.TrimSpace(base)
		}
		return guessed
	}
	return OctetStream
}
