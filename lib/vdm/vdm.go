// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package vdm

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Type identifies a container implementation.
type Type string

const (
	// TypeZip is a ZIP archive.
	TypeZip Type = "zip"

	// TypeDir is a plain directory tree.
	TypeDir Type = "dir"
)

// ParseType parses a container type name.
func ParseType(name string) (Type, error) {
	switch Type(strings.ToLower(name)) {
	case TypeZip:
		return TypeZip, nil
	case TypeDir:
		return TypeDir, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
}

var (
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("vdm: entry not found")

	// ErrUnsupportedType is returned for unknown container types.
	ErrUnsupportedType = errors.New("vdm: unsupported container type")

	// ErrInvalidPath is returned for entry paths that are empty,
	// absolute, or escape the container.
	ErrInvalidPath = errors.New("vdm: invalid entry path")

	// ErrClosed is returned by operations on a closed container.
	ErrClosed = errors.New("vdm: container closed")
)

// EntryError describes a failed operation on one container entry.
type EntryError struct {
	// Op is the operation, such as "open", "create" or "store".
	Op string

	// Container is the container's name, usually its file path.
	Container string

	// Path is the entry path.
	Path string

	Err error
}

func (err *EntryError) Error() string {
	return fmt.Sprintf("vdm: %s %s in %s: %v", err.Op, err.Path, err.Container, err.Err)
}

func (err *EntryError) Unwrap() error { return err.Err }

// Reader gives read access to the entries of a container.
type Reader interface {
	// Name returns the container's name, usually its file path.
	Name() string

	// Type returns the container type.
	Type() Type

	// Entries lists entry paths in container order.
	Entries() []string

	// Open returns a stream over the entry's content. A missing entry
	// yields an *EntryError wrapping ErrNotFound.
	Open(path string) (io.ReadCloser, error)

	// Close releases the container. Lazy handles bound to its entries
	// fail afterwards.
	Close() error
}

// Writer gives write access to a new container.
type Writer interface {
	// Name returns the container's name, usually its file path.
	Name() string

	// Type returns the container type.
	Type() Type

	// Create starts a new entry with the configured compression. The
	// returned writer is valid until the next Create, Store or Close.
	Create(path string) (io.Writer, error)

	// Store writes a complete entry without compression.
	Store(path string, data []byte) error

	// Close finishes the container. Writing is incomplete until Close
	// returns nil.
	Close() error
}

// Open opens the container at path, choosing the type from the file
// system: directories are TypeDir, regular files TypeZip.
func Open(path string) (Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("vdm: opening container: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return OpenZip(path)
}

// Create creates a new container of the given type at path. An
// existing file at path is truncated; an existing directory is reused.
func Create(path string, containerType Type, options WriterOptions) (Writer, error) {
	switch containerType {
	case TypeZip:
		return CreateZip(path, options)
	case TypeDir:
		return CreateDir(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, containerType)
	}
}

func checkPath(container, op, path string) error {
	if !fs.ValidPath(path) || path == "." {
		return &EntryError{Op: op, Container: container, Path: path, Err: ErrInvalidPath}
	}
	return nil
}
