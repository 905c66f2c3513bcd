// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package vdm

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DirReader reads a directory container. Entries are the regular
// files below the root, in lexical order.
type DirReader struct {
	name    string
	root    *os.Root
	entries []string
}

// OpenDir opens the directory at dir as a container.
func OpenDir(dir string) (*DirReader, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("vdm: opening dir container: %w", err)
	}
	reader := &DirReader{name: dir, root: root}
	err = fs.WalkDir(root.FS(), ".", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			reader.entries = append(reader.entries, entry)
		}
		return nil
	})
	if err != nil {
		root.Close()
		return nil, fmt.Errorf("vdm: listing dir container %s: %w", dir, err)
	}
	return reader, nil
}

func (r *DirReader) Name() string { return r.name }

func (r *DirReader) Type() Type { return TypeDir }

func (r *DirReader) Entries() []string { return append([]string(nil), r.entries...) }

func (r *DirReader) Open(entry string) (io.ReadCloser, error) {
	if err := checkPath(r.name, "open", entry); err != nil {
		return nil, err
	}
	if r.root == nil {
		return nil, &EntryError{Op: "open", Container: r.name, Path: entry, Err: ErrClosed}
	}
	file, err := r.root.Open(filepath.FromSlash(entry))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrNotFound
		}
		return nil, &EntryError{Op: "open", Container: r.name, Path: entry, Err: err}
	}
	return file, nil
}

func (r *DirReader) Close() error {
	if r.root == nil {
		return nil
	}
	root := r.root
	r.root = nil
	return root.Close()
}

// DirWriter writes a directory container.
type DirWriter struct {
	name    string
	root    *os.Root
	current *os.File
	path    string
}

// CreateDir creates dir (and missing parents) and returns a writer
// over it. Existing files are overwritten when written again.
func CreateDir(dir string) (*DirWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vdm: creating dir container: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("vdm: creating dir container: %w", err)
	}
	return &DirWriter{name: dir, root: root}, nil
}

func (w *DirWriter) Name() string { return w.name }

func (w *DirWriter) Type() Type { return TypeDir }

func (w *DirWriter) Create(entry string) (io.Writer, error) {
	file, err := w.begin("create", entry)
	if err != nil {
		return nil, err
	}
	w.current = file
	w.path = entry
	return &entryWriter{writer: file, container: w.name, path: entry}, nil
}

func (w *DirWriter) Store(entry string, data []byte) error {
	file, err := w.begin("store", entry)
	if err != nil {
		return err
	}
	_, err = file.Write(data)
	err = errors.Join(err, file.Close())
	if err != nil {
		return &EntryError{Op: "store", Container: w.name, Path: entry, Err: err}
	}
	return nil
}

// begin closes the previous entry and opens a file for the next.
func (w *DirWriter) begin(op, entry string) (*os.File, error) {
	if w.root == nil {
		return nil, &EntryError{Op: op, Container: w.name, Path: entry, Err: ErrClosed}
	}
	if err := w.finishEntry(); err != nil {
		return nil, err
	}
	if err := checkPath(w.name, op, entry); err != nil {
		return nil, err
	}
	if parent := path.Dir(entry); parent != "." {
		if err := w.root.MkdirAll(filepath.FromSlash(parent), 0o755); err != nil {
			return nil, &EntryError{Op: op, Container: w.name, Path: entry, Err: err}
		}
	}
	file, err := w.root.Create(filepath.FromSlash(entry))
	if err != nil {
		return nil, &EntryError{Op: op, Container: w.name, Path: entry, Err: err}
	}
	return file, nil
}

func (w *DirWriter) finishEntry() error {
	if w.current == nil {
		return nil
	}
	file, entry := w.current, w.path
	w.current, w.path = nil, ""
	if err := file.Close(); err != nil {
		return &EntryError{Op: "close", Container: w.name, Path: entry, Err: err}
	}
	return nil
}

func (w *DirWriter) Close() error {
	if w.root == nil {
		return nil
	}
	err := w.finishEntry()
	root := w.root
	w.root = nil
	return errors.Join(err, root.Close())
}
