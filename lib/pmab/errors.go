// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package pmab

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadFormat is returned when the mimetype entry is missing or
	// does not hold MIMEType.
	ErrBadFormat = errors.New("pmab: not a PMAB container")

	// ErrInterrupted is returned when the context is canceled during
	// an encode or decode. The context's error is wrapped alongside.
	ErrInterrupted = errors.New("pmab: interrupted")
)

// ParseError reports malformed input in one of the XML documents.
type ParseError struct {
	// Entry is the container entry being parsed.
	Entry string

	// Line is the 1-based line of the offending token, or 0.
	Line int

	// Tag is the element being processed, without brackets.
	Tag string

	// Attr names a missing or invalid XML attribute.
	Attr string

	// Text is the offending item text, when a value failed to parse.
	Text string

	// Reason describes the problem when Err does not.
	Reason string

	Err error
}

func (err *ParseError) Error() string {
	var message strings.Builder
	message.WriteString("pmab: ")
	message.WriteString(err.Entry)
	if err.Line > 0 {
		fmt.Fprintf(&message, ":%d", err.Line)
	}
	if err.Tag != "" {
		fmt.Fprintf(&message, ": <%s>", err.Tag)
	}
	switch {
	case err.Reason != "":
		message.WriteString(": ")
		message.WriteString(err.Reason)
	case err.Attr != "":
		fmt.Fprintf(&message, ": missing attribute %q", err.Attr)
	}
	if err.Text != "" {
		fmt.Fprintf(&message, ": text %q", err.Text)
	}
	if err.Err != nil {
		message.WriteString(": ")
		message.WriteString(err.Err.Error())
	}
	return message.String()
}

func (err *ParseError) Unwrap() error { return err.Err }

// UnsupportedVersionError reports a document version without a
// decoder.
type UnsupportedVersionError struct {
	Entry   string
	Line    int
	Version string

	// Legacy is set for versions that are known but whose decoding is
	// not implemented.
	Legacy bool
}

func (err *UnsupportedVersionError) Error() string {
	kind := "unsupported"
	if err.Legacy {
		kind = "legacy"
	}
	return fmt.Sprintf("pmab: %s:%d: %s version %q", err.Entry, err.Line, kind, err.Version)
}

// interrupted wraps a context error as ErrInterrupted.
func interrupted(cause error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, cause)
}
