// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for snapshots.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatYAML, FormatCBOR:
		return Format(name), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q (want one of %v)", name, Formats)
	}
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2). Values
// implementing encoding.TextMarshaler are written as text strings.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

// Write encodes v (usually a *Snapshot) to w in format.
func Write(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	case FormatCBOR:
		return encMode.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}

// Read decodes one value written by Write.
func Read(r io.Reader, v any, format Format) error {
	switch format {
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)
	case FormatYAML:
		return yaml.NewDecoder(r).Decode(v)
	case FormatCBOR:
		return decMode.NewDecoder(r).Decode(v)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}
