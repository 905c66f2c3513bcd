// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package vdm

import (
	"fmt"

	"github.com/klauspost/compress/flate"

	"github.com/phylame/jem/lib/clock"
)

// Compression selects how a zip writer compresses entries created
// with Create.
type Compression uint8

const (
	// CompressionDeflate is standard zip deflate, readable by every
	// zip tool.
	CompressionDeflate Compression = iota

	// CompressionStore writes entries uncompressed.
	CompressionStore

	// CompressionZstd writes zstd entries (zip method 93). Smaller and
	// faster than deflate, but not every zip tool reads it.
	CompressionZstd
)

// String returns the configuration name of the compression method.
func (c Compression) String() string {
	switch c {
	case CompressionDeflate:
		return "deflate"
	case CompressionStore:
		return "store"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression method name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "deflate", "":
		return CompressionDeflate, nil
	case "store", "none":
		return CompressionStore, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression method: %q", name)
	}
}

// WriterOptions configures a zip writer. The zero value writes
// deflate entries at the default level without timestamps.
type WriterOptions struct {
	Compression Compression

	// Level is the compression level. For deflate it ranges from -2
	// (Huffman only) to 9; for zstd it is a zstd level (1-22). Zero
	// selects the method's default. Ignored by store.
	Level int

	// Clock stamps entry modification times. Nil writes no
	// timestamps, which makes output byte-for-byte reproducible.
	Clock clock.Clock
}

// Validate checks the level against the compression method.
func (o WriterOptions) Validate() error {
	switch o.Compression {
	case CompressionDeflate:
		if o.Level < flate.HuffmanOnly || o.Level > flate.BestCompression {
			return fmt.Errorf("deflate level %d out of range [%d, %d]", o.Level, flate.HuffmanOnly, flate.BestCompression)
		}
	case CompressionZstd:
		if o.Level < 0 || o.Level > 22 {
			return fmt.Errorf("zstd level %d out of range [1, 22]", o.Level)
		}
	case CompressionStore:
	default:
		return fmt.Errorf("unsupported compression %s", o.Compression)
	}
	return nil
}
