// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package vdm

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of an entry's content.
type Hash [32]byte

// entryDomainKey keys the BLAKE3 hasher so entry digests never
// collide with plain BLAKE3 hashes of the same bytes.
var entryDomainKey = [32]byte{
	'j', 'e', 'm', '.', 'v', 'd', 'm', '.', 'e', 'n', 't', 'r', 'y',
}

// String returns the hex encoding of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Short returns the first 12 hex characters of h.
func (h Hash) Short() string { return h.String()[:12] }

// HashStream reads r to the end and returns its entry-domain digest
// and length.
func HashStream(r io.Reader) (Hash, int64, error) {
	hasher, err := blake3.NewKeyed(entryDomainKey[:])
	if err != nil {
		return Hash{}, 0, fmt.Errorf("vdm: creating hasher: %w", err)
	}
	size, err := io.Copy(hasher, r)
	if err != nil {
		return Hash{}, size, err
	}
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash, size, nil
}

// Digest hashes one entry of a container.
func Digest(reader Reader, entry string) (Hash, int64, error) {
	stream, err := reader.Open(entry)
	if err != nil {
		return Hash{}, 0, err
	}
	defer stream.Close()
	hash, size, err := HashStream(stream)
	if err != nil {
		return Hash{}, 0, &EntryError{Op: "read", Container: reader.Name(), Path: entry, Err: err}
	}
	return hash, size, nil
}
