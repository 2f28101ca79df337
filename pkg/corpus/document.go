/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: document.go
Description: Reference documents for langfilter. A document is an immutable byte
buffer tagged with its language identifier, its standalone compressed length and a
BLAKE3 digest, all computed once when the document is created.
*/

package corpus

import (
	"encoding/hex"
	"fmt"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/zeebo/blake3"
)

// ReferenceDocument is one reference text for one candidate language
type ReferenceDocument struct {
	ID               string   // Language identifier, unique within a store
	Path             string   // Source path, empty for in-memory documents
	CompressedLength int      // len(compress(bytes)), fixed at construction
	Digest           [32]byte // BLAKE3 of bytes

	data    []byte
	release func() error
}

// newDocument measures data and takes ownership of it (and of release, if any)
func newDocument(id, path string, data []byte, release func() error, adapter *compression.Adapter) (*ReferenceDocument, error) {
	n, err := adapter.CompressedLength(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress %s: %w", id, err)
	}
	return &ReferenceDocument{
		ID:               id,
		Path:             path,
		CompressedLength: n,
		Digest:           blake3.Sum256(data),
		data:             data,
		release:          release,
	}, nil
}

// Bytes returns the document contents. Callers must not modify the slice
// and must not retain it past the owning store's Close.
func (d *ReferenceDocument) Bytes() []byte {
	return d.data
}

// Size returns the uncompressed length in bytes
func (d *ReferenceDocument) Size() int {
	return len(d.data)
}

// CompressionRatio returns compressed/uncompressed size
func (d *ReferenceDocument) CompressionRatio() float64 {
	if len(d.data) == 0 {
		return 0
	}
	return float64(d.CompressedLength) / float64(len(d.data))
}

// ShortDigest returns the first 12 hex characters of the digest
func (d *ReferenceDocument) ShortDigest() string {
	return hex.EncodeToString(d.Digest[:6])
}

func (d *ReferenceDocument) close() error {
	if d.release == nil {
		return nil
	}
	err := d.release()
	d.release = nil
	d.data = nil
	return err
}
