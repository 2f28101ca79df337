/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: adapter.go
Description: Compressor adapter for langfilter. Wraps a codec and exposes only the
compressed lengths the distance oracle needs, reusing scratch buffers across calls
so that scoring a sample against many references does not allocate per call.
*/

package compression

import (
	"fmt"
	"sync"

	"github.com/kleascm/langfilter/pkg/interfaces"
)

// Adapter measures compressed lengths with a single codec.
// It is safe for concurrent use when the codec is.
type Adapter struct {
	codec interfaces.Codec

	outPool    sync.Pool // compressor output
	concatPool sync.Pool // joined operands
}

// NewAdapter wraps the given codec
func NewAdapter(codec interfaces.Codec) *Adapter {
	return &Adapter{
		codec:      codec,
		outPool:    sync.Pool{New: func() any { return new([]byte) }},
		concatPool: sync.Pool{New: func() any { return new([]byte) }},
	}
}

// NewDefaultAdapter returns an adapter around the default lz4 codec
func NewDefaultAdapter() *Adapter {
	codec, _ := newLZ4Codec(options{})
	return NewAdapter(codec)
}

// Codec returns the wrapped codec
func (a *Adapter) Codec() interfaces.Codec {
	return a.codec
}

// CompressedLength returns len(compress(b))
func (a *Adapter) CompressedLength(b []byte) (int, error) {
	buf := a.outPool.Get().(*[]byte)
	defer a.outPool.Put(buf)

	out, err := a.codec.Compress((*buf)[:0], b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", a.codec.Name(), err)
	}
	*buf = out[:0]
	return len(out), nil
}

// CompressedLengthOfConcat returns len(compress(a ++ b)).
// Returns ErrEmptyInput when both operands are empty.
func (a *Adapter) CompressedLengthOfConcat(first, second []byte) (int, error) {
	total := len(first) + len(second)
	if total == 0 {
		return 0, ErrEmptyInput
	}

	buf := a.concatPool.Get().(*[]byte)
	defer a.concatPool.Put(buf)

	joined := (*buf)[:0]
	if cap(joined) < total {
		joined = make([]byte, 0, total)
	}
	joined = append(joined, first...)
	joined = append(joined, second...)
	*buf = joined[:0]

	return a.CompressedLength(joined)
}
