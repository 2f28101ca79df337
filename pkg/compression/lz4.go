/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: lz4.go
Description: LZ4 block codec. Output is a 4-byte little-endian uncompressed size
followed by a raw LZ4 block, the same framing as a size-prepended block compressor.
*/

package compression

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/pierrec/lz4/v4"
)

const lz4SizePrefix = 4

type blockCompressor interface {
	CompressBlock(src, dst []byte) (int, error)
}

// lz4Codec pools compressors since their hash tables are not safe for concurrent use
type lz4Codec struct {
	pool sync.Pool
}

func newLZ4Codec(o options) (interfaces.Codec, error) {
	c := &lz4Codec{}
	switch o.level {
	case LevelBetter:
		c.pool.New = func() any { return &lz4.CompressorHC{Level: lz4.Level5} }
	case LevelBest:
		c.pool.New = func() any { return &lz4.CompressorHC{Level: lz4.Level9} }
	default:
		c.pool.New = func() any { return &lz4.Compressor{} }
	}
	return c, nil
}

func (c *lz4Codec) Name() string { return CodecLZ4 }

func (c *lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	bound := lz4SizePrefix + lz4.CompressBlockBound(len(src))
	if cap(dst) < bound {
		dst = make([]byte, bound)
	}
	dst = dst[:bound]
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))

	comp := c.pool.Get().(blockCompressor)
	n, err := comp.CompressBlock(src, dst[lz4SizePrefix:])
	c.pool.Put(comp)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 && len(src) > 0 {
		// incompressible: stored as literals
		return append(dst[:lz4SizePrefix], src...), nil
	}
	return dst[:lz4SizePrefix+n], nil
}
