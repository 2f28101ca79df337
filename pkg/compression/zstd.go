/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: zstd.go
Description: Zstandard codec backed by a single shared klauspost encoder.
*/

package compression

import (
	"fmt"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct {
	enc *zstd.Encoder
}

func newZstdCodec(o options) (interfaces.Codec, error) {
	level := zstd.SpeedDefault
	switch o.level {
	case LevelFastest:
		level = zstd.SpeedFastest
	case LevelBetter:
		level = zstd.SpeedBetterCompression
	case LevelBest:
		level = zstd.SpeedBestCompression
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(level),
		zstd.WithZeroFrames(true),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &zstdCodec{enc: enc}, nil
}

func (c *zstdCodec) Name() string { return CodecZstd }

// Compress is safe for concurrent use; EncodeAll draws from the encoder's own pool
func (c *zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, dst[:0]), nil
}
