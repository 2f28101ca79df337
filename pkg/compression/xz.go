/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: xz.go
Description: XZ/LZMA2 codec. Slow but with the largest dictionary window, useful
for very large reference documents.
*/

package compression

import (
	"bytes"
	"fmt"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/ulikunitz/xz"
)

// xzMinDictCap is the smallest dictionary the LZMA2 encoder accepts
const xzMinDictCap = 1 << 12

type xzCodec struct {
	config xz.WriterConfig
}

func newXZCodec(o options) (interfaces.Codec, error) {
	config := xz.WriterConfig{DictCap: 1 << 22, NoCheckSum: true}
	switch o.level {
	case LevelFastest:
		config.DictCap = 1 << 20
	case LevelBest:
		config.DictCap = 1 << 26
	}
	if err := config.Verify(); err != nil {
		return nil, fmt.Errorf("invalid xz configuration: %w", err)
	}
	return &xzCodec{config: config}, nil
}

func (c *xzCodec) Name() string { return CodecXZ }

// Compress sizes the dictionary to the input; a larger window finds no extra matches.
func (c *xzCodec) Compress(dst, src []byte) ([]byte, error) {
	config := c.config
	config.DictCap = max(xzMinDictCap, min(config.DictCap, len(src)))

	buf := bytes.NewBuffer(dst[:0])
	w, err := config.NewWriter(buf)
	if err != nil {
		return nil, fmt.Errorf("xz writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("xz compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("xz close: %w", err)
	}
	return buf.Bytes(), nil
}
