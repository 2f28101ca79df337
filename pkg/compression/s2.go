/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: s2.go
Description: S2 (Snappy-compatible) block codec.
*/

package compression

import (
	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/klauspost/compress/s2"
)

type s2Codec struct {
	encode func(dst, src []byte) []byte
}

func newS2Codec(o options) (interfaces.Codec, error) {
	c := &s2Codec{encode: s2.Encode}
	switch o.level {
	case LevelBetter:
		c.encode = s2.EncodeBetter
	case LevelBest:
		c.encode = s2.EncodeBest
	}
	return c, nil
}

func (c *s2Codec) Name() string { return CodecS2 }

func (c *s2Codec) Compress(dst, src []byte) ([]byte, error) {
	if n := s2.MaxEncodedLen(len(src)); n > 0 && cap(dst) < n {
		dst = make([]byte, n)
	}
	return c.encode(dst[:cap(dst)], src), nil
}
