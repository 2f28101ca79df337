/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: codec.go
Description: Codec registry for langfilter. Maps codec names to deterministic byte
compressors (lz4, zstd, s2, xz) behind the shared Codec interface and parses
compression levels from configuration strings.
*/

package compression

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kleascm/langfilter/pkg/interfaces"
)

var (
	// ErrEmptyInput is returned when both operands of a ratio computation are empty
	ErrEmptyInput = errors.New("empty input")
	// ErrUnknownCodec is returned for codec names not present in the registry
	ErrUnknownCodec = errors.New("unknown codec")
)

// Codec names
const (
	CodecLZ4  = "lz4"
	CodecZstd = "zstd"
	CodecS2   = "s2"
	CodecXZ   = "xz"
)

// DefaultCodec is the codec used when none is configured
const DefaultCodec = CodecLZ4

// Level selects the speed/ratio trade-off of a codec
type Level int

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBetter
	LevelBest
)

// String returns the configuration name of the level
func (l Level) String() string {
	switch l {
	case LevelFastest:
		return "fastest"
	case LevelBetter:
		return "better"
	case LevelBest:
		return "best"
	default:
		return "default"
	}
}

// ParseLevel parses a level name as used in flags and config files
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return LevelDefault, nil
	case "fastest", "fast":
		return LevelFastest, nil
	case "better":
		return LevelBetter, nil
	case "best":
		return LevelBest, nil
	default:
		return LevelDefault, fmt.Errorf("unsupported compression level: %s", s)
	}
}

type options struct {
	level Level
}

// Option configures a codec
type Option func(*options)

// WithLevel sets the compression level
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = level
	}
}

type constructor func(o options) (interfaces.Codec, error)

var registry = map[string]constructor{
	CodecLZ4:  newLZ4Codec,
	CodecZstd: newZstdCodec,
	CodecS2:   newS2Codec,
	CodecXZ:   newXZCodec,
}

// New creates the named codec
func New(name string, opts ...Option) (interfaces.Codec, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultCodec
	}
	ctor, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
	}
	return ctor(o)
}

// Names lists the registered codec names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
