/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: adapter_test.go
Description: Tests for the codec registry and the compressor adapter. Covers
determinism, concatenation, empty operands and concurrent use for every codec.
*/

package compression_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var english = []byte(strings.Repeat("All human beings are born free and equal in dignity and rights. ", 8))

func TestNewCodec(t *testing.T) {
	for _, name := range compression.Names() {
		t.Run(name, func(t *testing.T) {
			codec, err := compression.New(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())
		})
	}

	codec, err := compression.New("")
	require.NoError(t, err)
	assert.Equal(t, compression.DefaultCodec, codec.Name())

	_, err = compression.New("brotli")
	assert.ErrorIs(t, err, compression.ErrUnknownCodec)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    compression.Level
		wantErr bool
	}{
		{"", compression.LevelDefault, false},
		{"default", compression.LevelDefault, false},
		{"FAST", compression.LevelFastest, false},
		{"better", compression.LevelBetter, false},
		{" best ", compression.LevelBest, false},
		{"ultra", compression.LevelDefault, true},
	}

	for _, tt := range tests {
		got, err := compression.ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCompressedLengthDeterministic(t *testing.T) {
	for _, name := range compression.Names() {
		for _, level := range []compression.Level{compression.LevelDefault, compression.LevelBest} {
			t.Run(name+"/"+level.String(), func(t *testing.T) {
				codec, err := compression.New(name, compression.WithLevel(level))
				require.NoError(t, err)
				adapter := compression.NewAdapter(codec)

				first, err := adapter.CompressedLength(english)
				require.NoError(t, err)
				second, err := adapter.CompressedLength(english)
				require.NoError(t, err)

				assert.Equal(t, first, second)
				assert.Greater(t, first, 0)
				assert.Less(t, first, len(english), "repetitive text should shrink")
			})
		}
	}
}

func TestCompressedLengthOfConcat(t *testing.T) {
	for _, name := range compression.Names() {
		t.Run(name, func(t *testing.T) {
			codec, err := compression.New(name)
			require.NoError(t, err)
			adapter := compression.NewAdapter(codec)

			sample := []byte("free and equal in dignity")
			together, err := adapter.CompressedLengthOfConcat(english, sample)
			require.NoError(t, err)

			joined := append(append([]byte{}, english...), sample...)
			direct, err := adapter.CompressedLength(joined)
			require.NoError(t, err)
			assert.Equal(t, direct, together)

			// operands are not modified
			assert.True(t, bytes.HasPrefix(english, []byte("All human beings")))
		})
	}
}

func TestCompressedLengthOfConcatEmpty(t *testing.T) {
	adapter := compression.NewDefaultAdapter()

	_, err := adapter.CompressedLengthOfConcat(nil, []byte{})
	assert.ErrorIs(t, err, compression.ErrEmptyInput)

	n, err := adapter.CompressedLengthOfConcat(nil, []byte("x"))
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	n, err = adapter.CompressedLength(nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 4, "lz4 framing carries a size prefix")
}

func TestLZ4SizePrefix(t *testing.T) {
	codec, err := compression.New(compression.CodecLZ4)
	require.NoError(t, err)

	out, err := codec.Compress(nil, english)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 4)

	size := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	assert.Equal(t, uint32(len(english)), size)
}

func TestAdapterConcurrentUse(t *testing.T) {
	adapter := compression.NewDefaultAdapter()
	want, err := adapter.CompressedLengthOfConcat(english, []byte("sample"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = adapter.CompressedLengthOfConcat(english, []byte("sample"))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestXZDictionaryFollowsInput(t *testing.T) {
	// short inputs get the minimum dictionary whatever the level's cap
	var outputs [][]byte
	for _, level := range []compression.Level{compression.LevelFastest, compression.LevelDefault, compression.LevelBest} {
		codec, err := compression.New(compression.CodecXZ, compression.WithLevel(level))
		require.NoError(t, err)
		out, err := codec.Compress(nil, english)
		require.NoError(t, err)
		outputs = append(outputs, out)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])

	codec, err := compression.New(compression.CodecXZ)
	require.NoError(t, err)
	empty, err := codec.Compress(nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}
