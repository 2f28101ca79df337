/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stream_test.go
Description: Tests for line-framed filtering and ranking output.
*/

package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptPrefix(prefix string) AcceptFunc {
	return func(_ context.Context, sample []byte) (bool, error) {
		return bytes.HasPrefix(sample, []byte(prefix)), nil
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	var in strings.Builder
	var want strings.Builder
	for i := 0; i < 1000; i++ {
		line := fmt.Sprintf("skip %d", i)
		if i%3 == 0 {
			line = fmt.Sprintf("keep %d", i)
			want.WriteString(line + "\n")
		}
		in.WriteString(line + "\n")
	}

	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(in.String()), &out, acceptPrefix("keep"),
		Options{Workers: 8, BatchSize: 64})
	require.NoError(t, err)

	assert.Equal(t, want.String(), out.String())
	assert.Equal(t, int64(1000), stats.Lines)
	assert.Equal(t, int64(334), stats.Accepted)
	assert.Equal(t, int64(666), stats.Rejected)
	assert.Zero(t, stats.Errors)
}

func TestFilterLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader("keep a\nskip\nkeep b"), &out, acceptPrefix("keep"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "keep a\nkeep b\n", out.String())
	assert.Equal(t, int64(3), stats.Lines)
}

func TestFilterEmptyInput(t *testing.T) {
	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(""), &out, acceptPrefix("keep"), Options{})
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Zero(t, stats.Lines)
}

func TestFilterErrorsRejectLine(t *testing.T) {
	accept := func(_ context.Context, sample []byte) (bool, error) {
		if len(sample) == 0 {
			return false, errors.New("empty sample")
		}
		return true, nil
	}

	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader("one\n\ntwo\n"), &out, accept, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", out.String())
	assert.Equal(t, int64(2), stats.Accepted)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Errors)
}

func TestFilterSkipsOversizedLine(t *testing.T) {
	in := "keep1\n" + strings.Repeat("x", 200) + "\nkeep2\n"
	var decisions []error

	var out bytes.Buffer
	stats, err := Filter(context.Background(), strings.NewReader(in), &out, acceptPrefix(""), Options{
		MaxLineBytes: 64,
		OnDecision: func(_ int64, _ bool, err error) {
			decisions = append(decisions, err)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "keep1\nkeep2\n", out.String())
	assert.Equal(t, int64(3), stats.Lines)
	assert.Equal(t, int64(2), stats.Accepted)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Errors)
	require.Len(t, decisions, 3)
	assert.ErrorIs(t, decisions[1], ErrLineTooLong)
}

func TestFilterLineLimitBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exactly at limit", strings.Repeat("a", 8) + "\n", strings.Repeat("a", 8) + "\n"},
		{"one over limit", strings.Repeat("a", 9) + "\nb\n", "b\n"},
		{"oversized last line without newline", "b\n" + strings.Repeat("a", 40), "b\n"},
		{"crlf endings", "a\r\nb\r\n", "a\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Filter(context.Background(), strings.NewReader(tt.input), &out, acceptPrefix(""), Options{MaxLineBytes: 8})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFilterStatsOnWriteFailure(t *testing.T) {
	accept := func(_ context.Context, sample []byte) (bool, error) {
		if len(sample) == 0 {
			return false, errors.New("empty sample")
		}
		return true, nil
	}

	stats, err := Filter(context.Background(), strings.NewReader("\none\n"), failingWriter{}, accept, Options{})
	require.Error(t, err)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Positive(t, stats.Duration)
}

func TestFilterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := Filter(ctx, strings.NewReader("keep\n"), &out, acceptPrefix("keep"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestExplainFormat(t *testing.T) {
	rank := func(_ context.Context, sample []byte) ([]interfaces.Summary, error) {
		if string(sample) == "bad" {
			return nil, errors.New("cannot rank")
		}
		return []interfaces.Summary{
			{LanguageName: "en", Likelihood: 3.5},
			{LanguageName: "fr", Likelihood: 1.25},
		}, nil
	}

	var out bytes.Buffer
	stats, err := Explain(context.Background(), strings.NewReader("hello\nbad\n"), &out, rank, Options{})
	require.NoError(t, err)

	assert.Equal(t, "en = 3.5\nfr = 1.25\n\n! cannot rank\n\n", out.String())
	assert.Equal(t, int64(2), stats.Lines)
	assert.Equal(t, int64(1), stats.Errors)
}

func TestFilterReportsDecisionsInOrder(t *testing.T) {
	type decision struct {
		line     int64
		accepted bool
		failed   bool
	}
	var got []decision

	accept := func(_ context.Context, sample []byte) (bool, error) {
		if len(sample) == 0 {
			return false, errors.New("empty sample")
		}
		return bytes.HasPrefix(sample, []byte("keep")), nil
	}

	var out bytes.Buffer
	_, err := Filter(context.Background(), strings.NewReader("keep\nskip\n\nkeep\n"), &out, accept, Options{
		Workers:   4,
		BatchSize: 3,
		OnDecision: func(line int64, accepted bool, err error) {
			got = append(got, decision{line, accepted, err != nil})
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []decision{
		{1, true, false},
		{2, false, false},
		{3, false, true},
		{4, true, false},
	}, got)
}

func TestExplainSkipsOversizedLine(t *testing.T) {
	rank := func(_ context.Context, sample []byte) ([]interfaces.Summary, error) {
		return []interfaces.Summary{{LanguageName: string(sample), Likelihood: 1}}, nil
	}

	var out bytes.Buffer
	in := strings.Repeat("z", 100) + "\nen\n"
	stats, err := Explain(context.Background(), strings.NewReader(in), &out, rank, Options{MaxLineBytes: 16})
	require.NoError(t, err)

	assert.Equal(t, "! "+ErrLineTooLong.Error()+"\n\nen = 1\n\n", out.String())
	assert.Equal(t, int64(2), stats.Lines)
	assert.Equal(t, int64(1), stats.Errors)
	assert.False(t, stats.StartedAt.IsZero())
	assert.Positive(t, stats.Duration)
}
