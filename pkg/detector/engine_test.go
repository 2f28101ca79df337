/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the distance oracle, the normalizer and the decision engine,
including end-to-end identification over a small three-language corpus.
*/

package detector_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/kleascm/langfilter/pkg/detector"
	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const englishSample = "Everyone has the right to freedom of thought and to rest and leisure."

func newEngine(t *testing.T, workers int) *detector.Engine {
	t.Helper()
	engine, err := detector.NewEngine(loadStore(t, references), detector.Options{Workers: workers})
	require.NoError(t, err)
	return engine
}

func TestRankIdentifiesEnglish(t *testing.T) {
	for _, workers := range []int{1, 4} {
		engine := newEngine(t, workers)

		ranking, err := engine.Rank(context.Background(), []byte(englishSample), 3)
		require.NoError(t, err)
		require.Len(t, ranking, 3)
		assert.Equal(t, "english", ranking[0].LanguageID)
	}
}

func TestRankOrderingAndLimit(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	for n := 1; n <= 4; n++ {
		ranking, err := engine.Rank(ctx, []byte("Nadie estará sometido a esclavitud."), n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(ranking), n)
		for i := 1; i < len(ranking); i++ {
			assert.GreaterOrEqual(t, ranking[i-1].Confidence, ranking[i].Confidence)
		}
	}

	all, err := engine.Rank(ctx, []byte("Nadie estará sometido a esclavitud."), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "spanish", all[0].LanguageID)
}

func TestRankIsIdempotent(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	first, err := engine.Rank(ctx, []byte(englishSample), 3)
	require.NoError(t, err)
	second, err := engine.Rank(ctx, []byte(englishSample), 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSelfSimilarityDominates(t *testing.T) {
	engine := newEngine(t, 0)

	for name, text := range references {
		ranking, err := engine.Score(context.Background(), []byte(text))
		require.NoError(t, err)

		self := -1.0
		for _, c := range ranking {
			if c.LanguageID == name {
				self = c.RawRatio
			}
		}
		for _, c := range ranking {
			assert.LessOrEqual(t, self, c.RawRatio, "%s against %s", name, c.LanguageID)
		}
	}
}

func TestEmptySample(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	_, err := engine.Rank(ctx, nil, 3)
	assert.ErrorIs(t, err, detector.ErrEmptyInput)

	accepted, err := engine.Accept(ctx, []byte(""), interfaces.Policy{
		DesiredLanguage: "english",
		TopN:            3,
		MinConfidence:   0,
	})
	assert.ErrorIs(t, err, detector.ErrEmptyInput)
	assert.False(t, accepted)

	_, err = engine.Detect(ctx, []byte{}, 0)
	assert.ErrorIs(t, err, compression.ErrEmptyInput)
}

func TestNewEngineRequiresReferences(t *testing.T) {
	_, err := detector.NewEngine(nil, detector.Options{})
	assert.ErrorIs(t, err, detector.ErrNoReferenceFiles)
}

func TestAcceptThresholdPolicy(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	policy := interfaces.Policy{DesiredLanguage: "english", TopN: 1, MinConfidence: 0}
	accepted, err := engine.Accept(ctx, []byte(englishSample), policy)
	require.NoError(t, err)
	assert.True(t, accepted)

	policy.DesiredLanguage = "french"
	accepted, err = engine.Accept(ctx, []byte(englishSample), policy)
	require.NoError(t, err)
	assert.False(t, accepted)

	_, err = engine.Accept(ctx, []byte(englishSample), interfaces.Policy{TopN: 1})
	assert.ErrorIs(t, err, interfaces.ErrNoDesiredLanguage)
}

func TestAcceptResolvesPaths(t *testing.T) {
	engine := newEngine(t, 0)
	doc, ok := engine.Store().Document("english")
	require.True(t, ok)

	accepted, err := engine.Accept(context.Background(), []byte(englishSample), interfaces.Policy{
		DesiredLanguage: doc.Path,
		TopN:            1,
	})
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestAcceptThresholdMonotonicInMinConfidence(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	for _, sample := range []string{englishSample, "Nul ne sera tenu en esclavage.", "xyzzy 12345"} {
		previous := true
		for _, floor := range []float64{-10, -1, 0, 0.5, 1, 2, 5, 100} {
			accepted, err := engine.Accept(ctx, []byte(sample), interfaces.Policy{
				DesiredLanguage: "english",
				TopN:            3,
				MinConfidence:   floor,
			})
			require.NoError(t, err)
			if !previous {
				assert.False(t, accepted, "sample %q floor %v", sample, floor)
			}
			previous = accepted
		}
	}
}

func TestAcceptRatioPolicy(t *testing.T) {
	engine := newEngine(t, 0)
	ctx := context.Background()

	loose := 1.0
	accepted, err := engine.Accept(ctx, []byte(englishSample), interfaces.Policy{
		DesiredLanguage: "english",
		MinConfidence:   0,
		ConfidenceRatio: &loose,
	})
	require.NoError(t, err)
	assert.True(t, accepted)

	impossible := 1e9
	accepted, err = engine.Accept(ctx, []byte(englishSample), interfaces.Policy{
		DesiredLanguage: "english",
		MinConfidence:   0,
		ConfidenceRatio: &impossible,
	})
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestDetectJSON(t *testing.T) {
	engine := newEngine(t, 0)

	out, err := engine.Detect(context.Background(), []byte(englishSample), 0)
	require.NoError(t, err)

	var summaries []interfaces.Summary
	require.NoError(t, json.Unmarshal(out, &summaries))
	require.Len(t, summaries, 3)
	assert.Equal(t, "english", summaries[0].LanguageName)
	assert.Contains(t, string(out), `"language_name"`)
	assert.Contains(t, string(out), `"likelihood"`)

	out, err = engine.Detect(context.Background(), []byte(englishSample), 1)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "english", summaries[0].LanguageName)
}

func TestEngineOverBuilderStore(t *testing.T) {
	builder := corpus.NewBuilder(compression.NewDefaultAdapter())
	for name, text := range references {
		builder.AddString(name, text)
	}
	store, err := builder.Build(context.Background())
	require.NoError(t, err)

	engine, err := detector.NewEngine(store, detector.Options{})
	require.NoError(t, err)

	ranking, err := engine.Rank(context.Background(), []byte(englishSample), 1)
	require.NoError(t, err)
	assert.Equal(t, "english", ranking[0].LanguageID)
}

func TestEngineWithOtherCodecs(t *testing.T) {
	for _, name := range []string{compression.CodecZstd, compression.CodecS2} {
		t.Run(name, func(t *testing.T) {
			codec, err := compression.New(name)
			require.NoError(t, err)

			dir := writeReferences(t, references)
			store, err := corpus.Load(context.Background(), dir, compression.NewAdapter(codec), corpus.Options{Sparsity: 1})
			require.NoError(t, err)
			defer store.Close()

			engine, err := detector.NewEngine(store, detector.Options{})
			require.NoError(t, err)

			// self-similarity holds for any dictionary codec
			ranking, err := engine.Rank(context.Background(), []byte(references["french"]), 1)
			require.NoError(t, err)
			assert.Equal(t, "french", ranking[0].LanguageID)
		})
	}
}

func TestScoreHonoursCancellation(t *testing.T) {
	engine := newEngine(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Score(ctx, []byte(englishSample))
	assert.ErrorIs(t, err, context.Canceled)
}
