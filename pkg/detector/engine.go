/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Decision engine for langfilter. Scores a sample against every reference
document of a store, ranks the candidates and answers the two host operations:
ranking for exploration and accept/reject for stream filtering.
*/

package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/kleascm/langfilter/pkg/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures an Engine
type Options struct {
	// Workers bounds per-sample scoring parallelism; 0 means GOMAXPROCS, 1 scores sequentially
	Workers int
	Logger  logrus.FieldLogger
}

// Engine ranks samples against a frozen reference store.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	store   *corpus.Store
	adapter *compression.Adapter
	workers int
	logger  logrus.FieldLogger
}

// NewEngine creates an engine over store
func NewEngine(store *corpus.Store, opts Options) (*Engine, error) {
	if store == nil || store.Len() == 0 {
		return nil, ErrNoReferenceFiles
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Engine{
		store:   store,
		adapter: store.Adapter(),
		workers: opts.Workers,
		logger:  opts.Logger,
	}, nil
}

// Store returns the reference store
func (e *Engine) Store() *corpus.Store {
	return e.store
}

// Score returns the full ranking of sample, best first
func (e *Engine) Score(ctx context.Context, sample []byte) ([]ScoredCandidate, error) {
	if len(sample) == 0 {
		return nil, ErrEmptyInput
	}

	sampleCompressed, err := e.adapter.CompressedLength(sample)
	if err != nil {
		return nil, err
	}

	docs := e.store.Documents()
	ratios := make([]float64, len(docs))

	if e.workers == 1 || len(docs) == 1 {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if ratios[i], err = RawRatio(e.adapter, sample, sampleCompressed, doc); err != nil {
				return nil, fmt.Errorf("scoring against %s: %w", doc.ID, err)
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(e.workers, len(docs)))
		for i, doc := range docs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				ratio, err := RawRatio(e.adapter, sample, sampleCompressed, doc)
				if err != nil {
					return fmt.Errorf("scoring against %s: %w", doc.ID, err)
				}
				ratios[i] = ratio
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	ranking := Normalize(docs, e.store.MeanCompressedLength(), ratios)
	e.logger.WithFields(logrus.Fields{
		"language":   ranking[0].LanguageID,
		"confidence": ranking[0].Confidence,
		"raw_ratio":  ranking[0].RawRatio,
		"candidates": len(ranking),
	}).Debug("Sample ranked")
	return ranking, nil
}

// Rank returns the first topN candidates; topN <= 0 returns all
func (e *Engine) Rank(ctx context.Context, sample []byte, topN int) ([]ScoredCandidate, error) {
	ranking, err := e.Score(ctx, sample)
	if err != nil {
		return nil, err
	}
	return Top(ranking, topN), nil
}

// Accept reports whether sample passes policy.
// The desired language may be given as an identifier or as a reference path.
func (e *Engine) Accept(ctx context.Context, sample []byte, policy interfaces.Policy) (bool, error) {
	if err := policy.Validate(); err != nil {
		return false, err
	}
	if id, ok := e.store.Resolve(policy.DesiredLanguage); ok {
		policy.DesiredLanguage = id
	}

	ranking, err := e.Score(ctx, sample)
	if err != nil {
		return false, err
	}
	return Decide(ranking, policy), nil
}

// Detect returns the first topN candidates as JSON: [{"language_name":..,"likelihood":..}].
// topN <= 0 returns the full ranking.
func (e *Engine) Detect(ctx context.Context, sample []byte, topN int) ([]byte, error) {
	ranking, err := e.Rank(ctx, sample, topN)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Summaries(ranking))
}
