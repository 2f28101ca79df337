/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ranker.go
Description: Confidence normalizer and ranker. Converts raw compression ratios into
length-bias-corrected confidences and orders candidates by them.
*/

package detector

import (
	"sort"

	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/kleascm/langfilter/pkg/interfaces"
)

// ScoredCandidate is one reference language scored against one sample
type ScoredCandidate struct {
	LanguageID string
	RawRatio   float64
	Confidence float64 // relative only; higher is better
}

// Normalize turns the raw ratios of one sample into a ranking, best first.
// ratios[i] belongs to docs[i]; mean is the store's mean compressed length.
//
// confidence = (1 - ratio) / (1 - worst) * compressed_length / mean
//
// When the worst ratio is exactly 1 every confidence is 0. Equal confidences
// keep the order of docs.
func Normalize(docs []*corpus.ReferenceDocument, mean float64, ratios []float64) []ScoredCandidate {
	if len(docs) == 0 {
		return nil
	}

	worst := ratios[0]
	for _, r := range ratios[1:] {
		if r > worst {
			worst = r
		}
	}
	ceiling := 1 - worst

	candidates := make([]ScoredCandidate, len(docs))
	for i, doc := range docs {
		candidates[i] = ScoredCandidate{
			LanguageID: doc.ID,
			RawRatio:   ratios[i],
		}
		if ceiling == 0 {
			continue
		}

		adjusted := (1 - ratios[i]) / ceiling
		lengthRatio := 1.0
		if mean > 0 {
			lengthRatio = float64(doc.CompressedLength) / mean
		}
		candidates[i].Confidence = adjusted * lengthRatio
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// Top returns at most n leading candidates; n <= 0 returns all of them
func Top(ranking []ScoredCandidate, n int) []ScoredCandidate {
	if n <= 0 || n >= len(ranking) {
		return ranking
	}
	return ranking[:n]
}

// Summaries converts a ranking to the host-facing representation
func Summaries(ranking []ScoredCandidate) []interfaces.Summary {
	out := make([]interfaces.Summary, len(ranking))
	for i, c := range ranking {
		out[i] = interfaces.Summary{LanguageName: c.LanguageID, Likelihood: c.Confidence}
	}
	return out
}
