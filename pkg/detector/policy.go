/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: policy.go
Description: Accept/reject decisions over a single sample's ranking.
*/

package detector

import "github.com/kleascm/langfilter/pkg/interfaces"

// Decide applies policy to a ranking (best first).
//
// Ratio policy: the best candidate must be the desired language, beat the
// runner-up by more than ConfidenceRatio and exceed MinConfidence. Rankings with
// fewer than two candidates cannot show a margin and are rejected.
//
// Threshold policy: the desired language must be within the first TopN
// candidates with a confidence above MinConfidence.
func Decide(ranking []ScoredCandidate, policy interfaces.Policy) bool {
	if policy.UsesRatio() {
		if len(ranking) < 2 {
			return false
		}
		l1, l2 := ranking[0], ranking[1]
		return l1.LanguageID == policy.DesiredLanguage &&
			l1.Confidence/l2.Confidence > *policy.ConfidenceRatio &&
			l1.Confidence > policy.MinConfidence
	}

	for _, c := range Top(ranking, policy.TopN) {
		if c.LanguageID == policy.DesiredLanguage && c.Confidence > policy.MinConfidence {
			return true
		}
	}
	return false
}
