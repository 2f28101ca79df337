/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Shared types for langfilter. Defines the codec contract, the accept/reject
policy, ranking summaries and run statistics used across the compression, detector,
stream and command packages without creating import cycles.
*/

package interfaces

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoDesiredLanguage is returned when a filtering policy has no target language
var ErrNoDesiredLanguage = errors.New("desired language not specified")

// Codec is a deterministic general-purpose byte compressor.
// Compress appends the compressed form of src to dst[:0] and returns it.
type Codec interface {
	Name() string
	Compress(dst, src []byte) ([]byte, error)
}

// Policy configures the accept/reject decision for one target language
type Policy struct {
	DesiredLanguage string
	TopN            int
	MinConfidence   float64

	// ConfidenceRatio selects the ratio policy when non-nil. The best candidate
	// must beat the second-best by more than this factor.
	ConfidenceRatio *float64
}

// Validate checks the policy for missing or invalid values
func (p Policy) Validate() error {
	if p.DesiredLanguage == "" {
		return ErrNoDesiredLanguage
	}
	if p.ConfidenceRatio == nil && p.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", p.TopN)
	}
	return nil
}

// UsesRatio reports whether the ambiguity-rejecting ratio policy is active
func (p Policy) UsesRatio() bool {
	return p.ConfidenceRatio != nil
}

// Summary is one ranked language as exposed to embedding hosts
type Summary struct {
	LanguageName string  `json:"language_name"`
	Likelihood   float64 `json:"likelihood"`
}

// RunStats holds the counters of one stream run
type RunStats struct {
	RunID     string        `json:"run_id"`
	Command   string        `json:"command"`
	Lines     int64         `json:"lines"`
	Accepted  int64         `json:"accepted"`
	Rejected  int64         `json:"rejected"`
	Errors    int64         `json:"errors"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// AcceptRate returns the fraction of lines that were accepted
func (s *RunStats) AcceptRate() float64 {
	if s.Lines == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Lines)
}
