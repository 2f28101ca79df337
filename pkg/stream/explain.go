/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: explain.go
Description: Interactive ranking output. Prints the best-ranked languages of every
input line as "language = confidence" followed by a blank separator line.
*/

package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kleascm/langfilter/pkg/interfaces"
)

// RankFunc ranks one sample, best first
type RankFunc func(ctx context.Context, sample []byte) ([]interfaces.Summary, error)

// Explain writes the ranking of each line of r to w. Lines that cannot be ranked
// produce a "! error" line instead.
func Explain(ctx context.Context, r io.Reader, w io.Writer, rank RankFunc, opts Options) (*interfaces.RunStats, error) {
	opts = opts.withDefaults()
	stats := &interfaces.RunStats{StartedAt: time.Now()}
	defer func() { stats.Duration = time.Since(stats.StartedAt) }()

	lines := newLineReader(r, opts.MaxLineBytes)
	out := bufio.NewWriter(w)
	defer out.Flush()

	for {
		line, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return stats, fmt.Errorf("failed to read input at line %d: %w", stats.Lines+1, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		stats.Lines++

		var summaries []interfaces.Summary
		if err == nil {
			summaries, err = rank(ctx, line)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Errors++
			opts.Logger.WithError(err).WithField("line", stats.Lines).Debug("Sample rejected with error")
			fmt.Fprintf(out, "! %v\n\n", err)
			if err := out.Flush(); err != nil {
				return stats, fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}

		for _, s := range summaries {
			fmt.Fprintf(out, "%s = %v\n", s.LanguageName, s.Likelihood)
		}
		if _, err := out.WriteString("\n"); err != nil {
			return stats, fmt.Errorf("failed to write output: %w", err)
		}
		// interactive callers expect an answer per line
		if err := out.Flush(); err != nil {
			return stats, fmt.Errorf("failed to write output: %w", err)
		}
	}
	return stats, nil
}
