/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: filter.go
Description: Line-framed stream filtering for langfilter. Reads samples one per line,
decides them in parallel batches and writes the accepted lines in input order.
A sample that fails to score or exceeds the line limit is rejected and counted;
it never stops the stream.
*/

package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/kleascm/langfilter/pkg/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Defaults for Options
const (
	DefaultMaxLineBytes = 1 << 20
	DefaultBatchSize    = 256
)

// AcceptFunc decides one sample
type AcceptFunc func(ctx context.Context, sample []byte) (bool, error)

// Options configures a stream run
type Options struct {
	Workers      int // 0 means GOMAXPROCS
	BatchSize    int
	MaxLineBytes int
	Logger       logrus.FieldLogger

	// OnDecision, when set, is called once per line in input order
	OnDecision func(line int64, accepted bool, err error)
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// sample is one framed input line; err is set when the line could not be read whole
type sample struct {
	data []byte
	err  error
}

// Filter copies the lines of r accepted by accept to w
func Filter(ctx context.Context, r io.Reader, w io.Writer, accept AcceptFunc, opts Options) (*interfaces.RunStats, error) {
	opts = opts.withDefaults()
	stats := &interfaces.RunStats{StartedAt: time.Now()}
	var errCount atomic.Int64
	defer func() {
		stats.Errors = errCount.Load()
		stats.Duration = time.Since(stats.StartedAt)
	}()

	lines := newLineReader(r, opts.MaxLineBytes)
	out := bufio.NewWriter(w)

	batch := make([]sample, 0, opts.BatchSize)
	verdicts := make([]bool, opts.BatchSize)
	failures := make([]error, opts.BatchSize)

	flush := func() error {
		first := stats.Lines - int64(len(batch)) + 1

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, s := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				ok, err := false, s.err
				if err == nil {
					ok, err = accept(gctx, s.data)
				}
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					errCount.Add(1)
					opts.Logger.WithError(err).WithField("line", first+int64(i)).Debug("Sample rejected with error")
					ok = false
				}
				verdicts[i], failures[i] = ok, err
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, s := range batch {
			if opts.OnDecision != nil {
				opts.OnDecision(first+int64(i), verdicts[i], failures[i])
			}
			if !verdicts[i] {
				stats.Rejected++
				continue
			}
			stats.Accepted++
			out.Write(s.data)
			if err := out.WriteByte('\n'); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		batch = batch[:0]
		return out.Flush()
	}

	for {
		line, err := lines.next()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return stats, fmt.Errorf("failed to read input at line %d: %w", stats.Lines+1, err)
		}

		stats.Lines++
		// the reader reuses its buffer
		batch = append(batch, sample{data: append([]byte(nil), line...), err: err})
		if len(batch) == opts.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
