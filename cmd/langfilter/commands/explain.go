/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: explain.go
Description: Explain command implementation. Answers every stdin line with its
best-ranked languages.
*/

package commands

import (
	"context"
	"os"

	"github.com/kleascm/langfilter/pkg/detector"
	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/kleascm/langfilter/pkg/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunExplain executes the explain command
func RunExplain(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	engine, err := openEngine(ctx, logger, storeConfig{
		Sparsity:    viper.GetInt("explain.sparsity"),
		AlsoInclude: viper.GetString("explain.also_include"),
	}, viper.GetInt("workers"))
	if err != nil {
		return err
	}
	defer engine.Store().Close()

	topN := viper.GetInt("explain.top_n")
	candidates := engine.Store().Len()
	var line int64 // Explain ranks lines sequentially
	stats, err := stream.Explain(ctx, os.Stdin, os.Stdout,
		func(ctx context.Context, sample []byte) ([]interfaces.Summary, error) {
			line++
			ranking, err := engine.Rank(ctx, sample, topN)
			if err != nil {
				return nil, err
			}
			logger.LogRanking(line, ranking[0].LanguageID, ranking[0].Confidence, candidates)
			return detector.Summaries(ranking), nil
		},
		stream.Options{
			MaxLineBytes: viper.GetInt("explain.max_line_bytes"),
			Logger:       logger.Entry(),
		})
	if stats != nil {
		stats.RunID = logger.RunID()
		stats.Command = "explain"
		logger.LogStats(stats)
	}
	return err
}
