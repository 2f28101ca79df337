/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: filter.go
Description: Filter command implementation. Streams stdin to stdout keeping the lines
accepted for the desired language and reports run statistics.
*/

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/kleascm/langfilter/pkg/interfaces"
	"github.com/kleascm/langfilter/pkg/stream"
	"github.com/kleascm/langfilter/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunFilter executes the filter command
func RunFilter(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return err
	}
	logger, err := SetupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	policy := filterPolicy()
	if err := policy.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	// lines are already decided in parallel, so each sample is scored sequentially
	engine, err := openEngine(ctx, logger, storeConfig{
		Sparsity:        viper.GetInt("filter.sparsity"),
		DesiredLanguage: policy.DesiredLanguage,
		AlsoInclude:     viper.GetString("filter.also_include"),
	}, 1)
	if err != nil {
		return err
	}
	defer engine.Store().Close()

	if _, ok := engine.Store().Resolve(policy.DesiredLanguage); !ok {
		return fmt.Errorf("desired language %q is not among the loaded references", policy.DesiredLanguage)
	}

	logger.Info("Filtering started", map[string]interface{}{
		"desired_lang":   policy.DesiredLanguage,
		"top_n":          policy.TopN,
		"min_confidence": policy.MinConfidence,
		"ratio_policy":   policy.UsesRatio(),
	})

	stats, err := stream.Filter(ctx, os.Stdin, os.Stdout,
		func(ctx context.Context, sample []byte) (bool, error) {
			return engine.Accept(ctx, sample, policy)
		},
		stream.Options{
			Workers:      viper.GetInt("workers"),
			BatchSize:    viper.GetInt("filter.batch_size"),
			MaxLineBytes: viper.GetInt("filter.max_line_bytes"),
			Logger:       logger.Entry(),
			OnDecision:   logger.LogDecision,
		})
	if stats != nil {
		stats.RunID = logger.RunID()
		stats.Command = "filter"
		logger.LogStats(stats)
		writeStats(logger.Entry(), viper.GetString("filter.stats_out"), stats)
	}
	return err
}

func filterPolicy() interfaces.Policy {
	policy := interfaces.Policy{
		DesiredLanguage: viper.GetString("filter.desired_lang"),
		TopN:            viper.GetInt("filter.top_n"),
		MinConfidence:   viper.GetFloat64("filter.min_confidence"),
	}
	if ratio := viper.GetFloat64("filter.confidence_ratio"); ratio > 0 {
		policy.ConfidenceRatio = &ratio
	}
	return policy
}

// writeStats saves stats under dir when a directory is configured
func writeStats(log logrus.FieldLogger, dir string, stats *interfaces.RunStats) {
	if dir == "" {
		return
	}
	path, _, err := utils.WriteRunReport(dir, Version, stats)
	if err != nil {
		log.Warnf("Failed to write run statistics: %v", err)
		return
	}
	log.Infof("Run statistics written to %s", path)
}
