/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for langfilter. Filters line-framed text to a single
language by compression distance against a directory of reference documents, and offers
ranking, detection and corpus inspection commands.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/langfilter/cmd/langfilter/commands"
	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/stream"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "langfilter",
		Short: "langfilter - language filtering by compression distance",
		Long: `langfilter identifies the language of text samples by measuring how well each
sample compresses together with a reference document per language. It keeps the
lines of a stream that belong to one desired language and can explain its rankings.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path (yaml, toml, json)")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "custom", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Also write logs to a timestamped file in this directory")
	flags.String("references", "./references", "Directory containing one reference document per language")
	flags.String("codec", compression.DefaultCodec, fmt.Sprintf("Compression codec %v", compression.Names()))
	flags.String("codec-level", "default", "Codec level (fastest, default, better, best)")
	flags.Int("workers", 0, "Number of parallel workers (0 = auto-detect)")
	flags.Bool("extract-html", true, "Reduce .html references to their visible text")

	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_dir", flags.Lookup("log-dir"))
	viper.BindPFlag("references", flags.Lookup("references"))
	viper.BindPFlag("codec", flags.Lookup("codec"))
	viper.BindPFlag("codec_level", flags.Lookup("codec-level"))
	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("extract_html", flags.Lookup("extract-html"))

	// Add filter command
	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep the stdin lines written in the desired language",
		Long: `Read samples from stdin, one per line, and copy to stdout the lines whose
language is the desired one. By default a line is kept when the desired language is
among the top-n candidates with enough confidence; --confidence-ratio instead requires
the desired language to be the clear winner.`,
		RunE: commands.RunFilter,
	}

	filterCmd.Flags().String("desired-lang", "", "Reference identifier or path of the language to keep")
	filterCmd.Flags().String("also-include", "", "Comma-separated references loaded regardless of sparsity")
	filterCmd.Flags().Int("top-n", 5, "Desired language must rank within the first top-n candidates")
	filterCmd.Flags().Int("sparsity", 30, "Load every n-th reference file")
	filterCmd.Flags().Float64("min-confidence", 2.0, "Minimum confidence for the desired language")
	filterCmd.Flags().Float64("confidence-ratio", 0, "Use the ratio policy with this factor (0 = threshold policy)")
	filterCmd.Flags().Int("max-line-bytes", stream.DefaultMaxLineBytes, "Longest accepted input line")
	filterCmd.Flags().Int("batch-size", stream.DefaultBatchSize, "Lines decided per parallel batch")
	filterCmd.Flags().String("stats-out", "", "Write run statistics as JSON under this directory")

	viper.BindPFlag("filter.desired_lang", filterCmd.Flags().Lookup("desired-lang"))
	viper.BindPFlag("filter.also_include", filterCmd.Flags().Lookup("also-include"))
	viper.BindPFlag("filter.top_n", filterCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("filter.sparsity", filterCmd.Flags().Lookup("sparsity"))
	viper.BindPFlag("filter.min_confidence", filterCmd.Flags().Lookup("min-confidence"))
	viper.BindPFlag("filter.confidence_ratio", filterCmd.Flags().Lookup("confidence-ratio"))
	viper.BindPFlag("filter.max_line_bytes", filterCmd.Flags().Lookup("max-line-bytes"))
	viper.BindPFlag("filter.batch_size", filterCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("filter.stats_out", filterCmd.Flags().Lookup("stats-out"))

	// Add explain command
	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the best-ranked languages of every stdin line",
		Long: `Interactive mode. Every line read from stdin is answered with its top-n
candidate languages as "language = confidence", followed by a blank line.`,
		RunE: commands.RunExplain,
	}

	explainCmd.Flags().String("also-include", "", "Comma-separated references loaded regardless of sparsity")
	explainCmd.Flags().Int("top-n", 5, "Number of candidates printed per line")
	explainCmd.Flags().Int("sparsity", 1, "Load every n-th reference file")
	explainCmd.Flags().Int("max-line-bytes", stream.DefaultMaxLineBytes, "Longest accepted input line")

	viper.BindPFlag("explain.also_include", explainCmd.Flags().Lookup("also-include"))
	viper.BindPFlag("explain.top_n", explainCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("explain.sparsity", explainCmd.Flags().Lookup("sparsity"))
	viper.BindPFlag("explain.max_line_bytes", explainCmd.Flags().Lookup("max-line-bytes"))

	// Add detect command
	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Rank all of stdin as one sample and print JSON",
		Long: `Read stdin to the end as a single sample and print the full ranking as
[{"language_name": ..., "likelihood": ...}], best first.`,
		RunE: commands.RunDetect,
	}

	detectCmd.Flags().Int("sparsity", 1, "Load every n-th reference file")
	detectCmd.Flags().Int("top-n", 0, "Number of candidates printed (0 = all)")

	viper.BindPFlag("detect.sparsity", detectCmd.Flags().Lookup("sparsity"))
	viper.BindPFlag("detect.top_n", detectCmd.Flags().Lookup("top-n"))

	// Add check command
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load the reference corpus and report on it",
		Long: `Load the reference directory and print each document's size and compressed
length, references with identical contents, files that failed to load and the corpus
fingerprint. Useful for validating a reference set in CI.`,
		RunE: commands.RunCheck,
	}

	checkCmd.Flags().Int("sparsity", 1, "Load every n-th reference file")
	viper.BindPFlag("check.sparsity", checkCmd.Flags().Lookup("sparsity"))

	rootCmd.AddCommand(filterCmd, explainCmd, detectCmd, checkCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
