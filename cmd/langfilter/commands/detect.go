/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: detect.go
Description: Detect command implementation. Ranks all of stdin as a single sample
and prints the ranking as JSON.
*/

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kleascm/langfilter/pkg/detector"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunDetect executes the detect command
func RunDetect(cmd *cobra.Command, args []string) error {
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
		Sparsity: viper.GetInt("detect.sparsity"),
	}, viper.GetInt("workers"))
	if err != nil {
		return err
	}
	defer engine.Store().Close()

	return detect(ctx, engine, os.Stdin, os.Stdout, viper.GetInt("detect.top_n"))
}

// detect reads one sample from r and writes its indented JSON ranking to w
func detect(ctx context.Context, engine *detector.Engine, r io.Reader, w io.Writer, topN int) error {
	sample, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read sample: %w", err)
	}

	data, err := engine.Detect(ctx, sample, topN)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format ranking: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}
