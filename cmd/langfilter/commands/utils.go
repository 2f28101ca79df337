/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the langfilter commands. Provides configuration
loading, logging setup, and the reference store and engine construction used by
every command.
*/

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/langfilter/pkg/compression"
	"github.com/kleascm/langfilter/pkg/corpus"
	"github.com/kleascm/langfilter/pkg/detector"
	"github.com/kleascm/langfilter/pkg/logging"
	"github.com/spf13/viper"
)

// Version is reported by --version and stamped on written statistics
const Version = "1.0.0"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// LANGFILTER_FILTER_DESIRED_LANG maps to filter.desired_lang
	viper.SetEnvPrefix("LANGFILTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system. Logs go to stderr; stdout carries data.
func SetupLogging() (*logging.Logger, error) {
	config := logging.DefaultConfig()
	if level := viper.GetString("log_level"); level != "" {
		config.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		config.Format = logging.LogFormat(format)
	}
	config.OutputDir = viper.GetString("log_dir")

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// newAdapter builds the compressor adapter selected by the codec keys
func newAdapter() (*compression.Adapter, error) {
	level, err := compression.ParseLevel(viper.GetString("codec_level"))
	if err != nil {
		return nil, err
	}
	codec, err := compression.New(viper.GetString("codec"), compression.WithLevel(level))
	if err != nil {
		return nil, err
	}
	return compression.NewAdapter(codec), nil
}

// storeConfig selects which references a command loads
type storeConfig struct {
	Sparsity        int
	DesiredLanguage string
	AlsoInclude     string
}

// openStore loads the reference directory
func openStore(ctx context.Context, logger *logging.Logger, sc storeConfig) (*corpus.Store, error) {
	adapter, err := newAdapter()
	if err != nil {
		return nil, err
	}

	store, err := corpus.Load(ctx, viper.GetString("references"), adapter, corpus.Options{
		Sparsity:        sc.Sparsity,
		DesiredLanguage: sc.DesiredLanguage,
		AlsoInclude:     sc.AlsoInclude,
		Workers:         viper.GetInt("workers"),
		ExtractHTML:     viper.GetBool("extract_html"),
		Logger:          logger.Entry(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	return store, nil
}

// openEngine loads the reference directory and wraps it in an engine
func openEngine(ctx context.Context, logger *logging.Logger, sc storeConfig, workers int) (*detector.Engine, error) {
	store, err := openStore(ctx, logger, sc)
	if err != nil {
		return nil, err
	}

	engine, err := detector.NewEngine(store, detector.Options{
		Workers: workers,
		Logger:  logger.Entry(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return engine, nil
}
