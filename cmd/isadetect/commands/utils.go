/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the isadetect commands. Provides configuration loading,
logging setup and corpus loading used across all command implementations.
*/

package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/logging"
	"github.com/kleascm/isadetect/pkg/reporting"
	"github.com/spf13/viper"
)

// DetectConfig holds the validated options of a detection run
type DetectConfig struct {
	CorpusDir string
	Smoothing float64
	Workers   int
	Format    reporting.Format
	SaveDir   string
}

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("ISADETECT")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system. -d wins over -v, which wins over --log-level.
func SetupLogging(console io.Writer) (*logging.Logger, error) {
	level := strings.ToLower(viper.GetString("log_level"))
	switch {
	case viper.GetBool("debug"):
		level = string(logging.LogLevelDebug)
	case viper.GetBool("verbose"):
		level = string(logging.LogLevelInfo)
	}

	config := logging.DefaultConfig()
	config.Level = logging.LogLevel(level)
	config.Format = logging.LogFormat(strings.ToLower(viper.GetString("log_format")))
	config.OutputDir = viper.GetString("log_dir")
	config.MaxFiles = viper.GetInt("log_max_files")
	config.Console = console

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// LoadDetectConfig reads and validates the detection options
func LoadDetectConfig() (*DetectConfig, error) {
	format, err := reporting.ParseFormat(viper.GetString("format"))
	if err != nil {
		return nil, err
	}

	config := &DetectConfig{
		CorpusDir: viper.GetString("corpus_dir"),
		Smoothing: viper.GetFloat64("smoothing"),
		Workers:   viper.GetInt("workers"),
		Format:    format,
		SaveDir:   viper.GetString("save_dir"),
	}

	if config.CorpusDir == "" {
		return nil, fmt.Errorf("corpus directory not configured")
	}
	if !(config.Smoothing > 0) || math.IsInf(config.Smoothing, 1) {
		return nil, fmt.Errorf("smoothing must be a positive number, got %v", config.Smoothing)
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", config.Workers)
	}
	return config, nil
}

// loadCorpus loads the configured corpus and logs how long it took
func loadCorpus(ctx context.Context, config *DetectConfig, logger *logging.Logger) (*corpus.Corpus, error) {
	logger.Debug("Loading corpus", map[string]interface{}{
		"corpus_dir": config.CorpusDir,
		"smoothing":  config.Smoothing,
		"workers":    config.Workers,
	})

	start := time.Now()
	c, err := corpus.Load(ctx, config.CorpusDir, corpus.Options{
		Smoothing: config.Smoothing,
		Workers:   config.Workers,
		Logger:    logger.GetLogger(),
	})
	if err != nil {
		return nil, err
	}
	logger.LogCorpusLoaded(c.Dir(), c.Len(), time.Since(start))
	return c, nil
}
