/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: detect.go
Description: Detect command implementation. Loads the reference corpus once, then scans
every file argument and renders one row per detection.
*/

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/kleascm/isadetect/pkg/classify"
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/reporting"
	"github.com/kleascm/isadetect/pkg/scan"
	"github.com/spf13/cobra"
)

// RunDetect classifies every file given on the command line
func RunDetect(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	config, err := LoadDetectConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := corpus.ValidateDir(config.CorpusDir); err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	out := cmd.OutOrStdout()
	if config.Format == reporting.FormatTable {
		fmt.Fprintf(out, "Loading corpus from %s\n", corpus.Pattern(config.CorpusDir))
	}

	c, err := loadCorpus(cmd.Context(), config, logger)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	classifier, err := classify.New(c.References(), classify.WithLogger(logger.GetLogger()))
	if err != nil {
		return err
	}
	scanner := scan.New(classifier, scan.WithLogger(logger.GetLogger()))

	report := reporting.NewReport(c.Dir(), c.Len(), config.Smoothing)
	for _, file := range args {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(file)
		if err != nil {
			logger.LogFileError(file, err)
			report.AddFailure(file, err)
			continue
		}

		start := time.Now()
		results := scanner.Scan(data, file)
		logger.LogScan(file, len(data), len(results), time.Since(start))
		if len(results) == 0 {
			results = []scan.DetectionResult{scan.UnknownResult(file)}
		}
		report.Results = append(report.Results, results...)
	}

	if err := reporting.Render(out, config.Format, report.Results); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	if config.SaveDir != "" {
		path, err := reporting.WriteResults(config.SaveDir, report)
		if err != nil {
			return err
		}
		logger.Info("Report saved", map[string]interface{}{
			"session": report.Session,
			"path":    path,
		})
	}

	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d of %d files could not be processed", n, len(args))
	}
	return nil
}
