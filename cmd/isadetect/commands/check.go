/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Built-in self-check. Validates the corpus directory, the reference models and
the log directory before a detection run. Useful for CI/CD integration.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleascm/isadetect/pkg/classify"
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PerformSelfCheck performs the system validation
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 isadetect - System Self-Check")
	fmt.Fprintln(out, "================================")
	fmt.Fprintln(out)

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := SetupLogging(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	var (
		config *DetectConfig
		loaded *corpus.Corpus
	)

	checks := []struct {
		name     string
		function func() error
	}{
		{"Configuration Validation", func() error {
			config, err = LoadDetectConfig()
			return err
		}},
		{"Corpus Directory", func() error {
			if config == nil {
				return fmt.Errorf("configuration is invalid")
			}
			return checkCorpusDirectory(config.CorpusDir)
		}},
		{"Reference Models", func() error {
			if config == nil {
				return fmt.Errorf("configuration is invalid")
			}
			loaded, err = loadCorpus(cmd.Context(), config, logger)
			return err
		}},
		{"Reportable Architectures", func() error {
			if loaded == nil {
				return fmt.Errorf("no corpus loaded")
			}
			return checkReportable(loaded)
		}},
		{"Log Directory Permissions", func() error {
			return checkLogDirectory(viper.GetString("log_dir"))
		}},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Fprintf(out, "🔍 %s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Fprintf(out, "❌ FAILED: %v\n", err)
			logger.Warning("Self-check failed", map[string]interface{}{
				"check": check.name,
				"error": err.Error(),
			})
		} else {
			fmt.Fprintln(out, "✅ PASSED")
			passed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Fprintln(out, "✨ All checks passed! Ready for detection.")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed. Please address the issues before running detect.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

// checkCorpusDirectory validates that dir holds corpus files
func checkCorpusDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("corpus directory not found: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	files, err := filepath.Glob(corpus.Pattern(dir))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", corpus.Extension, dir)
	}
	return nil
}

// checkReportable validates that at least one architecture can be reported
func checkReportable(c *corpus.Corpus) error {
	policy := classify.DefaultPolicy()
	for _, arch := range c.Architectures() {
		if !policy.IsSentinel(arch) {
			return nil
		}
	}
	return fmt.Errorf("all %d architectures are sentinels", c.Len())
}

// checkLogDirectory validates that log files can be written
func checkLogDirectory(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}

	testFile := filepath.Join(dir, ".isadetect_test_write")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("cannot write to log directory: %w", err)
	}
	os.Remove(testFile)
	return nil
}
