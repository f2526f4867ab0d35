/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Corpus inspection commands: list the reference architectures and show the
n-gram statistics of one of them.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/isadetect/pkg/classify"
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/kleascm/isadetect/pkg/reporting"
	"github.com/spf13/cobra"
)

const maxSuggestions = 3

// openCorpus runs the shared setup of the corpus commands
func openCorpus(cmd *cobra.Command) (*corpus.Corpus, *DetectConfig, error) {
	if err := LoadConfig(); err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	defer logger.Close()

	config, err := LoadDetectConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c, err := loadCorpus(cmd.Context(), config, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return c, config, nil
}

// ListArchitectures prints one line per reference architecture
func ListArchitectures(cmd *cobra.Command, args []string) error {
	c, config, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	return reporting.RenderStats(cmd.OutOrStdout(), config.Format, c.Stats(classify.DefaultPolicy()))
}

// ShowArchitecture prints the statistics and top n-grams of one architecture
func ShowArchitecture(cmd *cobra.Command, args []string) error {
	c, config, err := openCorpus(cmd)
	if err != nil {
		return err
	}

	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	if top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", top)
	}

	arch := args[0]
	ref, ok := c.Lookup(arch)
	if !ok {
		return fmt.Errorf("unknown architecture %q (did you mean: %s?)",
			arch, strings.Join(c.Suggest(arch, maxSuggestions), ", "))
	}

	detail := reporting.ArchDetail{
		TopBigrams:  reporting.NGramRows(ref.TopBigrams(top)),
		TopTrigrams: reporting.NGramRows(ref.TopTrigrams(top)),
	}
	for _, s := range c.Stats(classify.DefaultPolicy()) {
		if s.Architecture == arch {
			detail.ArchStats = s
			break
		}
	}
	return reporting.RenderArch(cmd.OutOrStdout(), config.Format, detail)
}
