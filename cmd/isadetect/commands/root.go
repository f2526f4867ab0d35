/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree of isadetect. Every flag is bound to viper so it can also be
set from a config file or an ISADETECT_* environment variable.
*/

package commands

import (
	"github.com/kleascm/isadetect/pkg/corpus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the isadetect command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "isadetect",
		Short: "isadetect - CPU architecture detection for raw binaries",
		Long: `isadetect guesses the instruction set of machine code in arbitrary files by
comparing byte bigram and trigram statistics against a corpus of reference
architectures. Files that do not match as a whole are scanned with shrinking
windows to locate the code sections.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Configuration
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path")
	flags.String("corpus", "cpu_rec_corpus", "Directory containing the *.corpus reference files")
	flags.Float64("smoothing", corpus.DefaultSmoothing, "Smoothing constant for reference models")
	flags.Int("workers", 0, "Parallel corpus loaders (0 = auto-detect)")
	flags.String("format", "table", "Output format (table, json, yaml)")

	// Logging
	flags.String("log-level", "warn", "Logging level (debug, info, warn, error)")
	flags.BoolP("verbose", "v", false, "Verbose output (info level)")
	flags.BoolP("debug", "d", false, "Debug output (debug level)")
	flags.String("log-format", "custom", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Directory for log files (empty = no log file)")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")

	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("corpus_dir", flags.Lookup("corpus"))
	viper.BindPFlag("smoothing", flags.Lookup("smoothing"))
	viper.BindPFlag("workers", flags.Lookup("workers"))
	viper.BindPFlag("format", flags.Lookup("format"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("debug", flags.Lookup("debug"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_dir", flags.Lookup("log-dir"))
	viper.BindPFlag("log_max_files", flags.Lookup("log-max-files"))

	// detect
	detectCmd := &cobra.Command{
		Use:   "detect <file>...",
		Short: "Detect the CPU architecture of one or more files",
		Long: `Classify every file against the reference corpus. A file that matches as a
whole is reported once; otherwise the ranges of each detected architecture
are listed, or "unknown" when nothing matched at any window size.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunDetect,
	}
	detectCmd.Flags().String("save-dir", "", "Also write a JSON report of the session to this directory")
	viper.BindPFlag("save_dir", detectCmd.Flags().Lookup("save-dir"))
	rootCmd.AddCommand(detectCmd)

	// corpus
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the reference corpus",
	}
	corpusCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the reference architectures",
		Args:  cobra.NoArgs,
		RunE:  ListArchitectures,
	})
	showCmd := &cobra.Command{
		Use:   "show <architecture>",
		Short: "Show the statistics of one reference architecture",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowArchitecture,
	}
	showCmd.Flags().Int("top", 10, "Number of most frequent bigrams and trigrams to show")
	corpusCmd.AddCommand(showCmd)
	rootCmd.AddCommand(corpusCmd)

	// check
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate that the corpus directory exists and loads, that it holds at least
one reportable architecture and that the log directory is writable.`,
		Args: cobra.NoArgs,
		RunE: PerformSelfCheck,
	})

	return rootCmd
}
