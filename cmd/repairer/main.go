/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Akaylee Repairer. Provides
the repair, learn and check commands with comprehensive configuration
management and advanced logging capabilities.
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/akaylee-repairer/cmd/repairer/commands"
	"github.com/kleascm/akaylee-repairer/pkg/core"
)

var (
	// Configuration
	configFile string
	logLevel   string
	jsonLogs   bool

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
	logMaxSize  int64
	logCompress bool

	// Search configuration
	maxEdits     int
	maxCharEdits int
	timeoutMs    int
	oracleMax    int64
	alphabet     string
	allowAppend  bool

	// Delivery configuration
	inputMode    string
	serverBinary string

	// Observability configuration
	reportDir   string
	metricsFile string
	dryRun      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "akaylee-repairer",
		Short: "Akaylee Repairer - Oracle-guided string repair engine",
		Long: `Akaylee Repairer takes a string an external validator rejects and searches
for the closest accepted variant. It builds a covering grammar over the input
that encodes every single-character edit, enumerates bounded multi-edit
combinations, and submits generated candidates to the validator until one is
accepted. A sibling L* learner infers a DFA approximation of a validator's
language from labeled examples.`,
		Version:       "1.0.0",
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Int64Var(&logMaxSize, "log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress rotated log files")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_max_size", rootCmd.PersistentFlags().Lookup("log-max-size"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))

	// Add repair command
	repairCmd := &cobra.Command{
		Use:   "repair <validator_path_or_spec> <input_string_or_file> <output_file>",
		Short: "Repair a string until the validator accepts it",
		Long: `Repair searches for the closest variant of the input that the validator
accepts. The validator is an executable that exits 0 for accepted input,
1 for rejected, and 255 for truncated input; the spec form
re2-server:<Category> selects the persistent validator server instead.
If the input argument names a readable file its bytes are loaded, otherwise
it is taken literally. The repaired bytes are written to the output file.`,
		Args: cobra.ExactArgs(3),
		RunE: commands.RunRepair,
	}

	repairCmd.Flags().IntVar(&maxEdits, "max-edits", 5, "Maximum simultaneous edits per candidate (1-10)")
	repairCmd.Flags().IntVar(&maxCharEdits, "max-char-edits", 1, "Maximum character-consuming edits per candidate (0-10)")
	repairCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 0, "Per-call validator timeout in ms (0 = mode default)")
	repairCmd.Flags().Int64Var(&oracleMax, "oracle-max", 1_000_000_000, "Maximum number of oracle calls")
	repairCmd.Flags().StringVar(&alphabet, "alphabet", "", "Restrict edit characters to this set (default printable ASCII + \\n + \\t)")
	repairCmd.Flags().BoolVar(&allowAppend, "allow-append", true, "Permit insertion at end of input")
	repairCmd.Flags().StringVar(&inputMode, "input-mode", "file", "Candidate delivery mode (file, stdin)")
	repairCmd.Flags().StringVar(&serverBinary, "server-binary", "re2-server", "Validator server binary for re2-server specs")
	repairCmd.Flags().StringVar(&reportDir, "report-dir", "metrics", "Directory for session report files")
	repairCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus oracle counters to this file on exit")
	repairCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit without repairing")

	viper.BindPFlag("max_edits", repairCmd.Flags().Lookup("max-edits"))
	viper.BindPFlag("max_char_edits", repairCmd.Flags().Lookup("max-char-edits"))
	viper.BindPFlag("validator_timeout_ms", repairCmd.Flags().Lookup("timeout-ms"))
	viper.BindPFlag("oracle_max", repairCmd.Flags().Lookup("oracle-max"))
	viper.BindPFlag("alphabet", repairCmd.Flags().Lookup("alphabet"))
	viper.BindPFlag("allow_append", repairCmd.Flags().Lookup("allow-append"))
	viper.BindPFlag("input_mode", repairCmd.Flags().Lookup("input-mode"))
	viper.BindPFlag("server_binary", repairCmd.Flags().Lookup("server-binary"))
	viper.BindPFlag("report_dir", repairCmd.Flags().Lookup("report-dir"))
	viper.BindPFlag("metrics_file", repairCmd.Flags().Lookup("metrics-file"))
	viper.BindPFlag("dry_run", repairCmd.Flags().Lookup("dry-run"))

	rootCmd.AddCommand(repairCmd)

	// Add learn command for DFA inference
	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Infer a DFA approximation of a validator's language",
		Long: `Learn runs Angluin's L* over labeled positive and negative example sets.
Membership queries go to the external validator when one is configured and to
the example sets otherwise; equivalence queries sweep the labeled sets for a
counterexample. The learned automaton is emitted as a right-linear grammar
JSON document by default, or as Graphviz DOT.`,
		RunE: commands.RunLearn,
	}

	learnCmd.Flags().String("positives", "", "File with positive examples, one per line (required)")
	learnCmd.Flags().String("negatives", "", "File with negative examples, one per line (required)")
	learnCmd.Flags().String("category", "", "Category name for reports and logging")
	learnCmd.Flags().String("output-grammar", "", "Write right-linear grammar JSON to this file (default stdout)")
	learnCmd.Flags().String("output-dot", "", "Write Graphviz DOT to this file")
	learnCmd.Flags().String("oracle-validator", "", "Validator executable for membership queries")

	learnCmd.MarkFlagRequired("positives")
	learnCmd.MarkFlagRequired("negatives")

	viper.BindPFlag("positives", learnCmd.Flags().Lookup("positives"))
	viper.BindPFlag("negatives", learnCmd.Flags().Lookup("negatives"))
	viper.BindPFlag("category", learnCmd.Flags().Lookup("category"))
	viper.BindPFlag("output_grammar", learnCmd.Flags().Lookup("output-grammar"))
	viper.BindPFlag("output_dot", learnCmd.Flags().Lookup("output-dot"))
	viper.BindPFlag("oracle_validator", learnCmd.Flags().Lookup("oracle-validator"))

	rootCmd.AddCommand(learnCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check <validator_path>",
		Short: "Perform built-in self-checks for system validation",
		Long: `Perform checks to validate validator existence and executability, and
report directory writability. Useful before long repair runs and for CI
integration.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.PerformSelfCheck,
	})

	// Execute root command; exit 1 on give-up, 2 on usage errors
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, core.ErrNoRepair) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
