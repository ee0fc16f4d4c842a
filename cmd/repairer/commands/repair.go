/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: repair.go
Description: Repair command implementation for the Akaylee Repairer. Resolves
the validator spec and input, configures the oracle and engine, runs the
edit search, and writes the repaired output, session report, and counters.
*/

package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/akaylee-repairer/pkg/core"
	"github.com/kleascm/akaylee-repairer/pkg/execution"
	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/logging"
	"github.com/kleascm/akaylee-repairer/pkg/utils"
)

// Default per-call validator timeouts by oracle mode
const (
	defaultProcessTimeout = 1000 * time.Millisecond
	defaultServerTimeout  = 250 * time.Millisecond
)

// serverSpecPrefix selects the persistent validator server oracle
const serverSpecPrefix = "re2-server:"

// RunRepair executes the repair process
func RunRepair(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validatorSpec, inputArg, outputFile := args[0], args[1], args[2]

	config, err := createRepairConfig(validatorSpec, outputFile)
	if err != nil {
		return err
	}

	input := loadInput(inputArg)

	if viper.GetBool("dry_run") {
		fmt.Println("Repair configuration:")
		fmt.Println(litter.Sdump(config))
		fmt.Printf("Input: %d bytes\n", len(input))
		return nil
	}

	logger, err := NewSessionLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	oracle, err := createOracle(config, logger)
	if err != nil {
		return err
	}
	defer oracle.Close()

	engine := core.NewEngine(config, oracle, logger)

	start := time.Now()
	result, repairErr := engine.Repair(input)
	stats := oracle.Stats()

	report := &interfaces.RepairReport{
		SessionID:  engine.SessionID(),
		Validator:  validatorSpec,
		Mode:       oracleMode(config),
		InputSize:  len(input),
		Stats:      stats,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}

	if repairErr == nil {
		report.Repaired = true
		report.Candidate = string(result.Candidate)
		report.EditCount = result.EditCount

		if err := os.WriteFile(outputFile, result.Candidate, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Repaired string: %s\n", result.Candidate)
	} else if errors.Is(repairErr, core.ErrNoRepair) {
		fmt.Printf("No fix with up to %d edits found.\n", config.MaxEdits)
	}

	fmt.Printf("*** Number of required oracle runs: %d correct: %d incorrect: %d incomplete: %d ***\n",
		stats.Calls, stats.Accepted, stats.Rejected, stats.Incomplete)
	logger.LogSearchStats(stats.Calls, stats.Accepted, stats.Rejected, stats.Incomplete, nil)

	if path, err := utils.WriteRepairReport(config.ReportDir, report); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to write session report")
	} else {
		logger.GetLogger().WithField("report", path).Debug("Session report written")
	}

	writeMetricsFile(config, logger)

	return repairErr
}

// createRepairConfig resolves flags, environment, and the validator spec
func createRepairConfig(validatorSpec, outputFile string) (*interfaces.RepairConfig, error) {
	config := &interfaces.RepairConfig{
		MaxEdits:     clampInt(viper.GetInt("max_edits"), 1, 10, 5),
		MaxCharEdits: clampInt(viper.GetInt("max_char_edits"), 0, 10, 1),
		OracleMax:    viper.GetInt64("oracle_max"),
		Alphabet:     viper.GetString("alphabet"),
		AllowAppend:  viper.GetBool("allow_append"),
		InputMode:    viper.GetString("input_mode"),
		OutputFile:   outputFile,
		ReportDir:    viper.GetString("report_dir"),
		MetricsFile:  viper.GetString("metrics_file"),
		LogLevel:     viper.GetString("log_level"),
		JSONLogs:     viper.GetBool("json_logs"),
	}

	if config.InputMode != interfaces.InputModeFile && config.InputMode != interfaces.InputModeStdin {
		return nil, fmt.Errorf("unsupported input mode: %s", config.InputMode)
	}
	if config.OracleMax <= 0 {
		return nil, fmt.Errorf("oracle-max must be positive")
	}

	if strings.HasPrefix(validatorSpec, serverSpecPrefix) {
		config.ServerCategory = strings.TrimPrefix(validatorSpec, serverSpecPrefix)
		config.ValidatorPath = viper.GetString("server_binary")
		if config.ServerCategory == "" {
			return nil, fmt.Errorf("empty category in validator spec %q", validatorSpec)
		}
	} else {
		config.ValidatorPath = validatorSpec
		if err := checkExecutable(config.ValidatorPath); err != nil {
			return nil, err
		}
	}

	config.Timeout = resolveTimeout(config)
	return config, nil
}

// resolveTimeout applies the REPAIR_VALIDATOR_TIMEOUT_MS override within
// [1, 60000] ms, defaulting per oracle mode
func resolveTimeout(config *interfaces.RepairConfig) time.Duration {
	def := defaultProcessTimeout
	if config.ServerCategory != "" {
		def = defaultServerTimeout
	}
	ms := viper.GetInt("validator_timeout_ms")
	if ms < 1 || ms > 60000 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// checkExecutable verifies the validator exists and is executable
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("validator not found: %s", path)
	}
	if info.IsDir() || info.Mode()&0111 == 0 {
		return fmt.Errorf("validator not executable: %s", path)
	}
	return nil
}

// loadInput treats the argument as a file path when it names a readable
// regular file, and as a literal string otherwise
func loadInput(inputArg string) []byte {
	if info, err := os.Stat(inputArg); err == nil && info.Mode().IsRegular() {
		if data, err := os.ReadFile(inputArg); err == nil {
			return data
		}
	}
	return []byte(inputArg)
}

// createOracle builds the oracle matching the validator spec
func createOracle(config *interfaces.RepairConfig, logger *logging.Logger) (interfaces.Oracle, error) {
	if config.ServerCategory != "" {
		return execution.NewServerOracle(config, logger)
	}
	return execution.NewProcessOracle(config, logger), nil
}

func oracleMode(config *interfaces.RepairConfig) string {
	if config.ServerCategory != "" {
		return "server"
	}
	return config.InputMode
}

// writeMetricsFile dumps the Prometheus oracle counters when configured
func writeMetricsFile(config *interfaces.RepairConfig, logger *logging.Logger) {
	if config.MetricsFile == "" {
		return
	}
	f, err := os.Create(config.MetricsFile)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to create metrics file")
		return
	}
	defer f.Close()
	metrics.WritePrometheus(f, false)
}
