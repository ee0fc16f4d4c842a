/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learn.go
Description: Learn command implementation for the Akaylee Repairer. Runs the
L* learner over labeled example sets, optionally backed by an external
validator for membership queries, and emits the learned DFA as right-linear
grammar JSON or Graphviz DOT.
*/

package commands

import (
	"fmt"
	"os"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/akaylee-repairer/pkg/execution"
	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
	"github.com/kleascm/akaylee-repairer/pkg/learner"
	"github.com/kleascm/akaylee-repairer/pkg/logging"
	"github.com/kleascm/akaylee-repairer/pkg/utils"
)

// learnSummary is the report record persisted after a learner run
type learnSummary struct {
	RunID        string        `json:"run_id"`
	Category     string        `json:"category,omitempty"`
	Positives    int           `json:"positives"`
	Negatives    int           `json:"negatives"`
	AlphabetSize int           `json:"alphabet_size"`
	States       int           `json:"states"`
	Prefixes     int           `json:"prefixes"`
	Suffixes     int           `json:"suffixes"`
	Duration     time.Duration `json:"duration"`
}

// RunLearn executes the L* inference process
func RunLearn(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewSessionLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	positives, err := learner.ReadExamples(viper.GetString("positives"))
	if err != nil {
		return err
	}
	negatives, err := learner.ReadExamples(viper.GetString("negatives"))
	if err != nil {
		return err
	}

	alphabet := learner.InferAlphabet(positives, negatives)
	category := viper.GetString("category")

	logger.GetLogger().WithFields(logrus.Fields{
		"category":  category,
		"positives": positives.Cardinality(),
		"negatives": negatives.Cardinality(),
		"alphabet":  len(alphabet),
	}).Info("L* inference started")

	oracle, closeOracle, err := createLearnOracle(positives, negatives, logger)
	if err != nil {
		return err
	}
	defer closeOracle()

	// Seed the table with the positives, sorted for determinism
	seeds := positives.ToSlice()
	sort.Strings(seeds)

	start := time.Now()
	table := learner.NewObservationTable(alphabet)
	dfa := learner.Learn(table, oracle, seeds)

	summary := &learnSummary{
		RunID:        uuid.New().String(),
		Category:     category,
		Positives:    positives.Cardinality(),
		Negatives:    negatives.Cardinality(),
		AlphabetSize: len(alphabet),
		States:       dfa.StateCount(),
		Prefixes:     len(table.Prefixes()),
		Suffixes:     len(table.Suffixes()),
		Duration:     time.Since(start),
	}

	logger.GetLogger().WithFields(logrus.Fields{
		"states":   summary.States,
		"prefixes": summary.Prefixes,
		"suffixes": summary.Suffixes,
		"duration": summary.Duration,
	}).Info("L* inference finished")

	if dotPath := viper.GetString("output_dot"); dotPath != "" {
		if err := os.WriteFile(dotPath, []byte(dfa.ToDOT()), 0644); err != nil {
			return fmt.Errorf("failed to write DOT file: %w", err)
		}
	}

	grammarJSON, err := dfa.ToRightLinearJSON(alphabet)
	if err != nil {
		return fmt.Errorf("failed to encode grammar: %w", err)
	}
	if grammarPath := viper.GetString("output_grammar"); grammarPath != "" {
		if err := os.WriteFile(grammarPath, grammarJSON, 0644); err != nil {
			return fmt.Errorf("failed to write grammar file: %w", err)
		}
	} else if viper.GetString("output_dot") == "" {
		// Grammar JSON is the default output
		fmt.Println(string(grammarJSON))
	}

	if path, err := utils.WriteLearnReport(viper.GetString("report_dir"), summary.RunID, summary); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to write learn report")
	} else {
		logger.GetLogger().WithField("report", path).Debug("Learn report written")
	}

	return nil
}

// createLearnOracle picks the validator-backed oracle when one is configured
// and the dataset oracle otherwise. The returned closer releases the
// validator child resources.
func createLearnOracle(positives, negatives mapset.Set[string], logger *logging.Logger) (learner.Oracle, func(), error) {
	validatorPath := viper.GetString("oracle_validator")
	if validatorPath == "" {
		return learner.NewDatasetOracle(positives, negatives, true), func() {}, nil
	}

	if err := checkExecutable(validatorPath); err != nil {
		return nil, nil, err
	}

	config := &interfaces.RepairConfig{
		ValidatorPath: validatorPath,
		InputMode:     interfaces.InputModeFile,
		OracleMax:     viper.GetInt64("oracle_max"),
	}
	if config.OracleMax <= 0 {
		config.OracleMax = 1_000_000_000
	}
	config.Timeout = resolveTimeout(config)

	proc := execution.NewProcessOracle(config, logger)
	return learner.NewValidatorOracle(proc, positives, negatives), func() { proc.Close() }, nil
}
