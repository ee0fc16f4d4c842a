/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Self-check command implementation for the Akaylee Repairer.
Validates validator existence and executability and report-directory
writability before a repair run.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PerformSelfCheck validates the environment for a repair run
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validatorPath := args[0]
	failed := false

	if err := checkExecutable(validatorPath); err != nil {
		fmt.Printf("FAIL validator: %v\n", err)
		failed = true
	} else {
		fmt.Printf("OK   validator: %s\n", validatorPath)
	}

	reportDir := viper.GetString("report_dir")
	if reportDir == "" {
		reportDir = "metrics"
	}
	if err := checkWritable(reportDir); err != nil {
		fmt.Printf("FAIL report dir: %v\n", err)
		failed = true
	} else {
		fmt.Printf("OK   report dir: %s\n", reportDir)
	}

	if failed {
		return fmt.Errorf("self-check failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

// checkWritable verifies the directory can be created and written to
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".selfcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	return os.Remove(probe)
}
