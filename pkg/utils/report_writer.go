/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_writer.go
Description: Utility for writing repair session reports to the metrics
directory. Handles timestamped, type-specific subdirectory naming, ensures
directories exist, and writes JSON files for easy analysis.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/akaylee-repairer/pkg/interfaces"
)

// WriteRepairReport writes a session report under <baseDir>/repair with a
// timestamped filename and returns the path written.
func WriteRepairReport(baseDir string, report *interfaces.RepairReport) (string, error) {
	return writeReport(baseDir, "repair", report.SessionID, report)
}

// WriteLearnReport writes a learner run summary under <baseDir>/learn
func WriteLearnReport(baseDir string, runID string, result interface{}) (string, error) {
	return writeReport(baseDir, "learn", runID, result)
}

func writeReport(baseDir, kind, id string, result interface{}) (string, error) {
	if baseDir == "" {
		baseDir = "metrics"
	}
	dir := filepath.Join(baseDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// Filename: 2024-06-11_01-30-00_repair_<id>.json
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.json", timestamp, kind, id)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
