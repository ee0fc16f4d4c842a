/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Akaylee Repairer commands. Provides
common configuration loading, session logger construction, and value clamping
used across all command implementations.
*/

package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kleascm/akaylee-repairer/pkg/logging"
)

// LoadConfig loads configuration from files and environment. Environment
// variables use the REPAIR prefix: REPAIR_MAX_EDITS, REPAIR_MAX_CHAR_EDITS,
// REPAIR_VALIDATOR_TIMEOUT_MS.
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("REPAIR")
	viper.AutomaticEnv()

	return nil
}

// NewSessionLogger builds the session logger from the loaded configuration.
// Callers own the logger and must Close it so the log directory gets swept.
func NewSessionLogger() (*logging.Logger, error) {
	format := logging.LogFormat(viper.GetString("log_format"))
	if viper.GetBool("json_logs") {
		format = logging.LogFormatJSON
	}

	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    format,
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		MaxSize:   viper.GetInt64("log_max_size"),
		Timestamp: true,
		Colors:    !viper.GetBool("json_logs"),
		Compress:  viper.GetBool("log_compress"),
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// clampInt returns v when it lies in [lo, hi] and def otherwise. Out-of-range
// values from flags or the environment fall back to the documented default.
func clampInt(v, lo, hi, def int) int {
	if v < lo || v > hi {
		return def
	}
	return v
}
