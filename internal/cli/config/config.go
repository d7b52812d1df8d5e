// Package config loads CLI configuration from seam.yml and SEAM_ environment
// variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the seam CLI configuration
type Config struct {
	SchemaFile string `mapstructure:"schema_file"`
	LogLevel   string `mapstructure:"log_level"`
	NoColor    bool   `mapstructure:"no_color"`
}

// Load loads the configuration from seam.yml or seam.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("schema_file", "schema.yml")
	v.SetDefault("log_level", "info")
	v.SetDefault("no_color", false)

	// Set config name and paths
	v.SetConfigName("seam")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support (SEAM_SCHEMA_FILE, SEAM_LOG_LEVEL, ...)
	v.SetEnvPrefix("SEAM")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
