// Package config loads pipeline configuration from defaults, an optional
// YAML file and DEALFLOW_* environment variables, in rising precedence.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Reference ReferenceConfig `yaml:"reference" envconfig:"REFERENCE"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Partners  []PartnerConfig `yaml:"partners" validate:"dive"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PipelineConfig controls run execution.
type PipelineConfig struct {
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"min=1"`
}

// ReferenceConfig points at the shared reference tables. The SIC table may
// be either the corrected CSV lookup or the ONS XLSX structure workbook;
// the extension decides the loader.
type ReferenceConfig struct {
	SicPath string `yaml:"sic_path" envconfig:"SIC_PATH" validate:"required"`
	GeoPath string `yaml:"geo_path" envconfig:"GEO_PATH" validate:"required"`
}

// OutputConfig controls where the merged table is written.
type OutputConfig struct {
	Path string `yaml:"path" envconfig:"PATH" validate:"required"`
}

// PartnerConfig describes one partner's workbook extract.
type PartnerConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Workbook string `yaml:"workbook" validate:"required"`
	Sheet    string `yaml:"sheet"`
}

// Default returns the built-in configuration baseline.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/dealflow.log",
		},
		Pipeline: PipelineConfig{Workers: 4},
		Reference: ReferenceConfig{
			SicPath: "external_data/sic_corrected.csv",
			GeoPath: "external_data/lsoa.csv",
		},
		Output: OutputConfig{Path: "data/deals.csv"},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file at
// path when it exists, overlaid by environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process("DEALFLOW", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
