package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"edustat/internal/errors"
)

// Report formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Paths    PathConfig
	Analysis AnalysisConfig
	Report   ReportConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	DataDir    string `validate:"required"`
	FiguresDir string `validate:"required"`
	// PlotStyle is an optional YAML file overriding the default figure style
	PlotStyle string
}

// AnalysisConfig holds the statistical options
type AnalysisConfig struct {
	Alpha         float64 `validate:"gt=0,lt=1"`
	EqualVariance bool
}

// ReportConfig holds report rendering settings
type ReportConfig struct {
	Format string `validate:"oneof=text markdown html"`
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Paths: PathConfig{
			DataDir:    "data",
			FiguresDir: "figures",
		},
		Analysis: AnalysisConfig{Alpha: 0.05},
		Report:   ReportConfig{Format: FormatText},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	defaults := Default()
	config := &Config{
		Paths:    *loadPathConfig(defaults.Paths),
		Analysis: *loadAnalysisConfig(defaults.Analysis),
		Report:   *loadReportConfig(defaults.Report),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks the struct constraints. Callers that override values
// from flags should validate again.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

func loadPathConfig(defaults PathConfig) *PathConfig {
	return &PathConfig{
		DataDir:    getEnvOrDefault("EDUSTAT_DATA_DIR", defaults.DataDir),
		FiguresDir: getEnvOrDefault("EDUSTAT_FIGURES_DIR", defaults.FiguresDir),
		PlotStyle:  getEnvOrDefault("EDUSTAT_PLOT_STYLE", defaults.PlotStyle),
	}
}

func loadAnalysisConfig(defaults AnalysisConfig) *AnalysisConfig {
	return &AnalysisConfig{
		Alpha:         getEnvFloatOrDefault("EDUSTAT_ALPHA", defaults.Alpha),
		EqualVariance: getEnvBoolOrDefault("EDUSTAT_EQUAL_VARIANCE", defaults.EqualVariance),
	}
}

func loadReportConfig(defaults ReportConfig) *ReportConfig {
	return &ReportConfig{
		Format: getEnvOrDefault("EDUSTAT_REPORT_FORMAT", defaults.Format),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
