package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"goetl/internal"
	"goetl/internal/errors"
	"goetl/internal/preprocess"
)

// Default file locations of the listings export and the prepared output
const (
	DefaultInputPath  = "AB_NYC_2019.csv"
	DefaultOutputPath = "processed_data.csv"
)

// Config represents the complete application configuration
type Config struct {
	Paths      PathConfig
	Preprocess preprocess.Options
	Logging    LoggingConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	InputPath  string
	OutputPath string
	// ParamsPath is where fit writes, and apply reads, fitted parameters
	ParamsPath string
	// ManifestPath, when set, receives the run manifest as JSON
	ManifestPath string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level internal.LogLevel
}

// Default returns the fixed-path configuration: AB_NYC_2019.csv in, processed_data.csv out
func Default() *Config {
	return &Config{
		Paths: PathConfig{
			InputPath:  DefaultInputPath,
			OutputPath: DefaultOutputPath,
		},
		Preprocess: preprocess.DefaultOptions(),
		Logging:    LoggingConfig{Level: internal.LogLevelInfo},
	}
}

// LoadDotenv loads .env style files into the environment. Missing files are not an error.
func LoadDotenv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			internal.DefaultLogger.Warn("failed to load %s: %v", file, err)
		}
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Paths = loadPathConfig()

	preprocessOptions, err := loadPreprocessOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load preprocessing configuration")
	}
	config.Preprocess = preprocessOptions

	config.Logging = LoggingConfig{Level: internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadPathConfig() PathConfig {
	return PathConfig{
		InputPath:    getEnvOrDefault("ETL_INPUT_PATH", DefaultInputPath),
		OutputPath:   getEnvOrDefault("ETL_OUTPUT_PATH", DefaultOutputPath),
		ParamsPath:   getEnvOrDefault("ETL_PARAMS_PATH", ""),
		ManifestPath: getEnvOrDefault("ETL_MANIFEST_PATH", ""),
	}
}

func loadPreprocessOptions() (preprocess.Options, error) {
	opts := preprocess.DefaultOptions()

	if value, ok := os.LookupEnv("ETL_EXCLUDED_COLUMNS"); ok {
		opts.ExcludedColumns = ParseList(value)
	}
	opts.NumericStrategy = preprocess.NumericStrategy(getEnvOrDefault("ETL_NUMERIC_IMPUTE", string(opts.NumericStrategy)))
	opts.CategoricalStrategy = preprocess.CategoricalStrategy(getEnvOrDefault("ETL_CATEGORICAL_IMPUTE", string(opts.CategoricalStrategy)))
	opts.CategoricalFill = getEnvOrDefault("ETL_CATEGORICAL_FILL", opts.CategoricalFill)
	opts.UnknownCategories = preprocess.UnknownPolicy(getEnvOrDefault("ETL_UNKNOWN_CATEGORIES", string(opts.UnknownCategories)))

	if value := os.Getenv("ETL_NUMERIC_FILL"); value != "" {
		fill, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return opts, errors.ConfigInvalid("ETL_NUMERIC_FILL must be a number")
		}
		opts.NumericFill = fill
	}
	return opts, nil
}

// Validate checks paths and preprocessing options
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.InputPath) == "" {
		return errors.ConfigInvalid("input path is required")
	}
	if strings.TrimSpace(c.Paths.OutputPath) == "" {
		return errors.ConfigInvalid("output path is required")
	}
	if err := c.Preprocess.Validate(); err != nil {
		return err
	}
	return nil
}

// Settings returns everything that influences the output bytes, for fingerprinting
func (c *Config) Settings() map[string]string {
	return c.Preprocess.Settings()
}

// ParseList splits a comma separated list, dropping blanks
func ParseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
