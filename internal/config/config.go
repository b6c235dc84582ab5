package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gpgam/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathConfig
	Model    ModelConfig
	Ledger   LedgerConfig
	Compare  CompareConfig
	LogLevel string
}

// PathConfig anchors every input and output location at an explicit root
type PathConfig struct {
	Root    string
	Samples string // empty means the layout default under Root
}

// ModelConfig holds the additive model settings
type ModelConfig struct {
	Splines int
	Lambda  float64
}

// LedgerConfig selects the optional run ledger database
type LedgerConfig struct {
	Driver string
	DSN    string
}

// CompareConfig holds timing-comparison settings
type CompareConfig struct {
	OptimisedCmd string
}

// Default layout, relative to the root
const (
	DefaultSamplesRel = "examples/large_sample/constrained_multi_million_sample_first_million.dat"
	inputsRel         = "examples/tiny_sample_inputs"
	gpOutRel          = "examples/tiny_sample_outputs/gp_emulation"
	gamOutRel         = "examples/tiny_sample_outputs/gam_variance"

	DefaultSplines      = 20
	DefaultLambda       = 0.6
	DefaultLedgerDriver = "sqlite3"
	DefaultOptimisedCmd = "Rscript scripts/gam/optimised/GAM_optimised.R {lat} {lon} {month}"
)

// Load reads configuration from environment variables and validates it.
// Callers load a .env file first when one is present.
func Load() (*Config, error) {
	config := &Config{
		Paths:    *loadPathConfig(),
		Model:    *loadModelConfig(),
		Ledger:   *loadLedgerConfig(),
		Compare:  *loadCompareConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Paths:    PathConfig{Root: "."},
		Model:    ModelConfig{Splines: DefaultSplines, Lambda: DefaultLambda},
		Ledger:   LedgerConfig{Driver: DefaultLedgerDriver},
		Compare:  CompareConfig{OptimisedCmd: DefaultOptimisedCmd},
		LogLevel: "INFO",
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		Root:    getEnvOrDefault("GAM_ROOT", "."),
		Samples: getEnvOrDefault("GAM_SAMPLES", ""),
	}
}

func loadModelConfig() *ModelConfig {
	return &ModelConfig{
		Splines: getEnvIntOrDefault("GAM_SPLINES", DefaultSplines),
		Lambda:  getEnvFloatOrDefault("GAM_LAMBDA", DefaultLambda),
	}
}

func loadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Driver: getEnvOrDefault("GAM_LEDGER_DRIVER", DefaultLedgerDriver),
		DSN:    getEnvOrDefault("GAM_LEDGER_DSN", ""),
	}
}

func loadCompareConfig() *CompareConfig {
	return &CompareConfig{
		OptimisedCmd: getEnvOrDefault("GAM_OPTIMISED_CMD", DefaultOptimisedCmd),
	}
}

// Validate checks the values a run depends on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.Root) == "" {
		return errors.ConfigInvalid("root path is required")
	}
	if c.Model.Splines < 4 {
		return errors.ConfigInvalid("GAM_SPLINES must be at least 4 for cubic splines")
	}
	if c.Model.Lambda < 0 {
		return errors.ConfigInvalid("GAM_LAMBDA must be non-negative")
	}
	switch c.Ledger.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid("GAM_LEDGER_DRIVER must be sqlite3 or postgres")
	}
	return nil
}

// SamplesPath is the raw LHC sample location
func (p PathConfig) SamplesPath() string {
	if p.Samples != "" {
		return p.Samples
	}
	return filepath.Join(p.Root, filepath.FromSlash(DefaultSamplesRel))
}

// InputDir holds the demo GP inputs for a month
func (p PathConfig) InputDir(variable, month string) string {
	return filepath.Join(p.Root, filepath.FromSlash(inputsRel), variable, month)
}

// GPOutDir is the root of the GP emulation outputs
func (p PathConfig) GPOutDir() string {
	return filepath.Join(p.Root, filepath.FromSlash(gpOutRel))
}

// GAMOutDir is the root of the GAM variance outputs
func (p PathConfig) GAMOutDir() string {
	return filepath.Join(p.Root, filepath.FromSlash(gamOutRel))
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
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
