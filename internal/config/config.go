package config

import (
	"os"
	"strconv"

	"gopermute/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Database DatabaseConfig
}

// EngineConfig holds permutation engine settings
type EngineConfig struct {
	// MaxExactCombinations caps C(N,k) for exact two-sample enumeration.
	// Requests above the cap are rejected with COMPUTE_INFEASIBLE.
	MaxExactCombinations int

	// MaxExactPermutationN caps N for exact regression enumeration, which
	// evaluates all N! orderings. 10! is ~3.6M evaluations; anything larger
	// is rejected and the caller must sample instead.
	MaxExactPermutationN int

	// DefaultDraws is the Monte Carlo draw count used when the caller does
	// not specify one.
	DefaultDraws int

	// Workers bounds concurrent Monte Carlo chunk evaluation.
	Workers int

	// ChunkSize is the number of draws per deterministic RNG stream. Output
	// depends only on seed and draw count, never on worker scheduling.
	ChunkSize int
}

// DatabaseConfig holds optional run-persistence settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Engine:   loadEngineConfig(),
		Database: loadDatabaseConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DefaultEngineConfig returns engine settings suitable for library use
// without any environment setup.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxExactCombinations: 200000,
		MaxExactPermutationN: 10,
		DefaultDraws:         10000,
		Workers:              4,
		ChunkSize:            1024,
	}
}

func loadEngineConfig() EngineConfig {
	defaults := DefaultEngineConfig()
	return EngineConfig{
		MaxExactCombinations: getEnvIntOrDefault("MAX_EXACT_COMBINATIONS", defaults.MaxExactCombinations),
		MaxExactPermutationN: getEnvIntOrDefault("MAX_EXACT_PERMUTATION_N", defaults.MaxExactPermutationN),
		DefaultDraws:         getEnvIntOrDefault("DEFAULT_DRAWS", defaults.DefaultDraws),
		Workers:              getEnvIntOrDefault("ENGINE_WORKERS", defaults.Workers),
		ChunkSize:            getEnvIntOrDefault("ENGINE_CHUNK_SIZE", defaults.ChunkSize),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := getEnvOrDefault("DATABASE_URL", "")
	return DatabaseConfig{
		URL:     url,
		Enabled: url != "",
	}
}

func validateConfig(config *Config) error {
	e := config.Engine
	if e.MaxExactCombinations <= 0 {
		return errors.ConfigInvalid("MAX_EXACT_COMBINATIONS must be positive")
	}
	if e.MaxExactPermutationN <= 0 {
		return errors.ConfigInvalid("MAX_EXACT_PERMUTATION_N must be positive")
	}
	if e.DefaultDraws <= 0 {
		return errors.ConfigInvalid("DEFAULT_DRAWS must be positive")
	}
	if e.Workers <= 0 {
		return errors.ConfigInvalid("ENGINE_WORKERS must be positive")
	}
	if e.ChunkSize <= 0 {
		return errors.ConfigInvalid("ENGINE_CHUNK_SIZE must be positive")
	}
	return nil
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
