package config

import (
	"os"
	"strconv"

	"github.com/mbedward/invasive-grasses-models/internal/errors"
)

// Config represents the complete analysis configuration.
type Config struct {
	Sampler  SamplerConfig
	Database DatabaseConfig
}

// SamplerConfig holds the chain/burn-in/sample/thin parameters of a run.
type SamplerConfig struct {
	Chains        int
	Burnin        int
	Samples       int
	Thin          int
	Seed          int64
	RHatThreshold float64
	MaxParallel   int
}

// DatabaseConfig holds optional Postgres settings. An empty URL means the
// analysis runs entirely in memory with no persistence.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Sampler: SamplerConfig{
			Chains:        getEnvIntOrDefault("MCMC_CHAINS", 4),
			Burnin:        getEnvIntOrDefault("MCMC_BURNIN", 2000),
			Samples:       getEnvIntOrDefault("MCMC_SAMPLES", 2000),
			Thin:          getEnvIntOrDefault("MCMC_THIN", 5),
			Seed:          getEnvInt64OrDefault("MCMC_SEED", 42),
			RHatThreshold: getEnvFloatOrDefault("MCMC_RHAT_THRESHOLD", 1.05),
			MaxParallel:   getEnvIntOrDefault("MCMC_MAX_PARALLEL", 0),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if cfg.Sampler.Chains < 1 {
		return nil, errors.ConfigInvalid("MCMC_CHAINS must be at least 1")
	}
	if cfg.Sampler.Burnin < 0 {
		return nil, errors.ConfigInvalid("MCMC_BURNIN must be non-negative")
	}
	if cfg.Sampler.Samples < 1 {
		return nil, errors.ConfigInvalid("MCMC_SAMPLES must be at least 1")
	}
	if cfg.Sampler.Thin < 1 {
		return nil, errors.ConfigInvalid("MCMC_THIN must be at least 1")
	}
	if cfg.Sampler.RHatThreshold <= 1 {
		return nil, errors.ConfigInvalid("MCMC_RHAT_THRESHOLD must exceed 1")
	}
	return cfg, nil
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
