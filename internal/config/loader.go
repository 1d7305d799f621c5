package config

import (
	"flag"
	"fmt"
)

// Load loads configuration with precedence: defaults → environment variables → command line flags
// It performs validation before returning the configuration.
func Load() (*Config, error) {
	// Parse command line flags if not already parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Step 1: Start with defaults
	cfg := defaultConfig()

	// Step 2: Apply environment variables
	loadRedisFromEnv(&cfg.Redis)
	loadDatabaseFromEnv(&cfg.Database)
	loadProcessingFromEnv(&cfg.Processing)
	loadPipelineFromEnv(&cfg.Pipeline)

	// Step 3: Apply command line flags (highest precedence)
	applyRedisFlags(&cfg.Redis)
	applyDatabaseFlags(&cfg.Database)
	applyProcessingFlags(&cfg.Processing)
	applyPipelineFlags(&cfg.Pipeline)

	// Step 4: Validate the final configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
