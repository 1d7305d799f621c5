package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// defaultRedisConfig returns the default Redis configuration. The consumer
// name gets a unique suffix so parallel writers never collide in the group.
func defaultRedisConfig() RedisConfig {
	return RedisConfig{
		Address:      "localhost:6379",
		Stream:       "camera_events",
		Group:        "processor_group",
		Consumer:     fmt.Sprintf("writer-%s", uuid.NewString()[:8]),
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		PingTimeout:  5 * time.Second,
	}
}

// defaultDatabaseConfig returns the default TimescaleDB configuration
func defaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:           "localhost",
		Port:           5432,
		Name:           "gozcu",
		User:           "postgres",
		Password:       "postgres",
		PoolSize:       10,
		ConnectTimeout: 10 * time.Second,
	}
}

// defaultProcessingConfig returns the default batch processing configuration
func defaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		BatchSize:     100,
		BatchTimeout:  5 * time.Second,
		MaxRetries:    3,
		IdleSleep:     1 * time.Second,
		StatsInterval: 10,
	}
}

// defaultPipelineConfig returns the default lifecycle configuration
func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ShutdownTimeout: 30 * time.Second,
		MetricsAddress:  "",
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		Redis:      defaultRedisConfig(),
		Database:   defaultDatabaseConfig(),
		Processing: defaultProcessingConfig(),
		Pipeline:   defaultPipelineConfig(),
	}
}
