package config

import (
	"os"
	"strconv"
	"time"
)

// loadRedisFromEnv loads Redis configuration from environment variables
func loadRedisFromEnv(cfg *RedisConfig) {
	if v := getEnvString("REDIS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("REDIS_STREAM"); v != "" {
		cfg.Stream = v
	}
	if v := getEnvString("REDIS_GROUP"); v != "" {
		cfg.Group = v
	}
	if v := getEnvString("REDIS_CONSUMER"); v != "" {
		cfg.Consumer = v
	}
	if v := getEnvDuration("REDIS_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("REDIS_READ_TIMEOUT"); v != 0 {
		cfg.ReadTimeout = v
	}
	if v := getEnvDuration("REDIS_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("REDIS_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
}

// loadDatabaseFromEnv loads database configuration from environment variables
func loadDatabaseFromEnv(cfg *DatabaseConfig) {
	if v := getEnvString("DATABASE_HOST"); v != "" {
		cfg.Host = v
	}
	if v := getEnvInt("DATABASE_PORT"); v != 0 {
		cfg.Port = v
	}
	if v := getEnvString("DATABASE_NAME"); v != "" {
		cfg.Name = v
	}
	if v := getEnvString("DATABASE_USER"); v != "" {
		cfg.User = v
	}
	if v := getEnvString("DATABASE_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := getEnvInt("DATABASE_POOL_SIZE"); v != 0 {
		cfg.PoolSize = v
	}
	if v := getEnvDuration("DATABASE_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
}

// loadProcessingFromEnv loads batch processing configuration from environment variables
func loadProcessingFromEnv(cfg *ProcessingConfig) {
	if v := getEnvInt("PROCESSING_BATCH_SIZE"); v != 0 {
		cfg.BatchSize = v
	}
	if v := getEnvDuration("PROCESSING_BATCH_TIMEOUT"); v != 0 {
		cfg.BatchTimeout = v
	}
	if v := getEnvInt("PROCESSING_MAX_RETRIES"); v != 0 {
		cfg.MaxRetries = v
	}
	if v := getEnvDuration("PROCESSING_IDLE_SLEEP"); v != 0 {
		cfg.IdleSleep = v
	}
	if v := getEnvInt("PROCESSING_STATS_INTERVAL"); v != 0 {
		cfg.StatsInterval = v
	}
}

// loadPipelineFromEnv loads lifecycle configuration from environment variables
func loadPipelineFromEnv(cfg *PipelineConfig) {
	if v := getEnvDuration("PIPELINE_SHUTDOWN_TIMEOUT"); v != 0 {
		cfg.ShutdownTimeout = v
	}
	if v := getEnvString("PIPELINE_METRICS_ADDRESS"); v != "" {
		cfg.MetricsAddress = v
	}
}

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func getEnvDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
