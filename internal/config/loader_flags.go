package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	// Redis flags
	flagRedisAddress      = flag.String("redis-address", "", "Redis address")
	flagRedisStream       = flag.String("redis-stream", "", "Redis stream key")
	flagRedisGroup        = flag.String("redis-group", "", "Redis consumer group name")
	flagRedisConsumer     = flag.String("redis-consumer", "", "Redis consumer name")
	flagRedisDialTimeout  = flag.Duration("redis-dial-timeout", 0, "Redis dial timeout")
	flagRedisReadTimeout  = flag.Duration("redis-read-timeout", 0, "Redis read timeout")
	flagRedisWriteTimeout = flag.Duration("redis-write-timeout", 0, "Redis write timeout")
	flagRedisPingTimeout  = flag.Duration("redis-ping-timeout", 0, "Redis ping timeout")

	// Database flags
	flagDatabaseHost           = flag.String("database-host", "", "Database host")
	flagDatabasePort           = flag.Int("database-port", 0, "Database port")
	flagDatabaseName           = flag.String("database-name", "", "Database name")
	flagDatabaseUser           = flag.String("database-user", "", "Database user")
	flagDatabasePassword       = flag.String("database-password", "", "Database password")
	flagDatabasePoolSize       = flag.Int("database-pool-size", 0, "Database connection pool size")
	flagDatabaseConnectTimeout = flag.Duration("database-connect-timeout", 0, "Database connect timeout")

	// Processing flags
	flagProcessingBatchSize     = flag.Int("processing-batch-size", 0, "Batch size for stream reads")
	flagProcessingBatchTimeout  = flag.Duration("processing-batch-timeout", 0, "Blocking read timeout per batch")
	flagProcessingMaxRetries    = flag.Int("processing-max-retries", 0, "Maximum batch attempts before abandoning")
	flagProcessingIdleSleep     = flag.Duration("processing-idle-sleep", 0, "Pause after an empty batch")
	flagProcessingStatsInterval = flag.Int("processing-stats-interval", 0, "Batches between cumulative stats lines")

	// Pipeline flags
	flagPipelineShutdownTimeout = flag.Duration("pipeline-shutdown-timeout", 0, "Graceful shutdown timeout")
	flagPipelineMetricsAddress  = flag.String("pipeline-metrics-address", "", "Listen address for the /metrics endpoint")
)

// applyRedisFlags applies command line flags to Redis configuration
func applyRedisFlags(cfg *RedisConfig) {
	if *flagRedisAddress != "" {
		cfg.Address = *flagRedisAddress
	}
	if *flagRedisStream != "" {
		cfg.Stream = *flagRedisStream
	}
	if *flagRedisGroup != "" {
		cfg.Group = *flagRedisGroup
	}
	if *flagRedisConsumer != "" {
		cfg.Consumer = *flagRedisConsumer
	}
	if *flagRedisDialTimeout != 0 {
		cfg.DialTimeout = *flagRedisDialTimeout
	}
	if *flagRedisReadTimeout != 0 {
		cfg.ReadTimeout = *flagRedisReadTimeout
	}
	if *flagRedisWriteTimeout != 0 {
		cfg.WriteTimeout = *flagRedisWriteTimeout
	}
	if *flagRedisPingTimeout != 0 {
		cfg.PingTimeout = *flagRedisPingTimeout
	}
}

// applyDatabaseFlags applies command line flags to database configuration
func applyDatabaseFlags(cfg *DatabaseConfig) {
	if *flagDatabaseHost != "" {
		cfg.Host = *flagDatabaseHost
	}
	if *flagDatabasePort != 0 {
		cfg.Port = *flagDatabasePort
	}
	if *flagDatabaseName != "" {
		cfg.Name = *flagDatabaseName
	}
	if *flagDatabaseUser != "" {
		cfg.User = *flagDatabaseUser
	}
	if *flagDatabasePassword != "" {
		cfg.Password = *flagDatabasePassword
	}
	if *flagDatabasePoolSize != 0 {
		cfg.PoolSize = *flagDatabasePoolSize
	}
	if *flagDatabaseConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagDatabaseConnectTimeout
	}
}

// applyProcessingFlags applies command line flags to processing configuration
func applyProcessingFlags(cfg *ProcessingConfig) {
	if *flagProcessingBatchSize != 0 {
		cfg.BatchSize = *flagProcessingBatchSize
	}
	if *flagProcessingBatchTimeout != 0 {
		cfg.BatchTimeout = *flagProcessingBatchTimeout
	}
	if *flagProcessingMaxRetries != 0 {
		cfg.MaxRetries = *flagProcessingMaxRetries
	}
	if *flagProcessingIdleSleep != 0 {
		cfg.IdleSleep = *flagProcessingIdleSleep
	}
	if *flagProcessingStatsInterval != 0 {
		cfg.StatsInterval = *flagProcessingStatsInterval
	}
}

// applyPipelineFlags applies command line flags to lifecycle configuration
func applyPipelineFlags(cfg *PipelineConfig) {
	if *flagPipelineShutdownTimeout != 0 {
		cfg.ShutdownTimeout = *flagPipelineShutdownTimeout
	}
	if *flagPipelineMetricsAddress != "" {
		cfg.MetricsAddress = *flagPipelineMetricsAddress
	}
}
