// Package config provides configuration loading and validation from environment variables and command line flags.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete configuration
type Config struct {
	Redis      RedisConfig
	Database   DatabaseConfig
	Processing ProcessingConfig
	Pipeline   PipelineConfig
}

// RedisConfig holds Redis stream consumer configuration
type RedisConfig struct {
	Address      string
	Stream       string
	Group        string
	Consumer     string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
}

// DatabaseConfig holds TimescaleDB connection configuration
type DatabaseConfig struct {
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	PoolSize       int
	ConnectTimeout time.Duration
}

// ConnString renders the pgx pool connection string
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?pool_max_conns=%d&connect_timeout=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.PoolSize,
		int(c.ConnectTimeout.Seconds()),
	)
}

// ProcessingConfig holds batch processing settings
type ProcessingConfig struct {
	BatchSize     int
	BatchTimeout  time.Duration // blocking read timeout
	MaxRetries    int
	IdleSleep     time.Duration // pause after an empty batch
	StatsInterval int           // batches between cumulative stats lines
}

// PipelineConfig holds process lifecycle settings
type PipelineConfig struct {
	ShutdownTimeout time.Duration
	MetricsAddress  string // empty disables the /metrics listener
}
