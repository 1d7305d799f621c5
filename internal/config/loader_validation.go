package config

import "fmt"

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateRedis(&cfg.Redis); err != nil {
		return err
	}
	if err := validateDatabase(&cfg.Database); err != nil {
		return err
	}
	return validateProcessing(&cfg.Processing)
}

// validateRedis validates Redis configuration
func validateRedis(cfg *RedisConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if cfg.Stream == "" {
		return fmt.Errorf("redis stream key cannot be empty")
	}
	if cfg.Group == "" {
		return fmt.Errorf("redis consumer group cannot be empty")
	}
	if cfg.Consumer == "" {
		return fmt.Errorf("redis consumer name cannot be empty")
	}
	return nil
}

// validateDatabase validates database configuration
func validateDatabase(cfg *DatabaseConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("database port must be in 1..65535")
	}
	if cfg.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if cfg.User == "" {
		return fmt.Errorf("database user cannot be empty")
	}
	if cfg.PoolSize < 1 {
		return fmt.Errorf("database pool size must be positive")
	}
	return nil
}

// validateProcessing validates processing configuration
func validateProcessing(cfg *ProcessingConfig) error {
	if cfg.BatchSize < 1 {
		return fmt.Errorf("processing batch size must be positive")
	}
	if cfg.BatchTimeout <= 0 {
		return fmt.Errorf("processing batch timeout must be positive")
	}
	if cfg.MaxRetries < 1 {
		return fmt.Errorf("processing max retries must be positive")
	}
	if cfg.StatsInterval < 1 {
		return fmt.Errorf("processing stats interval must be positive")
	}
	return nil
}
