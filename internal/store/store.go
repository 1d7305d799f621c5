// Package store persists validated camera events into TimescaleDB using the
// COPY bulk wire path.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gozcu/camera-event-writer/internal/config"
	"github.com/gozcu/camera-event-writer/internal/log"
)

// Store owns the database connection pool. It is a long-lived object
// created at startup and closed at shutdown; components that need the
// database receive it as a dependency.
type Store struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

// Connect creates the connection pool and verifies connectivity.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *log.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.PoolSize)
	poolCfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %v", ErrStoreUnavailable, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping %s:%d: %v", ErrStoreUnavailable, cfg.Host, cfg.Port, err)
	}

	logger.Info("Database pool created (host=%s, pool_size=%d)", cfg.Host, cfg.PoolSize)
	return &Store{pool: pool, log: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.log.Info("Database pool closed")
	}
}
