// Package main starts the camera event writer binary.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gozcu/camera-event-writer/internal/config"
	"github.com/gozcu/camera-event-writer/internal/log"
	"github.com/gozcu/camera-event-writer/internal/metrics"
	"github.com/gozcu/camera-event-writer/internal/redis"
	"github.com/gozcu/camera-event-writer/internal/store"
	"github.com/gozcu/camera-event-writer/internal/transform"
	"github.com/gozcu/camera-event-writer/internal/writer"
)

func run() int {
	logger := log.New()
	logger.Info("Starting camera event writer")

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		return 1
	}

	consumer, db, w, metricsSrv, err := initializeServices(cfg, logger)
	if err != nil {
		return 1
	}
	defer closeServices(consumer, db, metricsSrv, cfg, logger)

	return runMainLoop(w, logger)
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		return nil, err
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("Redis: %s, Stream: %s, Group: %s, Consumer: %s",
		cfg.Redis.Address, cfg.Redis.Stream, cfg.Redis.Group, cfg.Redis.Consumer)
	logger.Info("Database: %s:%d/%s (pool_size=%d)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.PoolSize)
	logger.Info("Processing: batch_size=%d, batch_timeout=%s, max_retries=%d",
		cfg.Processing.BatchSize, cfg.Processing.BatchTimeout, cfg.Processing.MaxRetries)
	return cfg, nil
}

func initializeServices(cfg *config.Config, logger *log.Logger) (*redis.Consumer, *store.Store, *writer.Writer, *http.Server, error) {
	consumer, err := redis.NewConsumer(&cfg.Redis, logger)
	if err != nil {
		logger.Error("Failed to create Redis consumer: %v", err)
		return nil, nil, nil, nil, err
	}
	logger.Info("Connected to Redis")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()

	db, err := store.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		_ = consumer.Close()
		return nil, nil, nil, nil, err
	}
	logger.Info("Connected to database")

	loader := store.NewLoader(db, logger)
	transformer := transform.New(logger)
	w := writer.New(consumer, transformer, loader, cfg, logger)

	var metricsSrv *http.Server
	if cfg.Pipeline.MetricsAddress != "" {
		metricsSrv = metrics.Serve(cfg.Pipeline.MetricsAddress, logger)
	}

	return consumer, db, w, metricsSrv, nil
}

func closeServices(consumer *redis.Consumer, db *store.Store, metricsSrv *http.Server, cfg *config.Config, logger *log.Logger) {
	metrics.Shutdown(metricsSrv, cfg.Pipeline.ShutdownTimeout, logger)
	db.Close()
	if err := consumer.Close(); err != nil {
		logger.Error("Error closing Redis consumer: %v", err)
	}
}

func runMainLoop(w *writer.Writer, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start writer: %v", err)
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal %v, initiating graceful shutdown", sig)

	// Stop waits for the in-flight batch attempt, bounded by the
	// configured shutdown timeout
	w.Stop()
	cancel()

	logger.Info("Writer stopped")
	return 0
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
