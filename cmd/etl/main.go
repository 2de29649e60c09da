// Package main provides the vault analytics ETL entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vault-analytics/internal/config"
	"github.com/vault-analytics/internal/logging"
	"github.com/vault-analytics/internal/storage"
	"github.com/vault-analytics/internal/venue"
	"github.com/vault-analytics/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.GetGlobalLogger()
	logger.Info("Vault analytics ETL starting")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer postgres.Close()

	// The document cache is optional: without Redis every run fetches fresh.
	var cache worker.DocumentCache
	if cfg.Database.Redis.Enabled {
		redis, err := storage.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			logger.Warnf("Failed to connect to Redis, continuing without document cache: %v", err)
		} else {
			defer redis.Close()
			cache = storage.NewDocumentCache(redis, cfg.Database.Redis.DocumentTTL)
			logger.Info("Document cache enabled")
		}
	}

	etl, err := worker.NewETLWorker(&worker.ETLWorkerConfig{
		Venue:      venue.NewClient(&cfg.Venue),
		Store:      storage.NewVaultRepository(postgres),
		Cache:      cache,
		BatchSize:  cfg.ETL.BatchSize,
		BatchPause: cfg.ETL.BatchPause,
	})
	if err != nil {
		logger.Fatalf("Failed to create ETL worker: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	stats, err := etl.Run(ctx)
	if err != nil {
		logger.WithError(err).Errorf("ETL run aborted after %d upserts", stats.Upserted)
		os.Exit(1)
	}

	logger.Infof("ETL run finished: %d vaults discovered, %d upserted, %d skipped, %d degraded",
		stats.Discovered, stats.Upserted, stats.Skipped, stats.Degraded)
}
