package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"solana-pop/internal/config"
	"solana-pop/internal/storage"
	chstore "solana-pop/internal/storage/clickhouse"
	"solana-pop/internal/storage/couchdb"
	"solana-pop/internal/storage/memory"
	"solana-pop/internal/storage/migrations"
	pgstore "solana-pop/internal/storage/postgres"
)

// openStorage connects the configured record store, preparing its schema first.
// The result is instrumented with query metrics.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (storage.Storage, error) {
	var store storage.Storage

	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage, records are lost on restart")
		store = memory.NewStore()

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.WithField("applied", applied).Info("connected to postgres")
		store = pgstore.NewStore(pool)

	case config.BackendCouchDB:
		client, err := couchdb.NewClient(ctx, cfg.CouchDBURL)
		if err != nil {
			return nil, fmt.Errorf("connect to couchdb: %w", err)
		}
		if err := couchdb.EnsureDatabases(ctx, client, cfg.CouchDBPrefix); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("prepare couchdb: %w", err)
		}
		logger.WithField("prefix", cfg.CouchDBPrefix).Info("connected to couchdb")
		store = couchdb.NewStore(client, cfg.CouchDBPrefix)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	return storage.NewInstrumented(store, cfg.Backend), nil
}

// openActivity connects the claim analytics log. Without a ClickHouse DSN the
// log is kept in memory. The returned func releases the connection.
func openActivity(ctx context.Context, cfg config.AnalyticsConfig, logger logrus.FieldLogger) (storage.ClaimActivityStore, func(), error) {
	if cfg.ClickhouseDSN == "" {
		return memory.NewClaimActivityStore(), func() {}, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info("connected to clickhouse")

	cleanup := func() {
		if err := conn.Close(); err != nil {
			logger.WithError(err).Warn("close clickhouse")
		}
	}
	return chstore.NewClaimActivityStore(conn), cleanup, nil
}
