// Package app builds stores and services from configuration. It is shared
// by the server and CLI binaries.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/Galen-Chu/spiritual-g-code/internal/config"
	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage/clickhouse"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage/memory"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage/migrations"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage/postgres"
)

// OpenStores creates the stores selected by cfg. The returned cleanup
// closes every connection and is safe to call once.
func OpenStores(ctx context.Context, cfg config.StorageConfig, logger *log.Logger) (*storage.Stores, func(), error) {
	if cfg.UseMemory {
		logger.Println("Using in-memory storage")
		return memory.NewStores(), func() {}, nil
	}

	logger.Println("Connecting to PostgreSQL...")
	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN, postgres.PoolOptions{
		MaxConns: cfg.MaxConns,
		Tracer:   observability.NewQueryTracer(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Migrate {
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Printf("PostgreSQL migrations applied: %d", len(applied))
	}

	stores := postgres.NewStores(pool)
	if cfg.ClickhouseDSN == "" {
		logger.Println("ClickHouse not configured, score history served from daily readings")
		return stores, pool.Close, nil
	}

	logger.Println("Connecting to ClickHouse...")
	var conn *clickhouse.Conn
	if cfg.Migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	} else {
		conn, err = clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	stores.ScoreHistory = clickhouse.NewScoreHistoryStore(conn)

	cleanup := func() {
		if err := conn.Close(); err != nil {
			logger.Printf("Close clickhouse: %v", err)
		}
		pool.Close()
	}
	return stores, cleanup, nil
}

// NewService builds the Daily G-Code service for cfg on top of stores.
func NewService(cfg config.Config, stores *storage.Stores, logger *log.Logger) (*gcode.Service, error) {
	calc, err := cfg.Calculator()
	if err != nil {
		return nil, fmt.Errorf("build calculator: %w", err)
	}
	return gcode.NewService(gcode.ServiceOptions{
		Calculator: calc,
		Stores:     stores,
		CacheSize:  cfg.Cache.NatalSize,
		Workers:    cfg.Forecast.Workers,
		Logger:     logger,
	})
}
