// Package main runs the G-Code service: the REST API, the dashboard
// websocket and the daily batch and cleanup schedulers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Galen-Chu/spiritual-g-code/internal/api"
	"github.com/Galen-Chu/spiritual-g-code/internal/app"
	"github.com/Galen-Chu/spiritual-g-code/internal/config"
	"github.com/Galen-Chu/spiritual-g-code/internal/scheduler"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	cfgFile := flag.String("config", "", "Config file (default: ./.gcode.yaml or ~/.gcode.yaml)")
	addr := flag.String("addr", "", "HTTP listen address (overrides http.addr)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides storage.postgres_dsn)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides storage.clickhouse_dsn)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	noJobs := flag.Bool("no-jobs", false, "Disable the daily batch and cleanup schedulers")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	v := viper.New()
	if err := config.Init(v, *cfgFile); err != nil {
		logger.Fatalf("Failed to read config: %v", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Printf("Using config file: %s", used)
	}

	// Explicit flags win over file and env
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			v.Set("http.addr", *addr)
		case "postgres-dsn":
			v.Set("storage.postgres_dsn", *postgresDSN)
			v.Set("storage.use_memory", false)
		case "clickhouse-dsn":
			v.Set("storage.clickhouse_dsn", *clickhouseDSN)
		case "use-memory":
			v.Set("storage.use_memory", *useMemory)
		case "no-jobs":
			v.Set("jobs.enabled", !*noJobs)
		}
	})

	cfg, err := config.Load(v)
	if err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	logger.Printf("Engine: %s, bodies: %s, scoring: %s", cfg.Engine, cfg.Bodies, cfg.Scoring)

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := app.OpenStores(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	svc, err := app.NewService(cfg, stores, logger)
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}

	srv, err := api.NewServer(api.Options{
		Service:        svc,
		Addr:           cfg.HTTP.Addr,
		EnableCORS:     cfg.HTTP.EnableCORS,
		Debug:          cfg.HTTP.Debug,
		DisableMetrics: !cfg.Metrics.Enabled,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create API server: %v", err)
	}

	var sched *scheduler.Scheduler
	if cfg.Jobs.Enabled {
		sched, err = scheduler.New(scheduler.Options{
			Jobs:            svc,
			Progress:        stores.JobProgress,
			DailyInterval:   cfg.Jobs.DailyInterval,
			CleanupInterval: cfg.Jobs.CleanupInterval,
			RetentionDays:   cfg.Jobs.RetentionDays,
			Logger:          log.New(os.Stdout, "[scheduler] ", log.LstdFlags|log.Lshortfile),
		})
		if err != nil {
			logger.Fatalf("Failed to create scheduler: %v", err)
		}
	} else {
		logger.Println("Schedulers disabled")
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, srv, sched)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// run starts the API server and, when configured, the scheduler. It waits
// for both to stop; the first failure cancels the other.
func run(ctx context.Context, srv *api.Server, sched *scheduler.Scheduler) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if sched != nil {
		g.Go(func() error {
			if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
