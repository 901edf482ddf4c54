package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Prasalaitis/LoanEligibility/internal/config"
	"github.com/Prasalaitis/LoanEligibility/internal/dbsync"
	"github.com/Prasalaitis/LoanEligibility/internal/kaggle"
	"github.com/Prasalaitis/LoanEligibility/internal/logging"
	"github.com/Prasalaitis/LoanEligibility/internal/pipeline"
)

// datasetName is the Kaggle dataset this process syncs.
const datasetName = "vikasukani/loan-eligible-dataset"

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"kaggle_user", cfg.Kaggle.Username,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Name,
		"fetch_attempts", cfg.Fetch.Attempts,
		"fetch_delay", cfg.Fetch.Delay,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database", "name", cfg.Database.Name)

	client := kaggle.NewClient(cfg.Kaggle.BaseURL, cfg.Kaggle.Key, cfg.Fetch.Timeout,
		logging.WithFields("component", "kaggle"))
	syncer := dbsync.New(pool, logging.WithFields("component", "dbsync"))
	run := pipeline.New(client, syncer, cfg.Fetch, slog.Default())

	if err := run.Run(ctx, datasetName); err != nil {
		slog.Error("dataset sync failed", "error", err)
		os.Exit(1)
	}
}
