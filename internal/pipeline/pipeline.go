// Package pipeline wires the download, extract, load, and sync steps into
// one sequential run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Prasalaitis/LoanEligibility/internal/archive"
	"github.com/Prasalaitis/LoanEligibility/internal/config"
	"github.com/Prasalaitis/LoanEligibility/internal/table"
)

// Fetcher downloads a dataset archive.
type Fetcher interface {
	FetchDataset(ctx context.Context, dataset string, attempts int, delay time.Duration) ([]byte, error)
}

// Syncer writes loaded tables to the destination database.
type Syncer interface {
	CreateTables(ctx context.Context, tables map[string]table.Table) error
	InsertData(ctx context.Context, tables map[string]table.Table) error
}

// Pipeline runs the full dataset sync.
type Pipeline struct {
	fetcher Fetcher
	syncer  Syncer
	fetch   config.FetchConfig
	logger  *slog.Logger
}

// New creates a Pipeline from its collaborators.
func New(fetcher Fetcher, syncer Syncer, fetch config.FetchConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fetcher: fetcher, syncer: syncer, fetch: fetch, logger: logger}
}

// Run executes fetch, extract, load, create, and insert in order,
// stopping at the first failure. Each run carries its own run_id in logs.
func (p *Pipeline) Run(ctx context.Context, dataset string) error {
	logger := p.logger.With("run_id", uuid.NewString(), "dataset", dataset)
	logger.Info("starting dataset sync")

	data, err := p.fetcher.FetchDataset(ctx, dataset, p.fetch.Attempts, p.fetch.Delay)
	if err != nil {
		return fmt.Errorf("fetch dataset: %w", err)
	}
	logger.Info("archive downloaded", "bytes", len(data))

	files, err := archive.Extract(data, p.fetch.Suffixes)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	logger.Info("archive extracted", "files", len(files))

	tables, err := table.Load(files)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}

	if err := p.syncer.CreateTables(ctx, tables); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if err := p.syncer.InsertData(ctx, tables); err != nil {
		return fmt.Errorf("insert data: %w", err)
	}

	logger.Info("dataset sync complete", "tables", len(tables))
	return nil
}
