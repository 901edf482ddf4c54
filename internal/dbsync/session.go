// Package dbsync replaces and repopulates destination tables from the
// in-memory tables of a run.
package dbsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Store opens transactional sessions.
// Satisfied by *pgxpool.Pool.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Syncer writes in-memory tables to the destination database.
type Syncer struct {
	db     Store
	logger *slog.Logger
}

// New creates a Syncer over the given store.
func New(db Store, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{db: db, logger: logger}
}

// withSession runs fn inside a scoped transaction: commit on success,
// rollback on any error, released unconditionally on exit.
func (s *Syncer) withSession(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if err := fn(tx); err != nil {
		s.logger.Error("database session rolled back", "error", err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}
