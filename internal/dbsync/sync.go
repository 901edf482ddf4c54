package dbsync

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Prasalaitis/LoanEligibility/internal/table"
)

// CreateTables replaces each destination table with an empty table matching
// the in-memory schema (drop-and-recreate). All tables share one session;
// the first failure aborts the remaining tables and rolls the session back.
func (s *Syncer) CreateTables(ctx context.Context, tables map[string]table.Table) error {
	return s.withSession(ctx, func(tx pgx.Tx) error {
		for _, name := range sortedNames(tables) {
			tbl := tables[name]
			s.logger.Info("creating table", "table", name)

			ident := pgx.Identifier{name}.Sanitize()
			if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
				return fmt.Errorf("drop table %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, createStatement(ident, tbl)); err != nil {
				return fmt.Errorf("create table %s: %w", name, err)
			}
		}
		return nil
	})
}

// InsertData appends every in-memory row to the (already created)
// destination tables using the COPY protocol. Runs in its own session,
// deliberately separate from CreateTables: a failure here leaves the empty
// tables from a successful create in place.
func (s *Syncer) InsertData(ctx context.Context, tables map[string]table.Table) error {
	return s.withSession(ctx, func(tx pgx.Tx) error {
		for _, name := range sortedNames(tables) {
			tbl := tables[name]

			rows, err := copyRows(tbl)
			if err != nil {
				return fmt.Errorf("convert rows for %s: %w", name, err)
			}

			copied, err := tx.CopyFrom(ctx, pgx.Identifier{name}, tbl.ColumnNames(), pgx.CopyFromRows(rows))
			if err != nil {
				return fmt.Errorf("insert into %s: %w", name, err)
			}

			s.logger.Info("data inserted", "table", name, "rows", copied)
		}
		return nil
	})
}

// createStatement builds the CREATE TABLE DDL for a table's columns.
func createStatement(ident string, tbl table.Table) string {
	defs := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		defs[i] = pgx.Identifier{col.Name}.Sanitize() + " " + sqlType(col.Kind)
	}
	return "CREATE TABLE " + ident + " (" + strings.Join(defs, ", ") + ")"
}

// sqlType maps a column kind to its PostgreSQL type.
func sqlType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindFloat:
		return "DOUBLE PRECISION"
	case table.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// copyRows converts a table's string cells into typed values for COPY.
func copyRows(tbl table.Table) ([][]any, error) {
	nrows, ncols := tbl.Shape()
	rows := make([][]any, nrows)
	for r := 0; r < nrows; r++ {
		row := make([]any, ncols)
		for c := 0; c < ncols; c++ {
			v, err := tbl.Value(r, c)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		rows[r] = row
	}
	return rows, nil
}

func sortedNames(tables map[string]table.Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
