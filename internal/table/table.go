// Package table holds the in-memory tabular model and the loaders that
// build it from extracted archive members.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred data type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindBool
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Column is a named, typed table column.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered collection of rows with named, typed columns.
// Cells are kept as their source strings; Value converts them on demand.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]string
}

// Shape returns the row and column counts.
func (t Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Value converts the cell at (row, col) according to the column kind.
// Empty cells convert to nil (SQL NULL).
func (t Table) Value(row, col int) (any, error) {
	cell := strings.TrimSpace(t.Rows[row][col])
	if cell == "" {
		return nil, nil
	}

	switch t.Columns[col].Kind {
	case KindInteger:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", t.Columns[col].Name, row, err)
		}
		return v, nil
	case KindFloat:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", t.Columns[col].Name, row, err)
		}
		return v, nil
	case KindBool:
		v, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", t.Columns[col].Name, row, err)
		}
		return v, nil
	default:
		return cell, nil
	}
}
