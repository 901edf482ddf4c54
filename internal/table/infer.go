package table

import (
	"strconv"
	"strings"
)

// inferColumns builds typed columns from a header row and the data rows
// beneath it. A column's kind is the narrowest that fits every non-empty
// cell: integer, widened to float when fractional values appear, boolean
// for true/false literals, text for anything mixed. A column with no
// non-empty cells stays text.
func inferColumns(header []string, rows [][]string) []Column {
	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Kind: inferKind(rows, i)}
	}
	return columns
}

func inferKind(rows [][]string, col int) Kind {
	seen := false
	canInt, canFloat, canBool := true, true, true

	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		seen = true

		if canInt && !isInteger(cell) {
			canInt = false
		}
		if canFloat && !isFloat(cell) {
			canFloat = false
		}
		if canBool && !isBoolLiteral(cell) {
			canBool = false
		}
		if !canInt && !canFloat && !canBool {
			return KindText
		}
	}

	switch {
	case !seen:
		return KindText
	case canBool:
		return KindBool
	case canInt:
		return KindInteger
	case canFloat:
		return KindFloat
	default:
		return KindText
	}
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// isBoolLiteral accepts only word literals; "1" and "0" stay numeric.
func isBoolLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	default:
		return false
	}
}
