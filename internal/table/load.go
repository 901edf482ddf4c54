package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// FileKind classifies an archive member by its filename suffix.
// The single dispatch point for parser selection.
type FileKind int

const (
	FileUnknown FileKind = iota
	FileDelimited
	FileSpreadsheet
)

// KindFor returns the FileKind for a filename.
func KindFor(filename string) FileKind {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return FileDelimited
	case ".xlsx":
		return FileSpreadsheet
	default:
		return FileUnknown
	}
}

// Load parses each extracted file into a named Table. The table name is the
// filename with its extension stripped. Files with an unrecognized suffix
// are silently skipped, mirroring the extractor's suffix allow-list; this is
// a deliberate filter, not an error (design decision to confirm with
// stakeholders). A parse failure on any file aborts the whole load.
func Load(files map[string][]byte) (map[string]Table, error) {
	// Sorted order keeps logs and failure points deterministic.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make(map[string]Table, len(files))
	for _, name := range names {
		var records [][]string
		var err error

		switch KindFor(name) {
		case FileDelimited:
			records, err = parseCSV(files[name])
		case FileSpreadsheet:
			records, err = parseXLSX(files[name])
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		tbl, err := build(name, records)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}

		rows, cols := tbl.Shape()
		slog.Info("table loaded", "table", tbl.Name, "rows", rows, "cols", cols)
		tables[tbl.Name] = tbl
	}

	return tables, nil
}

// build turns raw records into a Table: first row is the header, the rest
// are data rows padded or truncated to the header width.
func build(filename string, records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, fmt.Errorf("file is empty")
	}

	header := records[0]
	if len(header) == 0 {
		return Table{}, fmt.Errorf("header row is empty")
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(header))
		copy(row, record)
		rows = append(rows, row)
	}

	name := strings.TrimSuffix(filename, path.Ext(filename))
	return Table{
		Name:    name,
		Columns: inferColumns(header, rows),
		Rows:    rows,
	}, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	// First sheet only, matching the original single-sheet datasets.
	return f.GetRows(sheets[0])
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune
// so the csv reader never chokes on mixed encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
