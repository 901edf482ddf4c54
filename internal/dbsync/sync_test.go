package dbsync

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Prasalaitis/LoanEligibility/internal/table"
)

// fakeTx records the statements and COPY payloads of one session.
// The embedded pgx.Tx panics on anything the Syncer should never call.
type fakeTx struct {
	pgx.Tx

	execSQL    []string
	copied     map[string][][]any
	copiedCols map[string][]string

	failExecContaining string
	failCopyTable      string

	committed  bool
	rolledBack bool
}

func newFakeTx() *fakeTx {
	return &fakeTx{
		copied:     make(map[string][][]any),
		copiedCols: make(map[string][]string),
	}
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.failExecContaining != "" && strings.Contains(sql, tx.failExecContaining) {
		return pgconn.CommandTag{}, &pgconn.PgError{Message: "forced exec failure"}
	}
	tx.execSQL = append(tx.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) CopyFrom(ctx context.Context, ident pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	name := ident[len(ident)-1]
	if tx.failCopyTable == name {
		return 0, &pgconn.PgError{Message: "forced copy failure"}
	}

	var rows [][]any
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return int64(len(rows)), err
		}
		rows = append(rows, values)
	}
	tx.copied[name] = rows
	tx.copiedCols[name] = cols
	return int64(len(rows)), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

// fakeStore hands out one fakeTx per Begin call.
type fakeStore struct {
	sessions []*fakeTx
	template func() *fakeTx
}

func (s *fakeStore) Begin(ctx context.Context) (pgx.Tx, error) {
	tx := newFakeTx()
	if s.template != nil {
		tx = s.template()
	}
	s.sessions = append(s.sessions, tx)
	return tx, nil
}

func sampleTables() map[string]table.Table {
	return map[string]table.Table{
		"loan_data": {
			Name: "loan_data",
			Columns: []table.Column{
				{Name: "id", Kind: table.KindInteger},
				{Name: "amount", Kind: table.KindFloat},
				{Name: "approved", Kind: table.KindBool},
				{Name: "note", Kind: table.KindText},
			},
			Rows: [][]string{
				{"1", "2500.5", "true", "first"},
				{"2", "", "false", ""},
			},
		},
		"applicants": {
			Name: "applicants",
			Columns: []table.Column{
				{Name: "name", Kind: table.KindText},
			},
			Rows: [][]string{{"alice"}},
		},
	}
}

func TestCreateTables_DropThenCreate(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	if err := s.CreateTables(context.Background(), sampleTables()); err != nil {
		t.Fatalf("CreateTables() error = %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("CreateTables() opened %d sessions, want 1", len(store.sessions))
	}
	tx := store.sessions[0]
	if !tx.committed {
		t.Error("CreateTables() did not commit the session")
	}

	// Two tables, sorted: applicants before loan_data, each DROP then CREATE.
	want := []string{
		`DROP TABLE IF EXISTS "applicants"`,
		`CREATE TABLE "applicants" ("name" TEXT)`,
		`DROP TABLE IF EXISTS "loan_data"`,
		`CREATE TABLE "loan_data" ("id" BIGINT, "amount" DOUBLE PRECISION, "approved" BOOLEAN, "note" TEXT)`,
	}
	if len(tx.execSQL) != len(want) {
		t.Fatalf("executed %d statements, want %d: %v", len(tx.execSQL), len(want), tx.execSQL)
	}
	for i, sql := range want {
		if tx.execSQL[i] != sql {
			t.Errorf("statement %d = %q, want %q", i, tx.execSQL[i], sql)
		}
	}
}

func TestCreateTables_FailFastAndRollback(t *testing.T) {
	store := &fakeStore{template: func() *fakeTx {
		tx := newFakeTx()
		tx.failExecContaining = `CREATE TABLE "applicants"`
		return tx
	}}
	s := New(store, nil)

	if err := s.CreateTables(context.Background(), sampleTables()); err == nil {
		t.Fatal("CreateTables() expected error")
	}

	tx := store.sessions[0]
	if tx.committed {
		t.Error("CreateTables() committed a failed session")
	}
	if !tx.rolledBack {
		t.Error("CreateTables() did not roll back the failed session")
	}
	// applicants sorts first; loan_data must never be touched.
	for _, sql := range tx.execSQL {
		if strings.Contains(sql, "loan_data") {
			t.Errorf("CreateTables() continued past the failure: %q", sql)
		}
	}
}

func TestInsertData_CopiesTypedRows(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)

	if err := s.InsertData(context.Background(), sampleTables()); err != nil {
		t.Fatalf("InsertData() error = %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("InsertData() opened %d sessions, want 1", len(store.sessions))
	}
	tx := store.sessions[0]
	if !tx.committed {
		t.Error("InsertData() did not commit the session")
	}

	rows := tx.copied["loan_data"]
	if len(rows) != 2 {
		t.Fatalf("copied %d rows into loan_data, want 2", len(rows))
	}
	first := rows[0]
	if first[0] != int64(1) || first[1] != 2500.5 || first[2] != true || first[3] != "first" {
		t.Errorf("first row = %v, want typed values", first)
	}
	second := rows[1]
	if second[1] != nil || second[3] != nil {
		t.Errorf("second row = %v, want nil for empty cells", second)
	}

	cols := tx.copiedCols["loan_data"]
	if len(cols) != 4 || cols[0] != "id" || cols[3] != "note" {
		t.Errorf("copy columns = %v, want source column order", cols)
	}

	if len(tx.copied["applicants"]) != 1 {
		t.Errorf("copied %d rows into applicants, want 1", len(tx.copied["applicants"]))
	}
}

func TestInsertData_FailFastAndRollback(t *testing.T) {
	store := &fakeStore{template: func() *fakeTx {
		tx := newFakeTx()
		tx.failCopyTable = "applicants"
		return tx
	}}
	s := New(store, nil)

	if err := s.InsertData(context.Background(), sampleTables()); err == nil {
		t.Fatal("InsertData() expected error")
	}

	tx := store.sessions[0]
	if tx.committed {
		t.Error("InsertData() committed a failed session")
	}
	if !tx.rolledBack {
		t.Error("InsertData() did not roll back the failed session")
	}
	if _, ok := tx.copied["loan_data"]; ok {
		t.Error("InsertData() continued past the failure")
	}
}

func TestPhasesUseSeparateSessions(t *testing.T) {
	store := &fakeStore{}
	s := New(store, nil)
	tables := sampleTables()

	if err := s.CreateTables(context.Background(), tables); err != nil {
		t.Fatalf("CreateTables() error = %v", err)
	}
	if err := s.InsertData(context.Background(), tables); err != nil {
		t.Fatalf("InsertData() error = %v", err)
	}

	if len(store.sessions) != 2 {
		t.Errorf("ran %d sessions, want 2 (one per phase)", len(store.sessions))
	}
}
