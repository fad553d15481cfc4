package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestQueryRowsTypes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rows, err := db.QueryRows(ctx, `SELECT 1, 2.5, 'text', NULL`)
	if err != nil {
		t.Fatalf("QueryRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if v, ok := row[0].(int64); !ok || v != 1 {
		t.Errorf("col 0 = %v (%T), want int64 1", row[0], row[0])
	}
	if v, ok := row[1].(float64); !ok || v != 2.5 {
		t.Errorf("col 1 = %v (%T), want float64 2.5", row[1], row[1])
	}
	if v, ok := row[2].(string); !ok || v != "text" {
		t.Errorf("col 2 = %v (%T), want string text", row[2], row[2])
	}
	if row[3] != nil {
		t.Errorf("col 3 = %v, want nil", row[3])
	}
}

func TestQueryRowsEmpty(t *testing.T) {
	db := testDB(t)

	rows, err := db.QueryRows(context.Background(), `SELECT id FROM devices`)
	if err != nil {
		t.Fatalf("QueryRows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestQueryRowsParams(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	db.AddEmail("a", "x@example.com", 100)
	db.AddEmail("b", "y@example.com", 200)

	rows, err := db.QueryRows(ctx, `SELECT subject FROM emails WHERE date_received > ?`, 150)
	if err != nil {
		t.Fatalf("QueryRows: %v", err)
	}
	if len(rows) != 1 || rows[0][0].(string) != "b" {
		t.Errorf("rows = %v, want [[b]]", rows)
	}
}

// Error paths exercised against a mocked driver so we can force failures
// the real store won't produce on demand.

func TestQueryRowsExecError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()
	db := &DB{DB: mockDB, Path: "mock"}

	mock.ExpectQuery("SELECT broken").WillReturnError(context.DeadlineExceeded)

	_, err = db.QueryRows(context.Background(), "SELECT broken")
	if err == nil {
		t.Fatal("expected error from failing query")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestExecWriteError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()
	db := &DB{DB: mockDB, Path: "mock"}

	mock.ExpectExec("UPDATE devices").WillReturnError(context.DeadlineExceeded)

	err = db.ExecWrite(context.Background(), "UPDATE devices SET online = ?", true)
	if err == nil {
		t.Fatal("expected error from failing exec")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestQueryRowsCopiesBytes(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()
	db := &DB{DB: mockDB, Path: "mock"}

	mockRows := sqlmock.NewRows([]string{"blob"}).
		AddRow([]byte("one")).
		AddRow([]byte("two"))
	mock.ExpectQuery("SELECT blob").WillReturnRows(mockRows)

	rows, err := db.QueryRows(context.Background(), "SELECT blob FROM things")
	if err != nil {
		t.Fatalf("QueryRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if string(rows[0][0].([]byte)) != "one" || string(rows[1][0].([]byte)) != "two" {
		t.Errorf("rows = %q, %q", rows[0][0], rows[1][0])
	}
}
