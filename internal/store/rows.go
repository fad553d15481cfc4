package store

import (
	"context"
	"fmt"
)

// Row is one result row as returned by the SQLite driver: values are
// int64, float64, string, []byte, or nil.
type Row []any

// QueryRows executes a read query and returns every result row. The
// column set is whatever the query selects; callers own interpretation.
func (db *DB) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make(Row, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		// []byte buffers are reused by the driver between Next calls
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

// ExecWrite executes a mutation. Rows-affected is not reported; handlers
// treat writes as best-effort state refresh.
func (db *DB) ExecWrite(ctx context.Context, query string, args ...any) error {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}
