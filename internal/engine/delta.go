package engine

import (
	"bytes"
	"time"

	"github.com/vigilhq/vigil/internal/store"
)

// Delta computes the row set to forward for one poll. In AllRows mode
// that is the current result, unconditionally. In DiffOnly mode it is
// every row of cur with no full-row-equal counterpart in prev; a nil
// prev (no previous snapshot) yields nothing.
//
// Equality is by value over every column, not by key: an UPDATE to an
// existing row surfaces the same way an INSERT does. Handlers depend on
// that.
func Delta(prev, cur []store.Row, mode TriggerMode) []store.Row {
	if mode == AllRows {
		return cur
	}
	if prev == nil {
		return nil
	}

	var out []store.Row
	for _, row := range cur {
		if !containsRow(prev, row) {
			out = append(out, row)
		}
	}
	return out
}

func containsRow(rows []store.Row, row store.Row) bool {
	for _, r := range rows {
		if rowEqual(r, row) {
			return true
		}
	}
	return false
}

func rowEqual(a, b store.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}
