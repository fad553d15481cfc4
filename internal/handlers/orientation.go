package handlers

import (
	"context"
	"math"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// Orientation infers whether the phone lies screen up from its latest
// gravity reading. Rows are (sensor_type, x, y, z, created_at,
// device_id); only the newest row is considered.
//
// State is the last classification (*bool, nil when indeterminate);
// the device row is written only when the classification changes.
type Orientation struct{}

func (h *Orientation) Name() string { return "screen_up" }

func (h *Orientation) Columns() int { return 6 }

func (h *Orientation) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	if len(rows) == 0 {
		return hc.State, nil
	}
	row := rows[0]
	if asString(row[0]) != "gravity" {
		return hc.State, nil
	}

	up := classify(row[1], row[2], row[3])
	prev, _ := hc.State.(*bool)
	if !boolPtrEqual(prev, up) {
		deviceID := asString(row[5])
		hc.Exec(ctx, `UPDATE devices SET screen_up = ? WHERE id = ?`, boolPtrValue(up), deviceID)
	}
	return up, nil
}

// classify returns true for screen up, false for screen down, nil when
// the reading fits neither envelope.
func classify(xv, yv, zv any) *bool {
	x, okX := asFloat(xv)
	y, okY := asFloat(yv)
	z, okZ := asFloat(zv)
	if !okX || !okY || !okZ {
		return nil
	}

	if math.Abs(z-9.8) < 0.5 && math.Abs(x) < 2.1 && math.Abs(y) < 0.5 {
		up := true
		return &up
	}
	if math.Abs(z+9.8) < 0.5 && math.Abs(x) < 2.1 && math.Abs(y) < 0.5 {
		up := false
		return &up
	}
	return nil
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// boolPtrValue unwraps for SQL binding: nil stays NULL.
func boolPtrValue(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
