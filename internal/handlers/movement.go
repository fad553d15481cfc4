package handlers

import (
	"context"
	"math"
	"time"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// defaultMovementThreshold is the linear-acceleration magnitude above
// which the phone counts as moving.
const defaultMovementThreshold = 2.0

// Movement detects motion from the latest accelerometer reading and
// stamps devices.last_movement. Rows share the sensor_data shape
// (sensor_type, x, y, z, created_at, device_id).
type Movement struct {
	Threshold float64

	now func() time.Time
}

// NewMovement builds the handler; params may set threshold.
func NewMovement(params map[string]any) *Movement {
	return &Movement{
		Threshold: paramFloat(params, "threshold", defaultMovementThreshold),
		now:       time.Now,
	}
}

func (h *Movement) Name() string { return "movement" }

func (h *Movement) Columns() int { return 6 }

func (h *Movement) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	if len(rows) == 0 {
		return hc.State, nil
	}
	row := rows[0]
	if asString(row[0]) != "accelerometer" {
		return hc.State, nil
	}

	x, okX := asFloat(row[1])
	y, okY := asFloat(row[2])
	if !okX || !okY {
		return hc.State, nil
	}

	moving := math.Hypot(x, y) > h.Threshold
	if moving {
		deviceID := asString(row[5])
		hc.Exec(ctx, `UPDATE devices SET last_movement = ? WHERE id = ?`, h.now().UnixMilli(), deviceID)
		hc.Notify(ctx, "Phone Moving", "The phone is moving", 10)
	}
	return moving, nil
}
