package handlers

import (
	"context"
	"time"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// Archiver copies each device row into device_status_log, building a
// history of derived state. Rows are (id, last_movement, screen_up,
// speed, online, location).
type Archiver struct{}

func (h *Archiver) Name() string { return "archiver" }

func (h *Archiver) Columns() int { return 6 }

func (h *Archiver) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	now := time.Now().UnixMilli()
	for _, row := range rows {
		hc.Exec(ctx, `
			INSERT INTO device_status_log (device_id, timestamp, last_movement, screen_up, speed, online, location)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, asString(row[0]), now, row[1], row[2], row[3], row[4], row[5])
	}
	return nil, nil
}
