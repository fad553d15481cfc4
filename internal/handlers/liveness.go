package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/store"
)

// defaultOfflineThreshold is how long a device may go without a
// location fix before it counts as offline.
const defaultOfflineThreshold = 60 * time.Second

// Liveness marks devices online or offline from their most recent
// location fix. Rows are (device_id, last_fix_millis), one per device.
//
// State is the last online value written per device, so a device that
// stays offline is written and notified exactly once per transition.
type Liveness struct {
	Threshold time.Duration

	now func() time.Time
}

// NewLiveness builds the handler; params may set
// offline_threshold_seconds.
func NewLiveness(params map[string]any) *Liveness {
	threshold := defaultOfflineThreshold
	if secs := paramFloat(params, "offline_threshold_seconds", 0); secs > 0 {
		threshold = time.Duration(secs * float64(time.Second))
	}
	return &Liveness{Threshold: threshold, now: time.Now}
}

func (h *Liveness) Name() string { return "connection" }

func (h *Liveness) Columns() int { return 2 }

func (h *Liveness) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	known, _ := hc.State.(map[string]bool)
	next := make(map[string]bool, len(rows))
	for id, online := range known {
		next[id] = online
	}

	now := h.now().UnixMilli()
	for _, row := range rows {
		id := asString(row[0])
		lastFix, ok := asInt64(row[1])
		if id == "" || !ok {
			continue
		}

		online := now-lastFix <= h.Threshold.Milliseconds()
		prev, seen := next[id]
		if !seen {
			// First observation this process: defer to the stored value
			// so a restart doesn't rewrite or re-notify unchanged devices.
			if stored := h.storedOnline(ctx, hc, id); stored != nil {
				prev, seen = *stored, true
			}
		}

		if !seen || prev != online {
			hc.Exec(ctx, `UPDATE devices SET online = ? WHERE id = ?`, online, id)
			if !online {
				hc.Notify(ctx, fmt.Sprintf("Device %s is offline", id), "", 10)
			}
		}
		next[id] = online
	}
	return next, nil
}

func (h *Liveness) storedOnline(ctx context.Context, hc *engine.Context, id string) *bool {
	rows, err := hc.Query(ctx, `SELECT online FROM devices WHERE id = ?`, id)
	if err != nil || len(rows) == 0 || rows[0][0] == nil {
		return nil
	}
	v, ok := asInt64(rows[0][0])
	if !ok {
		return nil
	}
	online := v != 0
	return &online
}
