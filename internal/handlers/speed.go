package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/vigilhq/vigil/internal/engine"
	"github.com/vigilhq/vigil/internal/geo"
	"github.com/vigilhq/vigil/internal/store"
)

// jitterFloorMPH clamps GPS noise to a standstill.
const jitterFloorMPH = 0.1

// Speed derives ground speed from the two extreme points of the recent
// location fixes, writes it with a point geometry to the device row,
// and independently reverse-geocodes the newest fix. Rows are
// (latitude, longitude, time_millis, device_id).
type Speed struct {
	Geocoder geo.Geocoder
}

func (h *Speed) Name() string { return "gps" }

func (h *Speed) Columns() int { return 4 }

func (h *Speed) Handle(ctx context.Context, hc *engine.Context, rows []store.Row) (any, error) {
	if len(rows) < 2 {
		return hc.State, nil
	}

	oldest, newest, ok := extremes(rows)
	if !ok {
		return hc.State, fmt.Errorf("gps rows missing timestamps")
	}

	oLat, _ := asFloat(oldest[0])
	oLon, _ := asFloat(oldest[1])
	nLat, _ := asFloat(newest[0])
	nLon, _ := asFloat(newest[1])
	deviceID := asString(newest[3])

	oTs, _ := asInt64(oldest[2])
	nTs, _ := asInt64(newest[2])
	hours := float64(nTs-oTs) / 1000 / 3600

	var state any = hc.State
	if hours > 0 {
		speed := geo.Distance(oLat, oLon, nLat, nLon) / hours
		if speed < jitterFloorMPH {
			speed = 0
		}
		hc.Exec(ctx, `UPDATE devices SET speed = ?, location = ? WHERE id = ?`,
			speed, point(nLon, nLat), deviceID)
		state = speed
	}

	// Geocoding is independent of the speed write: one failing must
	// not block the other.
	if h.Geocoder != nil {
		addr, err := h.Geocoder.Reverse(ctx, nLat, nLon)
		if err != nil {
			log.Printf("%s: reverse geocode: %v", hc.Label, err)
		} else if payload, err := json.Marshal(addr); err == nil {
			hc.Exec(ctx, `UPDATE devices SET last_known_address = ? WHERE id = ?`,
				string(payload), deviceID)
		}
	}

	return state, nil
}

// extremes finds the oldest and newest rows by the time column,
// regardless of result ordering.
func extremes(rows []store.Row) (oldest, newest store.Row, ok bool) {
	for _, row := range rows {
		ts, tsOK := asInt64(row[2])
		if !tsOK {
			continue
		}
		if oldest == nil {
			oldest, newest = row, row
			continue
		}
		if oTs, _ := asInt64(oldest[2]); ts < oTs {
			oldest = row
		}
		if nTs, _ := asInt64(newest[2]); ts > nTs {
			newest = row
		}
	}
	return oldest, newest, oldest != nil
}

func point(lon, lat float64) string {
	return fmt.Sprintf("POINT(%s %s)", coord(lon), coord(lat))
}

// coord formats like a decimal literal: whole numbers keep a ".0" so
// stored geometries read POINT(-74.0 40.001), not POINT(-74 40.001).
func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
