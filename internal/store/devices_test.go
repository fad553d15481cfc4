package store

import (
	"context"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGetDevice(t *testing.T) {
	db := testDB(t)

	if err := db.CreateDevice("1", "phone"); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}

	d, err := db.GetDevice("1")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if d == nil {
		t.Fatal("device not found")
	}
	if d.Name != "phone" {
		t.Errorf("Name = %q, want phone", d.Name)
	}
	if d.Online != nil || d.ScreenUp != nil || d.Speed != nil || d.LastMovement != nil {
		t.Errorf("fresh device has derived state: %+v", d)
	}
}

func TestGetDeviceMissing(t *testing.T) {
	db := testDB(t)

	d, err := db.GetDevice("nope")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if d != nil {
		t.Errorf("got %+v for missing device, want nil", d)
	}
}

func TestCreateDeviceIdempotent(t *testing.T) {
	db := testDB(t)

	if err := db.CreateDevice("1", "phone"); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if err := db.CreateDevice("1", "renamed"); err != nil {
		t.Fatalf("CreateDevice again: %v", err)
	}

	d, _ := db.GetDevice("1")
	if d.Name != "phone" {
		t.Errorf("Name = %q, want original name kept", d.Name)
	}
}

func TestDeviceStateRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.CreateDevice("1", "phone"); err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	err := db.ExecWrite(ctx, `
		UPDATE devices SET online = ?, screen_up = ?, speed = ?, location = ? WHERE id = ?
	`, true, false, 3.5, "POINT(-74.0 40.001)", "1")
	if err != nil {
		t.Fatalf("ExecWrite: %v", err)
	}

	d, err := db.GetDevice("1")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if d.Online == nil || !*d.Online {
		t.Error("Online not true")
	}
	if d.ScreenUp == nil || *d.ScreenUp {
		t.Error("ScreenUp not false")
	}
	if d.Speed == nil || *d.Speed != 3.5 {
		t.Errorf("Speed = %v, want 3.5", d.Speed)
	}
	if d.Location != "POINT(-74.0 40.001)" {
		t.Errorf("Location = %q", d.Location)
	}
}

func TestTelemetryInserts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.AddGPSFix("1", 40.0, -74.0, 1000); err != nil {
		t.Fatalf("AddGPSFix: %v", err)
	}
	if err := db.AddSensorReading("1", "gravity", 0.1, 0.0, 9.8); err != nil {
		t.Fatalf("AddSensorReading: %v", err)
	}
	if err := db.AddEmail("hello", "alice@example.com", 2000); err != nil {
		t.Fatalf("AddEmail: %v", err)
	}

	rows, err := db.QueryRows(ctx, `SELECT latitude, longitude, time, device_id FROM gps_data`)
	if err != nil {
		t.Fatalf("QueryRows gps: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d gps rows, want 1", len(rows))
	}
	if rows[0][0].(float64) != 40.0 || rows[0][3].(string) != "1" {
		t.Errorf("gps row = %v", rows[0])
	}
}
