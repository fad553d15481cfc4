package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Device is the derived state row for one tracked device. Nullable
// columns stay pointers: nil means "never observed".
type Device struct {
	ID               string
	Name             string
	Online           *bool
	LastMovement     *int64 // unix millis
	ScreenUp         *bool
	Speed            *float64
	Location         string
	LastKnownAddress string
	UpdatedAt        int64
}

// CreateDevice registers a device row with no derived state yet.
func (db *DB) CreateDevice(id, name string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO devices (id, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, now)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

// GetDevice returns a device by id, or nil if it does not exist.
func (db *DB) GetDevice(id string) (*Device, error) {
	var d Device
	var online, screenUp sql.NullBool
	var lastMovement sql.NullInt64
	var speed sql.NullFloat64
	var name, location, address sql.NullString

	err := db.QueryRow(`
		SELECT id, name, online, last_movement, screen_up, speed, location, last_known_address, updated_at
		FROM devices WHERE id = ?
	`, id).Scan(&d.ID, &name, &online, &lastMovement, &screenUp, &speed, &location, &address, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	d.Name = name.String
	d.Location = location.String
	d.LastKnownAddress = address.String
	if online.Valid {
		d.Online = &online.Bool
	}
	if screenUp.Valid {
		d.ScreenUp = &screenUp.Bool
	}
	if lastMovement.Valid {
		d.LastMovement = &lastMovement.Int64
	}
	if speed.Valid {
		d.Speed = &speed.Float64
	}
	return &d, nil
}

// AddGPSFix records a raw location fix for a device.
func (db *DB) AddGPSFix(deviceID string, lat, lon float64, at int64) error {
	_, err := db.Exec(`
		INSERT INTO gps_data (device_id, latitude, longitude, time, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, deviceID, lat, lon, at, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add gps fix: %w", err)
	}
	return nil
}

// AddSensorReading records a raw 3-axis sensor reading for a device.
func (db *DB) AddSensorReading(deviceID, sensorType string, x, y, z float64) error {
	_, err := db.Exec(`
		INSERT INTO sensor_data (device_id, sensor_type, x, y, z, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, deviceID, sensorType, x, y, z, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add sensor reading: %w", err)
	}
	return nil
}

// AddEmail records a collected message header.
func (db *DB) AddEmail(subject, sender string, receivedAt int64) error {
	_, err := db.Exec(`
		INSERT INTO emails (subject, sender, date_received) VALUES (?, ?, ?)
	`, subject, sender, receivedAt)
	if err != nil {
		return fmt.Errorf("add email: %w", err)
	}
	return nil
}

// StatusLogCount returns how many snapshots have been archived for a device.
func (db *DB) StatusLogCount(deviceID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM device_status_log WHERE device_id = ?
	`, deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count status log: %w", err)
	}
	return count, nil
}
