package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "devices: derived per-device state",
		SQL: `
CREATE TABLE devices (
    id                 TEXT PRIMARY KEY,
    name               TEXT,
    online             INTEGER,
    last_movement      INTEGER,
    screen_up          INTEGER,
    speed              REAL,
    location           TEXT,
    last_known_address TEXT,
    updated_at         INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
);

CREATE TRIGGER devices_touch AFTER UPDATE ON devices
BEGIN
    UPDATE devices SET updated_at = strftime('%s', 'now') * 1000 WHERE id = NEW.id;
END;
`,
	},
	{
		Version:     2,
		Description: "gps_data: raw location fixes",
		SQL: `
CREATE TABLE gps_data (
    id         INTEGER PRIMARY KEY,
    device_id  TEXT NOT NULL,
    latitude   REAL NOT NULL,
    longitude  REAL NOT NULL,
    time       INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
);

CREATE INDEX idx_gps_device     ON gps_data(device_id);
CREATE INDEX idx_gps_created_at ON gps_data(created_at DESC);
`,
	},
	{
		Version:     3,
		Description: "sensor_data: raw motion/orientation readings",
		SQL: `
CREATE TABLE sensor_data (
    id          INTEGER PRIMARY KEY,
    device_id   TEXT NOT NULL,
    sensor_type TEXT NOT NULL,
    x           REAL,
    y           REAL,
    z           REAL,
    created_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
);

CREATE INDEX idx_sensor_type_created ON sensor_data(sensor_type, created_at DESC);
`,
	},
	{
		Version:     4,
		Description: "emails: collected message headers",
		SQL: `
CREATE TABLE emails (
    id            INTEGER PRIMARY KEY,
    subject       TEXT,
    sender        TEXT,
    date_received INTEGER NOT NULL
);

CREATE INDEX idx_emails_received ON emails(date_received DESC);
`,
	},
	{
		Version:     5,
		Description: "device_status_log: periodic device state snapshots",
		SQL: `
CREATE TABLE device_status_log (
    id            INTEGER PRIMARY KEY,
    device_id     TEXT NOT NULL,
    timestamp     INTEGER NOT NULL,
    last_movement INTEGER,
    screen_up     INTEGER,
    speed         REAL,
    online        INTEGER,
    location      TEXT
);

CREATE INDEX idx_status_log_device ON device_status_log(device_id, timestamp DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
