// Package config loads vigil configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all vigil configuration.
type Config struct {
	Server        ServerConfig         `yaml:"server"`
	Database      DatabaseConfig       `yaml:"database"`
	Gotify        GotifyConfig         `yaml:"gotify"`
	Nominatim     NominatimConfig      `yaml:"nominatim"`
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GotifyConfig points at the push server. An empty token disables push
// delivery; notifications fall back to the log.
type GotifyConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type NominatimConfig struct {
	URL string `yaml:"url"`
}

// SubscriptionConfig declares one polled query and the handler that
// reacts to its deltas.
type SubscriptionConfig struct {
	Label               string         `yaml:"label"`
	Query               string         `yaml:"query"`
	IntervalSeconds     int            `yaml:"interval_seconds"`
	Handler             string         `yaml:"handler"`
	TriggerMode         string         `yaml:"trigger_mode"`
	RateLimitPerMinute  int            `yaml:"rate_limit_per_minute"`
	QueryTimeoutSeconds int            `yaml:"query_timeout_seconds"`
	Params              map[string]any `yaml:"params"`
}

// Interval returns the poll period as a duration.
func (s SubscriptionConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// QueryTimeout returns the configured per-poll query timeout, or zero
// when unset (the engine derives one from the interval).
func (s SubscriptionConfig) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutSeconds) * time.Second
}

// Load reads a YAML config file, fills defaults, and validates it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration vigil runs with when no file is
// given: local server, default database path, and the built-in
// subscription set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 38800
	}
	if c.Nominatim.URL == "" {
		c.Nominatim.URL = "https://nominatim.openstreetmap.org"
	}
	if len(c.Subscriptions) == 0 {
		c.Subscriptions = DefaultSubscriptions()
	}
	for i := range c.Subscriptions {
		if c.Subscriptions[i].TriggerMode == "" {
			c.Subscriptions[i].TriggerMode = "diff"
		}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Subscriptions))
	for _, sub := range c.Subscriptions {
		if sub.Label == "" {
			return fmt.Errorf("subscription without a label")
		}
		if seen[sub.Label] {
			return fmt.Errorf("duplicate subscription label %q", sub.Label)
		}
		seen[sub.Label] = true
		if sub.Query == "" {
			return fmt.Errorf("subscription %s: query is required", sub.Label)
		}
		if sub.Handler == "" {
			return fmt.Errorf("subscription %s: handler is required", sub.Label)
		}
		if sub.IntervalSeconds <= 0 {
			return fmt.Errorf("subscription %s: interval_seconds must be positive", sub.Label)
		}
		if sub.TriggerMode != "diff" && sub.TriggerMode != "all" {
			return fmt.Errorf("subscription %s: trigger_mode must be diff or all, got %q", sub.Label, sub.TriggerMode)
		}
		if sub.RateLimitPerMinute < 0 {
			return fmt.Errorf("subscription %s: rate_limit_per_minute cannot be negative", sub.Label)
		}
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DefaultSubscriptions is the built-in watch list covering GPS, motion
// sensors, mail, device liveness, and the status archive.
func DefaultSubscriptions() []SubscriptionConfig {
	return []SubscriptionConfig{
		{
			Label:              "gps_data",
			Query:              "SELECT latitude, longitude, time, device_id FROM gps_data ORDER BY created_at DESC LIMIT 100",
			IntervalSeconds:    5,
			Handler:            "gps",
			TriggerMode:        "all",
			RateLimitPerMinute: 5,
		},
		{
			Label:              "phone_screen_up",
			Query:              "SELECT sensor_type, x, y, z, created_at, device_id FROM sensor_data WHERE sensor_type = 'gravity' ORDER BY created_at DESC LIMIT 1",
			IntervalSeconds:    1,
			Handler:            "screen_up",
			TriggerMode:        "all",
			RateLimitPerMinute: 0,
		},
		{
			Label:              "phone_stationary",
			Query:              "SELECT sensor_type, x, y, z, created_at, device_id FROM sensor_data WHERE sensor_type = 'accelerometer' ORDER BY created_at DESC LIMIT 1",
			IntervalSeconds:    1,
			Handler:            "movement",
			TriggerMode:        "all",
			RateLimitPerMinute: 0,
		},
		{
			Label:              "email_check",
			Query:              "SELECT id, subject, sender, date_received FROM emails ORDER BY date_received DESC LIMIT 10",
			IntervalSeconds:    4,
			Handler:            "mailbox",
			TriggerMode:        "diff",
			RateLimitPerMinute: 2,
		},
		{
			Label:              "no_gps_added",
			Query:              "SELECT device_id, MAX(time) AS time FROM gps_data GROUP BY device_id ORDER BY time DESC",
			IntervalSeconds:    1,
			Handler:            "connection",
			TriggerMode:        "all",
			RateLimitPerMinute: 0,
		},
		{
			Label:              "device_status_log",
			Query:              "SELECT id, last_movement, screen_up, speed, online, location FROM devices ORDER BY updated_at DESC",
			IntervalSeconds:    1,
			Handler:            "archiver",
			TriggerMode:        "all",
			RateLimitPerMinute: 0,
		},
		{
			Label: "look_at_sky_reminder",
			Query: "SELECT speed FROM devices WHERE speed > 3.0 AND screen_up IS NULL " +
				"AND last_movement > (strftime('%s', 'now') - 600) * 1000",
			IntervalSeconds:    600,
			Handler:            "threshold",
			TriggerMode:        "diff",
			RateLimitPerMinute: 1,
			Params: map[string]any{
				"title":    "Look at the Sky!",
				"body":     "You're outside and walking. Take a moment to look up and enjoy the sky!",
				"priority": 5,
			},
		},
		{
			Label: "get_back_to_work",
			Query: "SELECT COUNT(*) FROM device_status_log WHERE screen_up = 1 " +
				"AND timestamp > (strftime('%s', 'now') - 3600) * 1000",
			IntervalSeconds:    600,
			Handler:            "threshold",
			TriggerMode:        "all",
			RateLimitPerMinute: 1,
			Params: map[string]any{
				"title":    "Get back to work!",
				"body":     "You've been holding your phone for too long. Time to focus!",
				"priority": 10,
				"min":      200,
				"column":   0,
			},
		},
	}
}
