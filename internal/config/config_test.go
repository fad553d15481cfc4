package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vigil.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  bind: 0.0.0.0
  port: 9000
database:
  path: /tmp/vigil-test.db
gotify:
  url: http://gotify.local
  token: abc123
subscriptions:
  - label: emails
    query: SELECT id, subject, sender, date_received FROM emails
    interval_seconds: 4
    handler: mailbox
    rate_limit_per_minute: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
	if cfg.Gotify.Token != "abc123" {
		t.Errorf("Gotify.Token = %q", cfg.Gotify.Token)
	}
	if len(cfg.Subscriptions) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(cfg.Subscriptions))
	}

	sub := cfg.Subscriptions[0]
	if sub.TriggerMode != "diff" {
		t.Errorf("TriggerMode = %q, want diff default", sub.TriggerMode)
	}
	if sub.Interval() != 4*time.Second {
		t.Errorf("Interval = %v", sub.Interval())
	}
	if sub.QueryTimeout() != 0 {
		t.Errorf("QueryTimeout = %v, want 0 when unset", sub.QueryTimeout())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"missing label",
			"subscriptions:\n  - query: SELECT 1\n    interval_seconds: 1\n    handler: threshold\n",
			"without a label",
		},
		{
			"missing query",
			"subscriptions:\n  - label: a\n    interval_seconds: 1\n    handler: threshold\n",
			"query is required",
		},
		{
			"missing handler",
			"subscriptions:\n  - label: a\n    query: SELECT 1\n    interval_seconds: 1\n",
			"handler is required",
		},
		{
			"zero interval",
			"subscriptions:\n  - label: a\n    query: SELECT 1\n    handler: threshold\n",
			"interval_seconds",
		},
		{
			"bad trigger mode",
			"subscriptions:\n  - label: a\n    query: SELECT 1\n    interval_seconds: 1\n    handler: threshold\n    trigger_mode: sometimes\n",
			"trigger_mode",
		},
		{
			"duplicate label",
			"subscriptions:\n" +
				"  - label: a\n    query: SELECT 1\n    interval_seconds: 1\n    handler: threshold\n" +
				"  - label: a\n    query: SELECT 2\n    interval_seconds: 1\n    handler: threshold\n",
			"duplicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:38800" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
	if len(cfg.Subscriptions) != 8 {
		t.Errorf("got %d built-in subscriptions, want 8", len(cfg.Subscriptions))
	}

	byLabel := make(map[string]SubscriptionConfig)
	for _, sub := range cfg.Subscriptions {
		byLabel[sub.Label] = sub
	}
	if sub, ok := byLabel["email_check"]; !ok || sub.Handler != "mailbox" || sub.TriggerMode != "diff" || sub.RateLimitPerMinute != 2 {
		t.Errorf("email_check = %+v", sub)
	}
	if sub, ok := byLabel["phone_screen_up"]; !ok || sub.RateLimitPerMinute != 0 || sub.TriggerMode != "all" {
		t.Errorf("phone_screen_up = %+v", sub)
	}
	if sub, ok := byLabel["look_at_sky_reminder"]; !ok || sub.Params["title"] != "Look at the Sky!" {
		t.Errorf("look_at_sky_reminder = %+v", sub)
	}
}
