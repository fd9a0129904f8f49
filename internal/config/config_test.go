package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Engine.HorizonMonths != 12 || cfg.Engine.ActivationHorizonMonths != 24 {
		t.Fatalf("unexpected engine defaults %+v", cfg.Engine)
	}
	if cfg.Notifications.Hour != 9 || cfg.Notifications.Minute != 0 || cfg.Notifications.CancelOnComplete {
		t.Fatalf("unexpected notification defaults %+v", cfg.Notifications)
	}
	if cfg.Dashboard.MaxNow != 3 || cfg.Dashboard.MaxUpcoming != 3 {
		t.Fatalf("unexpected dashboard defaults %+v", cfg.Dashboard)
	}
	if filepath.Base(cfg.Database.Path) != "parentime.db" {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
}

func TestLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  path: /tmp/from-file.db
engine:
  horizon_months: 6
notifications:
  hour: 8
telegram:
  chat_id: "file-chat"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("PARENTIME_ENGINE_HORIZON_MONTHS", "18")
	t.Setenv("PARENTIME_CALENDAR_TIMEZONE", "UTC")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/from-file.db" {
		t.Fatalf("expected file value, got %q", cfg.Database.Path)
	}
	if cfg.Notifications.Hour != 8 {
		t.Fatalf("expected file hour 8, got %d", cfg.Notifications.Hour)
	}
	if cfg.Engine.HorizonMonths != 18 {
		t.Fatalf("expected env to override file, got %d", cfg.Engine.HorizonMonths)
	}
	if cfg.Calendar.Timezone != "UTC" {
		t.Fatalf("expected env timezone, got %q", cfg.Calendar.Timezone)
	}
	if !cfg.TelegramConfigured() {
		t.Fatalf("expected telegram configured from file and env, got %+v", cfg.Telegram)
	}
	if cfg.Engine.ActivationHorizonMonths != 24 {
		t.Fatalf("expected untouched default, got %d", cfg.Engine.ActivationHorizonMonths)
	}
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dispatcher.Interval != 60 {
		t.Fatalf("expected default interval, got %d", cfg.Dispatcher.Interval)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hour", func(c *Config) { c.Notifications.Hour = 24 }},
		{"minute", func(c *Config) { c.Notifications.Minute = -1 }},
		{"horizon", func(c *Config) { c.Engine.HorizonMonths = 0 }},
		{"interval", func(c *Config) { c.Dispatcher.Interval = 0 }},
		{"timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }},
		{"digest", func(c *Config) { c.Dispatcher.DigestEnabled = true; c.Dispatcher.DigestTime = "8am" }},
		{"database", func(c *Config) { c.Database.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("PARENTIME_NOTIFICATIONS_CANCEL_ON_COMPLETE"); got != "notifications.cancel_on_complete" {
		t.Fatalf("unexpected key %q", got)
	}
}
