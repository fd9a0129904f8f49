package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces environment overrides: PARENTIME_DATABASE_PATH
// sets database.path.
const EnvPrefix = "PARENTIME_"

type Config struct {
	Database      DatabaseConfig      `koanf:"database"`
	Catalog       CatalogConfig       `koanf:"catalog"`
	Calendar      CalendarConfig      `koanf:"calendar"`
	Engine        EngineConfig        `koanf:"engine"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Dispatcher    DispatcherConfig    `koanf:"dispatcher"`
	Telegram      TelegramConfig      `koanf:"telegram"`
	Dashboard     DashboardConfig     `koanf:"dashboard"`
	UI            UIConfig            `koanf:"ui"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type CatalogConfig struct {
	Path string `koanf:"path"` // JSON or YAML template document; empty uses the built-in catalog
}

type CalendarConfig struct {
	Timezone string `koanf:"timezone"` // IANA name; empty means the system zone
}

type EngineConfig struct {
	HorizonMonths           int `koanf:"horizon_months"`
	ActivationHorizonMonths int `koanf:"activation_horizon_months"`
}

type NotificationsConfig struct {
	Hour             int  `koanf:"hour"`
	Minute           int  `koanf:"minute"`
	CancelOnComplete bool `koanf:"cancel_on_complete"`
}

type DispatcherConfig struct {
	Interval      int    `koanf:"interval"` // seconds
	DigestEnabled bool   `koanf:"digest_enabled"`
	DigestTime    string `koanf:"digest_time"` // "HH:MM"
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type DashboardConfig struct {
	MaxNow      int `koanf:"max_now"`
	MaxUpcoming int `koanf:"max_upcoming"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Telegram credentials keep their conventional names
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Catalog.Path = expandPath(cfg.Catalog.Path)

	return &cfg, nil
}

// envKey maps PARENTIME_ENGINE_HORIZON_MONTHS to engine.horizon_months:
// the first underscore separates the section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Engine.HorizonMonths <= 0 {
		return fmt.Errorf("engine.horizon_months must be positive")
	}

	if c.Engine.ActivationHorizonMonths <= 0 {
		return fmt.Errorf("engine.activation_horizon_months must be positive")
	}

	if c.Notifications.Hour < 0 || c.Notifications.Hour > 23 {
		return fmt.Errorf("notifications.hour must be between 0 and 23")
	}

	if c.Notifications.Minute < 0 || c.Notifications.Minute > 59 {
		return fmt.Errorf("notifications.minute must be between 0 and 59")
	}

	if c.Dispatcher.Interval <= 0 {
		return fmt.Errorf("dispatcher.interval must be positive")
	}

	if c.Dispatcher.DigestEnabled {
		if _, err := time.Parse("15:04", c.Dispatcher.DigestTime); err != nil {
			return fmt.Errorf("dispatcher.digest_time must be HH:MM, got %q", c.Dispatcher.DigestTime)
		}
	}

	if c.Dashboard.MaxNow < 0 || c.Dashboard.MaxUpcoming < 0 {
		return fmt.Errorf("dashboard limits must not be negative")
	}

	return nil
}

// Location resolves calendar.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar.timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// DispatchInterval is the dispatcher polling period.
func (c *Config) DispatchInterval() time.Duration {
	return time.Duration(c.Dispatcher.Interval) * time.Second
}

// TelegramConfigured reports whether both Telegram credentials are set.
func (c *Config) TelegramConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
