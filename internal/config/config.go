package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Calendar CalendarConfig `yaml:"calendar"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Auth     AuthConfig     `yaml:"auth"`
	Mock     MockConfig     `yaml:"mock"`
}

// APIConfig configures the HTTP façade.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"PM_API_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"PM_API_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"PM_API_RATE_LIMIT"` // requests per second, 0 disables
	Burst     int           `yaml:"burst" env:"PM_API_BURST"`
}

// RealtimeConfig configures the notification channel.
type RealtimeConfig struct {
	URL              string        `yaml:"url" env:"PM_REALTIME_URL"`
	ReconnectDelay   time.Duration `yaml:"reconnect_delay" env:"PM_REALTIME_RECONNECT_DELAY"`
	PollInterval     time.Duration `yaml:"poll_interval" env:"PM_REALTIME_POLL_INTERVAL"`
	MaxNotifications int           `yaml:"max_notifications" env:"PM_REALTIME_MAX_NOTIFICATIONS"`
}

// StoreConfig selects the local storage backend.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"PM_STORE_DRIVER"` // memory, sqlite, mysql, postgres
	DSN    string `yaml:"dsn" env:"PM_STORE_DSN"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"PM_LOG_LEVEL"`
}

type CalendarConfig struct {
	HolidayCountry string `yaml:"holiday_country" env:"PM_CALENDAR_HOLIDAY_COUNTRY"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"PM_METRICS_ENABLED"`
	Addr    string `yaml:"addr" env:"PM_METRICS_ADDR"`
}

// AuthConfig holds optional credentials used by the CLI on startup.
type AuthConfig struct {
	Email    string `yaml:"email" env:"PM_EMAIL"`
	Password string `yaml:"password" env:"PM_PASSWORD"`
}

// MockConfig configures the in-memory backend test double.
type MockConfig struct {
	Host       string `yaml:"host" env:"PM_MOCK_HOST"`
	Port       string `yaml:"port" env:"PM_MOCK_PORT"`
	Mode       string `yaml:"mode" env:"PM_MOCK_MODE"` // debug, release, test
	JWTSecret  string `yaml:"jwt_secret" env:"PM_MOCK_JWT_SECRET"`
	TokenHours int    `yaml:"token_hours" env:"PM_MOCK_TOKEN_HOURS"`
}

var GlobalConfig *Config

// Load reads configPath (default config.yaml), falling back to DefaultConfig
// when the file does not exist, then applies PM_* environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()

	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 10 * time.Second,
		},
		Realtime: RealtimeConfig{
			URL:              "ws://localhost:5000/ws",
			ReconnectDelay:   3 * time.Second,
			PollInterval:     30 * time.Second,
			MaxNotifications: 50,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "pmsync.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Calendar: CalendarConfig{
			HolidayCountry: "US",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9102",
		},
		Mock: MockConfig{
			Host:       "0.0.0.0",
			Port:       "5000",
			Mode:       "debug",
			JWTSecret:  "pmsync-mock-secret-change-me",
			TokenHours: 24,
		},
	}
}

// applyDefaults restores values a partial file may have zeroed.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = def.API.Timeout
	}
	if c.API.RateLimit > 0 && c.API.Burst <= 0 {
		c.API.Burst = 1
	}
	if c.Realtime.ReconnectDelay <= 0 {
		c.Realtime.ReconnectDelay = def.Realtime.ReconnectDelay
	}
	if c.Realtime.PollInterval <= 0 {
		c.Realtime.PollInterval = def.Realtime.PollInterval
	}
	if c.Realtime.MaxNotifications <= 0 {
		c.Realtime.MaxNotifications = def.Realtime.MaxNotifications
	}
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.Mock.TokenHours <= 0 {
		c.Mock.TokenHours = def.Mock.TokenHours
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
