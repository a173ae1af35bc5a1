package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a trophy project.
type Config struct {
	Version   int      `yaml:"version"`
	Server    Server   `yaml:"server"`
	Database  Database `yaml:"database"`
	Calendar  Calendar `yaml:"calendar"`
	Log       Log      `yaml:"log"`
	LocalUser string   `yaml:"local_user"` // user the CLI and TUI act as
}

// Server configures `trophy serve`.
type Server struct {
	Addr              string `yaml:"addr"`
	CookieName        string `yaml:"cookie_name"`
	SessionTTLHours   int    `yaml:"session_ttl_hours"`
	SecureCookie      bool   `yaml:"secure_cookie"`
	AuthRatePerMinute int    `yaml:"auth_rate_per_minute"` // signup/login attempts per client
}

// Database locates the SQLite file.
type Database struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// Calendar decides which zone "today" is taken in.
type Calendar struct {
	Timezone string `yaml:"timezone"` // IANA name or "Local"
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// SessionTTL returns the session lifetime.
func (s Server) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}

// Location resolves the configured timezone.
func (c Calendar) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load reads and parses the config file at the given path. Fields missing
// from the file keep their defaults, and environment overrides apply last.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: Server{
			Addr:              ":3000",
			CookieName:        "trophy_session",
			SessionTTLHours:   168,
			AuthRatePerMinute: 20,
		},
		Database: Database{
			Path:          ".trophy/trophy.db",
			BusyTimeoutMS: 5000,
		},
		Calendar:  Calendar{Timezone: "Local"},
		Log:       Log{Level: "info", Format: "json"},
		LocalUser: "me",
	}
}

// ApplyEnv overrides fields from TROPHY_* environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Addr = getEnv("TROPHY_ADDR", c.Server.Addr)
	c.Database.Path = getEnv("TROPHY_DB", c.Database.Path)
	c.Calendar.Timezone = getEnv("TROPHY_TZ", c.Calendar.Timezone)
	c.Log.Level = getEnv("TROPHY_LOG_LEVEL", c.Log.Level)
	c.LocalUser = getEnv("TROPHY_USER", c.LocalUser)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.SessionTTLHours <= 0 {
		return fmt.Errorf("server.session_ttl_hours must be positive, got %d", c.Server.SessionTTLHours)
	}
	if c.Server.AuthRatePerMinute < 0 {
		return fmt.Errorf("server.auth_rate_per_minute must not be negative, got %d", c.Server.AuthRatePerMinute)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := c.Calendar.Location(); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.LocalUser) == "" {
		return fmt.Errorf("local_user is required")
	}
	return nil
}
