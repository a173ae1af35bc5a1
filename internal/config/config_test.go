package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// --- Load / Save / Validate tests ---

func TestLoad_Valid(t *testing.T) {
	p := writeConfig(t, `version: 1
server:
  addr: ":8080"
  secure_cookie: true
database:
  path: /tmp/trophy.db
calendar:
  timezone: Asia/Tokyo
log:
  level: debug
  format: text
local_user: alice
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected addr :8080, got %s", cfg.Server.Addr)
	}
	if !cfg.Server.SecureCookie {
		t.Fatal("expected secure_cookie to be true")
	}
	if cfg.LocalUser != "alice" {
		t.Fatalf("expected local_user alice, got %s", cfg.LocalUser)
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Fatalf("expected Asia/Tokyo, got %s", loc)
	}
}

func TestLoad_KeepsDefaultsForMissingFields(t *testing.T) {
	p := writeConfig(t, "version: 1\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Server != def.Server {
		t.Fatalf("expected default server section, got %+v", cfg.Server)
	}
	if cfg.Database != def.Database {
		t.Fatalf("expected default database section, got %+v", cfg.Database)
	}
	if cfg.Server.SessionTTL() != 168*time.Hour {
		t.Fatalf("expected 168h session ttl, got %s", cfg.Server.SessionTTL())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TROPHY_ADDR", ":9999")
	t.Setenv("TROPHY_DB", "/tmp/other.db")
	t.Setenv("TROPHY_TZ", "UTC")
	t.Setenv("TROPHY_LOG_LEVEL", "warn")
	t.Setenv("TROPHY_USER", "bob")

	p := writeConfig(t, `version: 1
server:
  addr: ":8080"
local_user: alice
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected env addr, got %s", cfg.Server.Addr)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("expected env db, got %s", cfg.Database.Path)
	}
	if cfg.Calendar.Timezone != "UTC" {
		t.Errorf("expected env tz, got %s", cfg.Calendar.Timezone)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env log level, got %s", cfg.Log.Level)
	}
	if cfg.LocalUser != "bob" {
		t.Errorf("expected env user, got %s", cfg.LocalUser)
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	p := writeConfig(t, `version: 1
calendar:
  timezone: Mars/Olympus_Mons
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected validation error for unknown timezone")
	}
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	p := writeConfig(t, `version: 1
server:
  session_ttl_hours: 0
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected validation error for zero ttl")
	}
}

func TestLoad_BadLogSettings(t *testing.T) {
	for _, data := range []string{
		"version: 1\nlog:\n  level: loud\n",
		"version: 1\nlog:\n  format: xml\n",
	} {
		if _, err := Load(writeConfig(t, data)); err == nil {
			t.Fatalf("expected validation error for %q", data)
		}
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [unclosed\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSave_And_Reload(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.AuthRatePerMinute = 5
	cfg.Calendar.Timezone = "Europe/Berlin"
	cfg.LocalUser = "carol"

	if err := Save(p, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(p)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Server.AuthRatePerMinute != 5 {
		t.Fatalf("auth rate lost after round-trip: got %d", loaded.Server.AuthRatePerMinute)
	}
	if loaded.Calendar.Timezone != "Europe/Berlin" {
		t.Fatalf("timezone lost after round-trip: got %s", loaded.Calendar.Timezone)
	}
	if loaded.LocalUser != "carol" {
		t.Fatalf("local_user lost after round-trip: got %s", loaded.LocalUser)
	}
}

func TestCalendarLocation_Local(t *testing.T) {
	for _, tz := range []string{"", "Local", "local"} {
		loc, err := Calendar{Timezone: tz}.Location()
		if err != nil {
			t.Fatalf("%q: %v", tz, err)
		}
		if loc != time.Local {
			t.Fatalf("%q: expected time.Local, got %s", tz, loc)
		}
	}
}
