package quillpress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// unsetEnv clears key for the duration of the test and restores it after.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Notes")
	t.Setenv("SITE_URL", "https://notes.example.com")
	t.Setenv("DATABASE_URL", "postgres://notes@db/notes")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_TIMEOUT", "2h")
	t.Setenv("LOGIN_ATTEMPTS", "3")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Notes" || cfg.URL != "https://notes.example.com" {
		t.Errorf("site = %q %q", cfg.Name, cfg.URL)
	}
	if cfg.DatabaseURL != "postgres://notes@db/notes" || cfg.AdminPassword != "pw" {
		t.Errorf("store settings = %+v", cfg.StoreConfig())
	}
	if !cfg.CookieSecure || cfg.SessionTimeout != 2*time.Hour || cfg.LoginAttempts != 3 {
		t.Errorf("session settings = %v %v %d", cfg.CookieSecure, cfg.SessionTimeout, cfg.LoginAttempts)
	}
	if cfg.MaxUploadSize != 1024 || cfg.LogFormat != "console" {
		t.Errorf("upload/log settings = %d %q", cfg.MaxUploadSize, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigDotenv(t *testing.T) {
	unsetEnv(t, "SITE_DESCRIPTION")
	t.Setenv("SITE_NAME", "From Env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "SITE_NAME=From File\nSITE_DESCRIPTION=Written down\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "From Env" {
		t.Errorf("environment should win over dotenv, got %q", cfg.Name)
	}
	if cfg.Description != "Written down" {
		t.Errorf("Description = %q, want value from dotenv", cfg.Description)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "forever")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	if cfg.Name != "Blog" || cfg.Addr != ":3000" || cfg.DatabaseURL != "data/quillpress.db" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.SessionTimeout != 168*time.Hour || cfg.LoginAttempts != 5 || cfg.MaxUploadSize != 25<<20 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("log defaults = %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := SiteConfig{SessionTimeout: -time.Second}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"DATABASE_URL", "ADMIN_PASSWORD", "SESSION_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}

	cfg = SiteConfig{DatabaseURL: "blog.db", AdminPasswordHash: "$2a$10$x"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("hash alone should satisfy Validate: %v", err)
	}
}

func TestConfigSite(t *testing.T) {
	cfg := SiteConfig{Name: "N", URL: "https://n.example", Description: "D", Author: "A"}
	site := cfg.Site()
	if site.Name != "N" || site.URL != "https://n.example" || site.Description != "D" || site.Author != "A" {
		t.Errorf("Site() = %+v", site)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("debug", "console"); err != nil {
		t.Errorf("console logger: %v", err)
	}
	if _, err := NewLogger("warn", "json"); err != nil {
		t.Errorf("json logger: %v", err)
	}
	if _, err := NewLogger("loud", "json"); err == nil {
		t.Errorf("expected bad level error")
	}
	if _, err := NewLogger("info", "xml"); err == nil {
		t.Errorf("expected bad format error")
	}
}
