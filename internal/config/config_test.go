package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", settings.BaseURL, DefaultBaseURL)
	}
	if settings.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", settings.Timeout, DefaultTimeout)
	}
	if !settings.HistoryEnabled() {
		t.Error("Expected history to be enabled by default")
	}
}

func TestLoad_ParsesSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: http://localhost:3001/
timeout: 5s
token: secret
history: false
log_level: debug
collections:
  posts:
    url: http://localhost:3001/api/posts
    records: data
`
	if err := os.WriteFile(path, []byte(content), FilePermissions); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if settings.BaseURL != "http://localhost:3001" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", settings.BaseURL)
	}
	if settings.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", settings.Timeout)
	}
	if settings.Token != "secret" {
		t.Errorf("Token = %q, want secret", settings.Token)
	}
	if settings.HistoryEnabled() {
		t.Error("Expected history to be disabled")
	}
	if settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", settings.LogLevel)
	}
	override, ok := settings.Collections["posts"]
	if !ok {
		t.Fatal("Expected posts override")
	}
	if override.URL != "http://localhost:3001/api/posts" || override.RecordsPath != "data" {
		t.Errorf("Unexpected override: %+v", override)
	}
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("base_url: ftp://example.com\n"), FilePermissions); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for non-HTTP base_url")
	}
}

func TestInitializeAt_CreatesDefaultSettings(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".restdeck")

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}

	if SettingsFile != filepath.Join(dir, "config.yaml") {
		t.Errorf("SettingsFile = %q", SettingsFile)
	}
	if DatabasePath != filepath.Join(dir, "restdeck.db") {
		t.Errorf("DatabasePath = %q", DatabasePath)
	}

	settings, err := Load(SettingsFile)
	if err != nil {
		t.Fatalf("Load() of generated file error = %v", err)
	}
	if settings.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", settings.BaseURL, DefaultBaseURL)
	}
	if settings.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", settings.Timeout, DefaultTimeout)
	}
}

func TestExpandPath(t *testing.T) {
	if err := InitializeAt(t.TempDir()); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}

	abs := filepath.Join(string(filepath.Separator), "tmp", "x.pem")
	got, err := ExpandPath(abs)
	if err != nil || got != abs {
		t.Errorf("ExpandPath(%q) = %q, %v", abs, got, err)
	}

	got, err = ExpandPath("certs/ca.pem")
	if err != nil || got != filepath.Join(ConfigDir, "certs", "ca.pem") {
		t.Errorf("ExpandPath(relative) = %q, %v", got, err)
	}

	got, err = ExpandPath("")
	if err != nil || got != "" {
		t.Errorf("ExpandPath(\"\") = %q, %v", got, err)
	}
}
