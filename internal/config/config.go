package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/studiowebux/restdeck/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultBaseURL is the demo REST source the collections are fetched from
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	// DefaultTimeout bounds a single collection fetch
	DefaultTimeout = 30 * time.Second
)

var (
	// ConfigDir is the global configuration directory (~/.restdeck)
	ConfigDir string

	// SettingsFile is the YAML settings file
	SettingsFile string

	// KeybindsFile holds user keybinding overrides (JSON with comments)
	KeybindsFile string

	// DatabasePath is the SQLite database file for fetch history
	DatabasePath string

	// LogFile receives structured logs while the TUI owns the terminal
	LogFile string
)

// CollectionOverride replaces parts of a registered collection's descriptor
type CollectionOverride struct {
	URL         string `yaml:"url,omitempty"`
	RecordsPath string `yaml:"records,omitempty"`
}

// Settings holds user configuration loaded from config.yaml
type Settings struct {
	BaseURL     string                        `yaml:"base_url"`
	Timeout     time.Duration                 `yaml:"timeout"`
	Token       string                        `yaml:"token,omitempty"`
	TLS         *types.TLSConfig              `yaml:"tls,omitempty"`
	History     *bool                         `yaml:"history,omitempty"`
	LogLevel    string                        `yaml:"log_level,omitempty"`
	Collections map[string]CollectionOverride `yaml:"collections,omitempty"`

	// MessageTimeout clears TUI status and error messages after this long; zero keeps them
	MessageTimeout time.Duration `yaml:"message_timeout,omitempty"`
}

// DefaultSettings returns the settings used when no config file exists
func DefaultSettings() *Settings {
	enabled := true
	return &Settings{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		History:  &enabled,
		LogLevel: "info",
	}
}

// HistoryEnabled reports whether fetches are logged to the history database
func (s *Settings) HistoryEnabled() bool {
	return s.History == nil || *s.History
}

// Initialize sets up the configuration directory and files
// It creates ~/.restdeck/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".restdeck"))
}

// InitializeAt sets up the configuration rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.jsonc")
	DatabasePath = filepath.Join(ConfigDir, "restdeck.db")
	LogFile = filepath.Join(ConfigDir, "restdeck.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(DefaultSettings())
		if err != nil {
			return fmt.Errorf("failed to encode default settings: %w", err)
		}
		if err := os.WriteFile(SettingsFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// Load reads settings from path, filling unset values with defaults.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := settings.normalize(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

func (s *Settings) normalize() error {
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", s.BaseURL)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MessageTimeout < 0 {
		return fmt.Errorf("message_timeout must not be negative")
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	return nil
}

// ExpandPath expands a leading ~/ and makes relative paths relative to the config directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	return filepath.Join(ConfigDir, path), nil
}
