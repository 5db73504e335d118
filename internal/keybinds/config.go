package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding configuration.
// Each section maps a key to an action name; the action "none" unbinds the key.
type Config struct {
	Version     string            `json:"version"`
	Global      map[string]string `json:"global,omitempty"`
	Normal      map[string]string `json:"normal,omitempty"`
	Form        map[string]string `json:"form,omitempty"`
	Goto        map[string]string `json:"goto,omitempty"`
	Inspect     map[string]string `json:"inspect,omitempty"`
	History     map[string]string `json:"history,omitempty"`
	Help        map[string]string `json:"help,omitempty"`
	ErrorDetail map[string]string `json:"error_detail,omitempty"`
	Confirm     map[string]string `json:"confirm,omitempty"`
}

func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:      c.Global,
		ContextNormal:      c.Normal,
		ContextForm:        c.Form,
		ContextGoto:        c.Goto,
		ContextInspect:     c.Inspect,
		ContextHistory:     c.History,
		ContextHelp:        c.Help,
		ContextErrorDetail: c.ErrorDetail,
		ContextConfirm:     c.Confirm,
	}
}

// LoadConfig loads keybinding configuration from a JSON file.
// Comments and trailing commas are allowed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds format: %w", err)
	}

	return &config, nil
}

// ApplyConfig applies user configuration to a registry
// User bindings override default bindings
func ApplyConfig(registry *Registry, config *Config) {
	for context, bindings := range config.sections() {
		for key, actionStr := range bindings {
			action := Action(strings.TrimSpace(actionStr))
			if action == ActionNone {
				registry.Unbind(context, key)
				continue
			}
			registry.Bind(context, action, key)
		}
	}
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry.
// Warnings about the user config are returned alongside the registry.
func LoadOrDefault(configPath string) (*Registry, *ValidationResult, error) {
	registry := NewDefaultRegistry()
	result := &ValidationResult{}

	config, err := LoadConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return registry, result, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", configPath, err)
	}

	result = Validate(config)
	if result.HasErrors() {
		return nil, result, fmt.Errorf("invalid keybindings:\n%s", result.String())
	}

	ApplyConfig(registry, config)
	return registry, result, nil
}

// ExampleConfig is written on first run so users can see what can be customized
const ExampleConfig = `{
  // Keybinding overrides. Each section maps a key to an action.
  // Use "none" to unbind a default key.
  "version": "1.0",
  "normal": {
    // "n": "start_add",
    // "a": "none"
  },
  "form": {
    // "ctrl+enter": "form_submit"
  }
}
`

// CreateExampleConfig writes ExampleConfig to path unless the file already exists
func CreateExampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(ExampleConfig), 0644)
}
