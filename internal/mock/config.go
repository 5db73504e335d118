package mock

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Fixtures lists the built-in fixture names
func Fixtures() []string {
	entries, err := fixtures.ReadDir("fixtures")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

func fixture(name string) ([]byte, error) {
	data, err := fixtures.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown fixture %q", name)
	}
	return data, nil
}

// DefaultConfig serves every built-in fixture at /<name>
func DefaultConfig() *Config {
	config := &Config{Host: "localhost", Port: 8080, Logging: true}
	for _, name := range Fixtures() {
		config.Routes = append(config.Routes, Route{
			Name:    name,
			Method:  http.MethodGet,
			Path:    "/" + name,
			Fixture: name,
		})
	}
	return config
}

// SetDelay delays every response of the named route
func (c *Config) SetDelay(name string, delay time.Duration) error {
	route, err := c.route(name)
	if err != nil {
		return err
	}
	route.Delay = int(delay.Milliseconds())
	return nil
}

// SetFailure makes the named route answer with status
func (c *Config) SetFailure(name string, status int) error {
	route, err := c.route(name)
	if err != nil {
		return err
	}
	route.Status = status
	return nil
}

func (c *Config) route(name string) (*Route, error) {
	for i := range c.Routes {
		if c.Routes[i].Name == name {
			return &c.Routes[i], nil
		}
	}
	return nil, fmt.Errorf("no route named %q", name)
}

// LoadConfig loads a fixture server configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// validateConfig validates the fixture server configuration
func validateConfig(config *Config) error {
	if len(config.Routes) == 0 {
		return fmt.Errorf("no routes defined")
	}

	for i, route := range config.Routes {
		if route.Path == "" {
			return fmt.Errorf("route %d: path is required", i)
		}
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("route %d: path must start with /", i)
		}
		if route.Fixture != "" {
			if _, err := fixture(route.Fixture); err != nil {
				return fmt.Errorf("route %d: %w", i, err)
			}
		}
	}

	return nil
}
