package mock

import "time"

// Config represents the fixture server configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // Server port (0 picks a free port)
	Host    string  `json:"host" yaml:"host"`       // Server host (default: localhost)
	Routes  []Route `json:"routes" yaml:"routes"`   // Route definitions
	Logging bool    `json:"logging" yaml:"logging"` // Keep a request log
}

// Route serves one collection
type Route struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`         // Collection key
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`     // HTTP method (default: GET)
	Path     string `json:"path" yaml:"path"`                             // Exact URL path
	Status   int    `json:"status,omitempty" yaml:"status,omitempty"`     // HTTP status code (default: 200)
	Fixture  string `json:"fixture,omitempty" yaml:"fixture,omitempty"`   // Built-in fixture name
	Body     string `json:"body,omitempty" yaml:"body,omitempty"`         // Inline response body
	BodyFile string `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"` // Path to response body file
	Delay    int    `json:"delay,omitempty" yaml:"delay,omitempty"`       // Response delay in milliseconds
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Duration    time.Duration `json:"duration"`
}
