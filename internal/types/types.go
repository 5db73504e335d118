package types

import "time"

// FieldKind describes how a field is displayed and edited
type FieldKind string

const (
	KindText     FieldKind = "text"     // Single-line text input
	KindLongText FieldKind = "longtext" // Multi-line text area
	KindBoolean  FieldKind = "boolean"  // Yes/No select
)

// Field describes one field of a collection's schema
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Display     bool      `json:"display,omitempty" yaml:"display,omitempty"`   // Shown as a table column
	Editable    bool      `json:"editable,omitempty" yaml:"editable,omitempty"` // Shown in the add/edit form
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Collection describes a remote record set
type Collection struct {
	Key         string  `json:"key" yaml:"key"`
	Title       string  `json:"title" yaml:"title"`
	URL         string  `json:"url" yaml:"url"`
	RecordsPath string  `json:"recordsPath,omitempty" yaml:"recordsPath,omitempty"` // JMESPath selecting the record array
	Fields      []Field `json:"fields" yaml:"fields"`
}

// DisplayFields returns the fields shown as table columns, in order
func (c Collection) DisplayFields() []Field {
	var fields []Field
	for _, f := range c.Fields {
		if f.Display {
			fields = append(fields, f)
		}
	}
	return fields
}

// EditableFields returns the fields shown in the form, in order
func (c Collection) EditableFields() []Field {
	var fields []Field
	for _, f := range c.Fields {
		if f.Editable {
			fields = append(fields, f)
		}
	}
	return fields
}

// Field returns the named field
func (c Collection) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TLSConfig contains TLS/mTLS settings for the HTTP client
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"key_file,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"ca_file,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

// FetchResult contains the outcome of fetching one collection
type FetchResult struct {
	Collection   string   `json:"collection"`
	URL          string   `json:"url"`
	Status       int      `json:"status"`
	StatusText   string   `json:"statusText"`
	Records      []Record `json:"records"`
	Duration     int64    `json:"duration"`     // milliseconds
	ResponseSize int      `json:"responseSize"` // bytes
}

// HistoryEntry represents one logged fetch attempt
type HistoryEntry struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Timestamp   time.Time `json:"timestamp"`
	Collection  string    `json:"collection"`
	URL         string    `json:"url"`
	Status      int       `json:"status"`
	Duration    int64     `json:"duration"`
	RecordCount int       `json:"recordCount"`
	Size        int       `json:"size"`
	Error       string    `json:"error,omitempty"`
	Discarded   bool      `json:"discarded,omitempty"` // Response arrived after navigation moved on
}

// FetchStats aggregates the logged fetches of one collection
type FetchStats struct {
	Collection    string
	TotalFetches  int
	SuccessCount  int
	ErrorCount    int
	NetworkErrors int // no HTTP status (DNS, refused, timeout)
	Discarded     int
	AvgDurationMs float64
	MinDurationMs int64
	MaxDurationMs int64
	TotalSize     int64
	StatusCodes   map[int]int
	LastFetched   time.Time
}
