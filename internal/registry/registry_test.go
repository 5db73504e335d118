package registry

import (
	"errors"
	"testing"

	"github.com/studiowebux/restdeck/internal/config"
	"github.com/studiowebux/restdeck/internal/types"
)

func newDefault(t *testing.T) *Registry {
	t.Helper()
	r, err := New(Defaults("https://example.test/")...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestDefaults_Schema(t *testing.T) {
	r := newDefault(t)

	tests := []struct {
		key      string
		url      string
		display  []string
		required []string
	}{
		{"users", "https://example.test/users", []string{"name", "username", "email", "phone", "website"}, []string{"name", "username", "email"}},
		{"posts", "https://example.test/posts", []string{"title", "body"}, []string{"title", "body"}},
		{"todos", "https://example.test/todos", []string{"title", "completed"}, []string{"title", "completed"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c, err := r.Lookup(tt.key)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.key, err)
			}
			if c.URL != tt.url {
				t.Errorf("URL = %q, want %q", c.URL, tt.url)
			}

			var display, required []string
			for _, f := range c.DisplayFields() {
				display = append(display, f.Name)
			}
			for _, f := range c.Fields {
				if f.Required {
					required = append(required, f.Name)
				}
			}
			if len(display) != len(tt.display) {
				t.Fatalf("display fields = %v, want %v", display, tt.display)
			}
			for i := range display {
				if display[i] != tt.display[i] {
					t.Errorf("display[%d] = %q, want %q", i, display[i], tt.display[i])
				}
			}
			if len(required) != len(tt.required) {
				t.Errorf("required fields = %v, want %v", required, tt.required)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	r := newDefault(t)

	_, err := r.Lookup("comments")
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("Lookup(comments) error = %v, want ErrUnknownCollection", err)
	}
}

func TestNew_RejectsDuplicateKeys(t *testing.T) {
	c := types.Collection{Key: "users", URL: "http://x/users"}
	if _, err := New(c, c); err == nil {
		t.Error("Expected error for duplicate keys")
	}
	if _, err := New(); err == nil {
		t.Error("Expected error for empty registry")
	}
	if _, err := New(types.Collection{Key: "users"}); err == nil {
		t.Error("Expected error for missing url")
	}
}

func TestKeysAndNeighbor(t *testing.T) {
	r := newDefault(t)

	keys := r.Keys()
	if len(keys) != 3 || keys[0] != "users" || keys[1] != "posts" || keys[2] != "todos" {
		t.Fatalf("Keys() = %v", keys)
	}
	if r.First() != "users" {
		t.Errorf("First() = %q", r.First())
	}

	tests := []struct {
		from  string
		delta int
		want  string
	}{
		{"users", 1, "posts"},
		{"todos", 1, "users"},
		{"users", -1, "todos"},
		{"posts", -1, "users"},
		{"missing", 1, "users"},
	}
	for _, tt := range tests {
		if got := r.Neighbor(tt.from, tt.delta); got != tt.want {
			t.Errorf("Neighbor(%q, %d) = %q, want %q", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	r := newDefault(t)

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"users", "users", false},
		{"  TODOS ", "todos", false},
		{"po", "posts", false},
		{"tds", "todos", false},
		{"", "", true},
		{"zzz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCollection) {
					t.Errorf("Resolve(%q) error = %v, want ErrUnknownCollection", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromSettings_AppliesOverrides(t *testing.T) {
	settings := config.DefaultSettings()
	settings.BaseURL = "http://localhost:3001"
	settings.Collections = map[string]config.CollectionOverride{
		"posts": {URL: "http://other/posts", RecordsPath: "data"},
	}

	r, err := FromSettings(settings)
	if err != nil {
		t.Fatalf("FromSettings() error = %v", err)
	}

	users, _ := r.Lookup("users")
	if users.URL != "http://localhost:3001/users" {
		t.Errorf("users URL = %q", users.URL)
	}
	posts, _ := r.Lookup("posts")
	if posts.URL != "http://other/posts" || posts.RecordsPath != "data" {
		t.Errorf("posts = %+v", posts)
	}

	settings.Collections = map[string]config.CollectionOverride{"comments": {URL: "http://x"}}
	if _, err := FromSettings(settings); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("FromSettings(unknown override) error = %v", err)
	}
}

func TestFromSettings_RejectsBadRecordsPath(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Collections = map[string]config.CollectionOverride{
		"todos": {RecordsPath: "data[?"},
	}

	if _, err := FromSettings(settings); err == nil {
		t.Fatal("FromSettings() should reject an expression that does not compile")
	}
}
