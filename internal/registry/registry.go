package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/restdeck/internal/config"
	"github.com/studiowebux/restdeck/internal/filter"
	"github.com/studiowebux/restdeck/internal/types"
)

// ErrUnknownCollection is returned when a key is not registered
var ErrUnknownCollection = errors.New("unknown collection")

// Registry is the immutable, ordered set of collection descriptors
type Registry struct {
	collections []types.Collection
	index       map[string]int
}

// New builds a registry from descriptors. Keys must be unique and non-empty.
func New(collections ...types.Collection) (*Registry, error) {
	r := &Registry{
		collections: make([]types.Collection, 0, len(collections)),
		index:       make(map[string]int, len(collections)),
	}
	for _, c := range collections {
		if c.Key == "" {
			return nil, fmt.Errorf("collection with empty key")
		}
		if _, dup := r.index[c.Key]; dup {
			return nil, fmt.Errorf("duplicate collection key %q", c.Key)
		}
		if c.URL == "" {
			return nil, fmt.Errorf("collection %q: url is required", c.Key)
		}
		if err := filter.Validate(c.RecordsPath); err != nil {
			return nil, fmt.Errorf("collection %q: %w", c.Key, err)
		}
		c.Fields = append([]types.Field(nil), c.Fields...)
		r.index[c.Key] = len(r.collections)
		r.collections = append(r.collections, c)
	}
	if len(r.collections) == 0 {
		return nil, fmt.Errorf("registry needs at least one collection")
	}
	return r, nil
}

// FromSettings builds the default registry and applies per-collection overrides
func FromSettings(settings *config.Settings) (*Registry, error) {
	collections := Defaults(settings.BaseURL)
	for key := range settings.Collections {
		found := false
		for _, c := range collections {
			if c.Key == key {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("settings override %q: %w", key, ErrUnknownCollection)
		}
	}
	for i := range collections {
		override, ok := settings.Collections[collections[i].Key]
		if !ok {
			continue
		}
		if override.URL != "" {
			collections[i].URL = override.URL
		}
		if override.RecordsPath != "" {
			collections[i].RecordsPath = override.RecordsPath
		}
	}
	return New(collections...)
}

// Lookup returns the descriptor registered under key
func (r *Registry) Lookup(key string) (types.Collection, error) {
	i, ok := r.index[key]
	if !ok {
		return types.Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, key)
	}
	return r.collections[i], nil
}

// Has reports whether key is registered
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Keys returns registered keys in registration order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.collections))
	for i, c := range r.collections {
		keys[i] = c.Key
	}
	return keys
}

// All returns the descriptors in registration order
func (r *Registry) All() []types.Collection {
	return append([]types.Collection(nil), r.collections...)
}

// First returns the first registered key, the initial navigation target
func (r *Registry) First() string {
	return r.collections[0].Key
}

// Neighbor returns the key delta positions away from key, wrapping around
func (r *Registry) Neighbor(key string, delta int) string {
	i, ok := r.index[key]
	if !ok {
		return r.First()
	}
	n := len(r.collections)
	return r.collections[((i+delta)%n+n)%n].Key
}

// Resolve maps free-form input to a registered key: exact match first,
// then unique prefix, then the best fuzzy match.
func (r *Registry) Resolve(input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownCollection)
	}
	if r.Has(input) {
		return input, nil
	}

	keys := r.Keys()
	var prefixed []string
	for _, k := range keys {
		if strings.HasPrefix(k, input) {
			prefixed = append(prefixed, k)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], nil
	}

	matches := fuzzy.Find(input, keys)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, input)
	}
	return matches[0].Str, nil
}
