package keybinds

import "sort"

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// keymap maps a key, or a key sequence such as "gg", to its action
type keymap map[string]Action

// keys returns the keys bound to action, sorted
func (km keymap) keys(action Action) []string {
	var keys []string
	for key, bound := range km {
		if bound == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Registry resolves key presses to actions per context.
// A key not bound in a context falls back to ContextGlobal.
type Registry struct {
	contexts map[Context]keymap

	// pending holds the first key of an unfinished sequence per context
	pending map[Context]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		contexts: make(map[Context]keymap),
		pending:  make(map[Context]string),
	}
}

// Bind maps each key to action in context, replacing earlier bindings of those keys
func (r *Registry) Bind(context Context, action Action, keys ...string) {
	km := r.contexts[context]
	if km == nil {
		km = make(keymap)
		r.contexts[context] = km
	}
	for _, key := range keys {
		km[key] = action
	}
}

// Unbind removes key from context. The global fallback still applies.
func (r *Registry) Unbind(context Context, key string) {
	delete(r.contexts[context], key)
}

// Match returns the action key triggers in context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.contexts[context][key]; ok {
		return action, true
	}
	action, ok := r.contexts[ContextGlobal][key]
	return action, ok
}

// MatchMultiKey is Match with support for two-key sequences.
// A key bound to ActionGoToTopPrepare is held as pending (partial=true) and
// the next key is matched as the concatenation of both.
func (r *Registry) MatchMultiKey(context Context, key string) (action Action, complete bool, partial bool) {
	if first, ok := r.pending[context]; ok {
		delete(r.pending, context)
		action, complete = r.Match(context, first+key)
		return action, complete, false
	}

	action, complete = r.Match(context, key)
	if complete && action == ActionGoToTopPrepare {
		r.pending[context] = key
		return "", false, true
	}
	return action, complete, false
}

// IsBound reports whether key triggers anything in context
func (r *Registry) IsBound(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// GetBinding returns the keys bound to action in context, sorted.
// Global keys are returned when the context binds none.
func (r *Registry) GetBinding(context Context, action Action) []string {
	if keys := r.contexts[context].keys(action); len(keys) > 0 {
		return keys
	}
	return r.contexts[ContextGlobal].keys(action)
}

// ListBindings returns the bindings of a context sorted by key
func (r *Registry) ListBindings(context Context) []Binding {
	km := r.contexts[context]
	bindings := make([]Binding, 0, len(km))
	for key, action := range km {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Key < bindings[j].Key })
	return bindings
}

// actions returns the set of actions bound in context
func (r *Registry) actions(context Context) map[Action]bool {
	set := make(map[Action]bool)
	for _, action := range r.contexts[context] {
		set[action] = true
	}
	return set
}
