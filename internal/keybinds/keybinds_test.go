package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextNormal, "q", ActionQuit},
		{ContextNormal, "ctrl+c", ActionQuitForce},
		{ContextNormal, "1", SelectCollectionAction(1)},
		{ContextNormal, "3", SelectCollectionAction(3)},
		{ContextNormal, "tab", ActionNextCollection},
		{ContextNormal, "shift+tab", ActionPrevCollection},
		{ContextNormal, ":", ActionOpenGoto},
		{ContextNormal, "a", ActionStartAdd},
		{ContextNormal, "e", ActionStartEdit},
		{ContextNormal, "enter", ActionStartEdit},
		{ContextNormal, "r", ActionReload},
		{ContextNormal, "i", ActionOpenInspect},
		{ContextNormal, "y", ActionCopyToClipboard},
		{ContextNormal, "H", ActionOpenHistory},
		{ContextNormal, "E", ActionOpenErrorDetail},
		{ContextNormal, "?", ActionOpenHelp},
		{ContextForm, "tab", ActionFormNextField},
		{ContextForm, " ", ActionFormToggle},
		{ContextForm, "ctrl+s", ActionFormSubmit},
		{ContextForm, "esc", ActionFormCancel},
		{ContextForm, "ctrl+c", ActionQuitForce},
		{ContextHistory, "C", ActionClearHistory},
		{ContextHistory, "H", ActionCloseModal},
		{ContextConfirm, "y", ActionConfirm},
		{ContextGoto, "enter", ActionTextSubmit},
	}

	for _, tt := range tests {
		t.Run(string(tt.context)+"/"+tt.key, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if !ok {
				t.Fatalf("no binding for %q in %s", tt.key, tt.context)
			}
			if got != tt.want {
				t.Errorf("Match() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, ok := r.Match(ContextForm, "a"); ok {
		t.Error("plain letters must reach form inputs")
	}
}

func TestCollectionIndex(t *testing.T) {
	for n := 1; n <= 9; n++ {
		i, ok := CollectionIndex(SelectCollectionAction(n))
		if !ok || i != n-1 {
			t.Errorf("CollectionIndex(%d) = %d, %v", n, i, ok)
		}
	}
	if _, ok := CollectionIndex(ActionQuit); ok {
		t.Error("quit is not a collection action")
	}
	if _, ok := CollectionIndex(Action("select_collection_0")); ok {
		t.Error("collection numbers start at 1")
	}
}

func TestMatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	_, complete, partial := r.MatchMultiKey(ContextNormal, "g")
	if complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v", complete, partial)
	}

	action, complete, partial := r.MatchMultiKey(ContextNormal, "g")
	if !complete || partial || action != ActionGoToTop {
		t.Errorf("gg: action=%q complete=%v partial=%v", action, complete, partial)
	}

	action, complete, _ = r.MatchMultiKey(ContextNormal, "G")
	if !complete || action != ActionGoToBottom {
		t.Errorf("G: action=%q complete=%v", action, complete)
	}
}

func TestGetBinding(t *testing.T) {
	r := NewDefaultRegistry()

	if got := strings.Join(r.GetBinding(ContextNormal, ActionStartEdit), ","); got != "e,enter" {
		t.Errorf("GetBinding() = %q", got)
	}
	if got := strings.Join(r.GetBinding(ContextNormal, ActionQuitForce), ","); got != "ctrl+c" {
		t.Errorf("global fallback = %q", got)
	}
	if got := r.GetBinding(ContextConfirm, ActionStartAdd); len(got) != 0 {
		t.Errorf("unbound = %v", got)
	}
}

func TestUnbind_KeepsGlobalFallback(t *testing.T) {
	r := NewDefaultRegistry()
	r.Bind(ContextForm, ActionFormCancel, "ctrl+c")
	if action, _ := r.Match(ContextForm, "ctrl+c"); action != ActionFormCancel {
		t.Fatalf("context binding should win, got %q", action)
	}

	r.Unbind(ContextForm, "ctrl+c")
	if action, _ := r.Match(ContextForm, "ctrl+c"); action != ActionQuitForce {
		t.Errorf("after Unbind got %q, want the global quit", action)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keybinds.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOrDefault_AppliesOverrides(t *testing.T) {
	path := writeConfig(t, `{
		// comments are fine
		"version": "1.0",
		"normal": {
			"n": "start_add",
			"a": "none",
		},
	}`)

	r, result, err := LoadOrDefault(path)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result)
	}

	if action, _ := r.Match(ContextNormal, "n"); action != ActionStartAdd {
		t.Errorf("n = %q, want start_add", action)
	}
	if r.IsBound(ContextNormal, "a") {
		t.Error("a should be unbound")
	}
	if action, _ := r.Match(ContextNormal, "e"); action != ActionStartEdit {
		t.Error("untouched defaults must survive")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	r, result, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.jsonc"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if result.HasErrors() || result.HasWarnings() {
		t.Errorf("unexpected findings: %s", result)
	}
	if !r.IsBound(ContextNormal, "q") {
		t.Error("expected default bindings")
	}
}

func TestLoadOrDefault_RejectsUnknownAction(t *testing.T) {
	path := writeConfig(t, `{"normal": {"x": "explode"}}`)

	_, result, err := LoadOrDefault(path)
	if err == nil {
		t.Fatal("expected error for unknown action")
	}
	if !strings.Contains(err.Error(), "explode") {
		t.Errorf("error should name the action: %v", err)
	}
	if result == nil || !result.HasErrors() {
		t.Error("expected validation errors")
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	config := &Config{
		Global: map[string]string{"ctrl+c": "quit"},
		Form:   map[string]string{"ctrl+c": "form_cancel"},
	}

	result := Validate(config)
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result)
	}
	if len(result.Warnings) < 2 {
		t.Errorf("expected reserved and shadowing warnings, got %s", result)
	}
}

func TestValidate_ActionOutsideItsContext(t *testing.T) {
	config := &Config{
		Form:   map[string]string{"ctrl+a": "start_add"},
		Normal: map[string]string{"z": "none"},
	}

	result := Validate(config)
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %s", result)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %s", result)
	}
	out := result.String()
	for _, want := range []string{"no effect in this context", "no default binding"} {
		if !strings.Contains(out, want) {
			t.Errorf("warnings missing %q:\n%s", want, out)
		}
	}
}

func TestCheckKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"a", false},
		{"ctrl+s", false},
		{" ", false},
		{"", true},
		{"ctrl+", true},
		{"+", false},
	}
	for _, tt := range tests {
		if err := checkKey(tt.key); (err != nil) != tt.wantErr {
			t.Errorf("checkKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestCreateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.jsonc")
	if err := CreateExampleConfig(path); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if config.Version != "1.0" {
		t.Errorf("Version = %q", config.Version)
	}
}
