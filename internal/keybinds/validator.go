package keybinds

import (
	"fmt"
	"strings"
)

// Issue is one problem found in a keybinding override
type Issue struct {
	Context Context
	Key     string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %q: %s", i.Context, i.Key, i.Message)
}

// ValidationResult collects the issues of a config.
// Errors prevent the config from loading; warnings are reported and applied.
type ValidationResult struct {
	Errors   []Issue
	Warnings []Issue
}

// HasErrors returns true if there are any errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "No issues found"
	}

	var sb strings.Builder
	writeIssues(&sb, "Errors", r.Errors)
	writeIssues(&sb, "Warnings", r.Warnings)
	return strings.TrimRight(sb.String(), "\n")
}

func writeIssues(sb *strings.Builder, title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s (%d):\n", title, len(issues))
	for _, issue := range issues {
		fmt.Fprintf(sb, "  - %s\n", issue)
	}
}

// reservedKeys keep their default action; rebinding them is allowed with a warning
var reservedKeys = map[string]Action{
	"ctrl+c": ActionQuitForce,
}

// Validate checks a configuration before it is applied
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{}
	defaults := NewDefaultRegistry()

	global := defaults.contexts[ContextGlobal]
	for key, name := range config.Global {
		global[key] = Action(strings.TrimSpace(name))
	}

	for context, bindings := range config.sections() {
		usable := defaults.actions(context)

		for key, name := range bindings {
			action := Action(strings.TrimSpace(name))
			fail := func(format string, args ...any) {
				result.Errors = append(result.Errors, Issue{context, key, fmt.Sprintf(format, args...)})
			}
			warn := func(format string, args ...any) {
				result.Warnings = append(result.Warnings, Issue{context, key, fmt.Sprintf(format, args...)})
			}

			if err := checkKey(key); err != nil {
				fail("%v", err)
				continue
			}
			if !IsKnown(action) {
				fail("unknown action %q", name)
				continue
			}

			if action == ActionNone {
				if _, bound := defaults.contexts[context][key]; !bound {
					warn("unbinds a key that has no default binding")
				}
				continue
			}
			if !usable[action] {
				warn("action %q has no effect in this context", action)
			}
			if want, reserved := reservedKeys[key]; reserved && action != want {
				warn("reserved key rebound to %q", action)
			}
			if context != ContextGlobal {
				if globalAction, ok := global[key]; ok && globalAction != action {
					warn("shadows global binding (%s -> %s)", globalAction, action)
				}
			}
		}
	}

	return result
}

// checkKey rejects keys the terminal can never report
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.HasSuffix(key, "+") && len(key) > 1 {
		return fmt.Errorf("modifier without key")
	}
	return nil
}
