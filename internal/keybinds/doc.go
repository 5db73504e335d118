/*
Package keybinds provides customizable keyboard binding management.

# Overview

Keys map to actions within a context. Matching checks the specific
context first, then global. The TUI asks the registry which action a key
press means and never compares key strings itself.

Contexts:
  - Global: bindings available everywhere (ctrl+c)
  - Normal: collection table
  - Form: add/edit form; unbound keys go to the focused input
  - Goto: collection name prompt
  - Inspect, History, Help, ErrorDetail: scrollable modals
  - Confirm: yes/no dialogs

# Configuration File Format

Overrides live in ~/.restdeck/keybinds.jsonc. Comments and trailing
commas are allowed:

	{
	  "version": "1.0",
	  "normal": {
	    "n": "start_add",   // add with n
	    "a": "none",        // and free up a
	  },
	  "form": {
	    "ctrl+enter": "form_submit"
	  }
	}

Unknown actions and empty keys are rejected when loading. Rebinding
ctrl+c, shadowing a global key or binding an action in a context that
ignores it produces a warning.

# Multi-key Sequences

A key bound to go_to_top_prepare starts a sequence; the next key is
matched as the concatenation (g then g matches "gg").
*/
package keybinds
