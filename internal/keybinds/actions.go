package keybinds

import (
	"strconv"
	"strings"
)

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal      Context = "global"       // Available everywhere
	ContextNormal      Context = "normal"       // Collection table
	ContextForm        Context = "form"         // Add/edit form
	ContextGoto        Context = "goto"         // Goto collection prompt
	ContextInspect     Context = "inspect"      // Record inspector
	ContextHistory     Context = "history"      // Fetch history browser
	ContextHelp        Context = "help"         // Help viewer
	ContextErrorDetail Context = "error_detail" // Fetch error detail
	ContextConfirm     Context = "confirm"      // Confirmation dialogs
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation actions
	ActionNavigateUp     Action = "navigate_up"       // Move up one item
	ActionNavigateDown   Action = "navigate_down"     // Move down one item
	ActionPageUp         Action = "page_up"           // Move up one page
	ActionPageDown       Action = "page_down"         // Move down one page
	ActionGoToTop        Action = "go_to_top"         // Go to top
	ActionGoToBottom     Action = "go_to_bottom"      // Go to bottom
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence

	// Collection navigation
	ActionNextCollection Action = "next_collection"
	ActionPrevCollection Action = "prev_collection"
	ActionOpenGoto       Action = "open_goto"
	ActionReload         Action = "reload"

	// Record operations
	ActionStartAdd        Action = "start_add"
	ActionStartEdit       Action = "start_edit"
	ActionCopyToClipboard Action = "copy_to_clipboard" // Copy selected record as JSON

	// Modal launchers
	ActionOpenInspect     Action = "open_inspect"
	ActionOpenHistory     Action = "open_history"
	ActionOpenErrorDetail Action = "open_error_detail"
	ActionOpenHelp        Action = "open_help"

	// Form actions
	ActionFormNextField Action = "form_next_field"
	ActionFormPrevField Action = "form_prev_field"
	ActionFormToggle    Action = "form_toggle" // Flip a boolean field
	ActionFormSubmit    Action = "form_submit"
	ActionFormCancel    Action = "form_cancel"

	// Text input actions
	ActionTextPaste  Action = "text_paste"
	ActionTextSubmit Action = "text_submit"
	ActionTextCancel Action = "text_cancel"

	// Modal actions
	ActionCloseModal   Action = "close_modal"
	ActionClearHistory Action = "history_clear"
	ActionConfirm      Action = "confirm"
	ActionCancel       Action = "cancel"

	// ActionNone unbinds a key when used in a user config
	ActionNone Action = "none"
)

const selectCollectionPrefix = "select_collection_"

// SelectCollectionAction returns the action jumping to the n-th collection (1-based)
func SelectCollectionAction(n int) Action {
	return Action(selectCollectionPrefix + strconv.Itoa(n))
}

// CollectionIndex reports the 0-based collection index of a select action
func CollectionIndex(action Action) (int, bool) {
	rest, ok := strings.CutPrefix(string(action), selectCollectionPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n - 1, true
}

// actionDescriptions is used by the help view and to reject unknown actions in configs
var actionDescriptions = map[Action]string{
	ActionQuit:            "Quit",
	ActionQuitForce:       "Force quit",
	ActionNavigateUp:      "Move up",
	ActionNavigateDown:    "Move down",
	ActionPageUp:          "Page up",
	ActionPageDown:        "Page down",
	ActionGoToTop:         "Go to top",
	ActionGoToBottom:      "Go to bottom",
	ActionGoToTopPrepare:  "Go to top (first key)",
	ActionNextCollection:  "Next collection",
	ActionPrevCollection:  "Previous collection",
	ActionOpenGoto:        "Go to collection by name",
	ActionReload:          "Reload collection",
	ActionStartAdd:        "Add record",
	ActionStartEdit:       "Edit selected record",
	ActionCopyToClipboard: "Copy record JSON",
	ActionOpenInspect:     "Inspect record",
	ActionOpenHistory:     "Fetch history",
	ActionOpenErrorDetail: "Error detail",
	ActionOpenHelp:        "Help",
	ActionFormNextField:   "Next field",
	ActionFormPrevField:   "Previous field",
	ActionFormToggle:      "Toggle Yes/No",
	ActionFormSubmit:      "Submit form",
	ActionFormCancel:      "Cancel form",
	ActionTextPaste:       "Paste",
	ActionTextSubmit:      "Confirm input",
	ActionTextCancel:      "Cancel input",
	ActionCloseModal:      "Close",
	ActionClearHistory:    "Clear history",
	ActionConfirm:         "Yes",
	ActionCancel:          "No",
}

// Describe returns a short human-readable label for an action
func Describe(action Action) string {
	if d, ok := actionDescriptions[action]; ok {
		return d
	}
	if i, ok := CollectionIndex(action); ok {
		return "Collection " + strconv.Itoa(i+1)
	}
	return string(action)
}

// IsKnown reports whether action is handled by the application
func IsKnown(action Action) bool {
	if _, ok := actionDescriptions[action]; ok {
		return true
	}
	_, ok := CollectionIndex(action)
	return ok || action == ActionNone
}
