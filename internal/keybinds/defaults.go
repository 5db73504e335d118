package keybinds

// chord lists the default keys of one action
type chord struct {
	action Action
	keys   []string
}

var pasteKeys = []string{"ctrl+v", "shift+insert", "super+v"}

var globalChords = []chord{
	{ActionQuitForce, []string{"ctrl+c"}},
}

// normalChords drive the collection table. Number keys are added by NewDefaultRegistry.
var normalChords = []chord{
	{ActionQuit, []string{"q"}},
	{ActionNextCollection, []string{"tab"}},
	{ActionPrevCollection, []string{"shift+tab"}},
	{ActionOpenGoto, []string{":"}},
	{ActionReload, []string{"r", "ctrl+r"}},

	{ActionNavigateUp, []string{"up", "k"}},
	{ActionNavigateDown, []string{"down", "j"}},
	{ActionPageUp, []string{"pgup"}},
	{ActionPageDown, []string{"pgdown"}},
	{ActionGoToTopPrepare, []string{"g"}},
	{ActionGoToTop, []string{"gg", "home"}},
	{ActionGoToBottom, []string{"G", "end"}},

	{ActionStartAdd, []string{"a"}},
	{ActionStartEdit, []string{"e", "enter"}},
	{ActionCopyToClipboard, []string{"y"}},

	{ActionOpenInspect, []string{"i"}},
	{ActionOpenHistory, []string{"H"}},
	{ActionOpenErrorDetail, []string{"E"}},
	{ActionOpenHelp, []string{"?"}},
}

// formChords leave printable keys unbound so they reach the focused input
var formChords = []chord{
	{ActionFormNextField, []string{"tab", "down"}},
	{ActionFormPrevField, []string{"shift+tab", "up"}},
	{ActionFormToggle, []string{" "}},
	{ActionFormSubmit, []string{"ctrl+s"}},
	{ActionFormCancel, []string{"esc"}},
	{ActionTextPaste, pasteKeys},
}

var gotoChords = []chord{
	{ActionTextCancel, []string{"esc"}},
	{ActionTextSubmit, []string{"enter"}},
	{ActionTextPaste, pasteKeys},
}

var confirmChords = []chord{
	{ActionConfirm, []string{"y", "Y"}},
	{ActionCancel, []string{"n", "N", "esc", "q"}},
}

// viewerChords are shared by the scrollable modals; toggleKey also closes
func viewerChords(toggleKey string) []chord {
	return []chord{
		{ActionCloseModal, []string{"esc", "q", toggleKey}},
		{ActionNavigateUp, []string{"up", "k"}},
		{ActionNavigateDown, []string{"down", "j"}},
		{ActionPageUp, []string{"pgup"}},
		{ActionPageDown, []string{"pgdown"}},
		{ActionGoToTopPrepare, []string{"g"}},
		{ActionGoToTop, []string{"gg", "home"}},
		{ActionGoToBottom, []string{"G", "end"}},
	}
}

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	defaults := map[Context][]chord{
		ContextGlobal:      globalChords,
		ContextNormal:      normalChords,
		ContextForm:        formChords,
		ContextGoto:        gotoChords,
		ContextInspect:     viewerChords("i"),
		ContextHelp:        viewerChords("?"),
		ContextErrorDetail: viewerChords("E"),
		ContextHistory:     append(viewerChords("H"), chord{ActionClearHistory, []string{"C"}}),
		ContextConfirm:     confirmChords,
	}
	for context, chords := range defaults {
		for _, c := range chords {
			r.Bind(context, c.action, c.keys...)
		}
	}

	for n := 1; n <= 9; n++ {
		r.Bind(ContextNormal, SelectCollectionAction(n), string(rune('0'+n)))
	}

	return r
}
