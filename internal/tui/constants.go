package tui

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Modal Dimensions - Standard margins for modal dialogs
	ModalWidthMargin       = 6  // Standard horizontal margin (m.width - 6)
	ModalHeightMargin      = 3  // Standard vertical margin (m.height - 3)
	ModalWidthMarginNarrow = 10 // Narrow horizontal margin for focused modals (m.width - 10)

	// Modal Content Calculations
	ModalOverheadLines = 6 // Title (2) + padding (2) + border (2)
	ModalFooterLines   = 2 // Footer + blank line

	// Main layout
	SidebarWidth         = 24 // Collection list including border
	StatusBarHeight      = 1
	MainViewHeightOffset = 3 // m.height - 3 = status bar + panel borders
	TableHeaderLines     = 4 // Title, blank line, header row, header border

	// Table columns
	ActionsColumnWidth = 8
	MinColumnWidth     = 8

	// Form inputs
	LongTextHeight = 4 // Rows of a longtext textarea
	FormLabelWidth = 16

	// MessageMaxLength truncates status bar messages; the full text stays available
	MessageMaxLength = 100
)
