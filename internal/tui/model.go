package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/history"
	"github.com/studiowebux/restdeck/internal/keybinds"
	"github.com/studiowebux/restdeck/internal/types"
	"go.uber.org/zap"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeForm
	ModeGoto
	ModeInspect
	ModeHistory
	ModeHistoryClearConfirm
	ModeHelp
	ModeErrorDetail
)

func (m Mode) String() string {
	switch m {
	case ModeForm:
		return "FORM"
	case ModeGoto:
		return "GOTO"
	case ModeInspect:
		return "INSPECT"
	case ModeHistory, ModeHistoryClearConfirm:
		return "HISTORY"
	case ModeHelp:
		return "HELP"
	case ModeErrorDetail:
		return "ERROR"
	default:
		return "NORMAL"
	}
}

// Model represents the TUI state
type Model struct {
	ctrl           *app.Controller
	keybinds       *keybinds.Registry
	historyManager *history.Manager // nil when history is disabled
	logger         *zap.Logger
	messageTimeout time.Duration

	// ctx is cancelled on quit so in-flight fetches stop
	ctx    context.Context
	cancel context.CancelFunc

	mode   Mode
	width  int
	height int

	// Records of the active collection
	table  table.Model
	rowIDs []int64

	form      *formState
	gotoInput textinput.Model

	// Scrollable modals (inspect, history, error detail) share modalView
	modalView viewport.Model
	helpView  viewport.Model

	historyEntries []types.HistoryEntry

	// Most recently started fetch cycle
	inFlight app.Ticket

	// Last fetch failure of the active cycle, shown by the error detail modal
	fetchErr error

	// Status bar
	statusMsg     string
	fullStatusMsg string
	errorMsg      string
	fullErrorMsg  string
}

// Init starts the first fetch cycle
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// Cleanup cancels in-flight fetches and closes the history database
func (m *Model) Cleanup() {
	m.cancel()
	if m.historyManager != nil {
		if err := m.historyManager.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing history database: %v\n", err)
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()

	case fetchDoneMsg:
		cmd = m.handleFetchDone(msg.outcome)

	case historyLoadedMsg:
		m.historyEntries = msg.entries
		m.modalView.SetContent(m.historyContent())
		m.modalView.GotoTop()
		m.mode = ModeHistory

	case historyClearedMsg:
		m.historyEntries = nil
		m.modalView.SetContent(m.historyContent())
		m.mode = ModeHistory
		cmd = m.setStatusMessage("History cleared")

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""

	case errorMsg:
		cmd = m.setErrorMessage(string(msg))

	default:
		// Cursor blink and other widget messages go to the focused form input
		if m.mode == ModeForm && m.form != nil {
			cmd = m.form.updateFocused(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeInspect:
		return m.renderInspect()
	case ModeHistory:
		return m.renderHistory()
	case ModeHistoryClearConfirm:
		return m.renderHistoryClearConfirmation()
	case ModeErrorDetail:
		return m.renderErrorDetail()
	default:
		return m.renderMain()
	}
}

// handleFetchDone reflects a completed fetch cycle in the table
func (m *Model) handleFetchDone(out app.Outcome) tea.Cmd {
	if out.Discarded {
		return nil
	}

	m.syncTable()
	if out.Err != nil {
		m.fetchErr = out.Err
		return nil
	}

	m.fetchErr = nil
	msg := fmt.Sprintf("Loaded %d %s", len(out.Result.Records), out.Ticket.Key)
	if out.Result.Duration > 0 {
		msg += " in " + executor.FormatDuration(out.Result.Duration)
	}
	return m.setStatusMessage(msg)
}

// Custom message types
type fetchDoneMsg struct {
	outcome app.Outcome
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
}

type historyClearedMsg struct{}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

type errorMsg string

// Helper methods for setting messages with optional timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.fullStatusMsg = msg
	m.statusMsg = truncateMessage(msg)
	m.errorMsg = ""
	m.fullErrorMsg = ""

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})
	}
	return nil
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	m.errorMsg = truncateMessage(msg)

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{}
		})
	}
	return nil
}

// truncateMessage shortens msg for the footer (max MessageMaxLength chars)
func truncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) > MessageMaxLength {
		return string(runes[:MessageMaxLength-3]) + "..."
	}
	return msg
}
