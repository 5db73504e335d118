package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/history"
	"github.com/studiowebux/restdeck/internal/types"
	"go.uber.org/zap"
)

// fetch runs one fetch cycle off the event loop
func (m *Model) fetch(t app.Ticket) tea.Cmd {
	m.inFlight = t
	ctx := m.ctx
	ctrl := m.ctrl
	return func() tea.Msg {
		return fetchDoneMsg{outcome: ctrl.Load(ctx, t)}
	}
}

// reload starts a new cycle for the active collection
func (m *Model) reload() tea.Cmd {
	t := m.ctrl.Reload()
	m.fetchErr = nil
	m.syncTable()
	return m.fetch(t)
}

// selectCollection navigates to key; any open form is dropped by the controller
func (m *Model) selectCollection(key string) tea.Cmd {
	t, err := m.ctrl.SelectCollection(key)
	if err != nil {
		return m.setErrorMessage(err.Error())
	}
	m.form = nil
	m.fetchErr = nil
	m.mode = ModeNormal
	m.table.SetCursor(0)
	m.syncTable()
	return m.fetch(t)
}

// selectedRecord returns the record under the table cursor
func (m *Model) selectedRecord() (types.Record, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rowIDs) {
		return nil, false
	}
	id := m.rowIDs[cursor]
	for _, rec := range m.ctrl.Records(m.ctrl.Active().Key) {
		if rid, ok := rec.ID(); ok && rid == id {
			return rec, true
		}
	}
	return nil, false
}

// startAdd opens the empty add form
func (m *Model) startAdd() tea.Cmd {
	m.ctrl.StartAdd()
	return m.openForm()
}

// startEdit opens the form on the selected record
func (m *Model) startEdit() tea.Cmd {
	rec, ok := m.selectedRecord()
	if !ok {
		return m.setErrorMessage("No record selected")
	}
	if err := m.ctrl.StartEdit(rec); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Cannot edit record: %v", err))
	}
	return m.openForm()
}

// submitForm applies the form; validation failures keep it open
func (m *Model) submitForm() tea.Cmd {
	mode := m.ctrl.Form().Mode

	err := m.ctrl.Submit()
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return m.setErrorMessage(fmt.Sprintf("Required: %s", strings.Join(verr.Labels, ", ")))
	case err != nil:
		return m.setErrorMessage(err.Error())
	}

	m.closeForm()
	m.syncTable()
	if mode == app.FormAdd {
		m.table.GotoTop()
		return m.setStatusMessage("Record added")
	}
	return m.setStatusMessage("Record updated")
}

// cancelForm discards pending values
func (m *Model) cancelForm() {
	m.ctrl.CancelForm()
	m.closeForm()
}

// copySelected copies the selected record as indented JSON
func (m *Model) copySelected() tea.Cmd {
	rec, ok := m.selectedRecord()
	if !ok {
		return m.setErrorMessage("No record selected")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to encode record: %v", err))
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to copy to clipboard: %v", err))
	}
	id, _ := rec.ID()
	return m.setStatusMessage(fmt.Sprintf("Record %d copied to clipboard", id))
}

// loadHistory reads the fetch log for the history modal
func (m *Model) loadHistory() tea.Cmd {
	mgr := m.historyManager
	if mgr == nil {
		return m.setErrorMessage("Fetch history is disabled (history: false in config.yaml)")
	}
	return func() tea.Msg {
		entries, err := mgr.Load(history.DefaultLimit)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load history: %v", err))
		}
		return historyLoadedMsg{entries: entries}
	}
}

// clearHistory deletes every fetch log entry
func (m *Model) clearHistory() tea.Cmd {
	mgr := m.historyManager
	logger := m.logger
	return func() tea.Msg {
		if err := mgr.Clear(); err != nil {
			return errorMsg(fmt.Sprintf("Failed to clear history: %v", err))
		}
		logger.Info("fetch history cleared")
		return historyClearedMsg{}
	}
}

func (m *Model) logKeyError(action string, err error) {
	m.logger.Debug("action failed", zap.String("action", action), zap.Error(err))
}
