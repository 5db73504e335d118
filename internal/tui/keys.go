package tui

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/restdeck/internal/keybinds"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	// Mode-specific handling
	switch m.mode {
	case ModeNormal:
		return m.handleNormalKeys(msg)
	case ModeForm:
		return m.handleFormKeys(msg)
	case ModeGoto:
		return m.handleGotoKeys(msg)
	case ModeInspect:
		return m.handleViewerKeys(keybinds.ContextInspect, &m.modalView, msg)
	case ModeErrorDetail:
		return m.handleViewerKeys(keybinds.ContextErrorDetail, &m.modalView, msg)
	case ModeHelp:
		return m.handleViewerKeys(keybinds.ContextHelp, &m.helpView, msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHistoryClearConfirm:
		return m.handleHistoryClearConfirmKeys(msg)
	}

	return nil
}

// handleNormalKeys handles keyboard input on the collection table
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keybinds.MatchMultiKey(keybinds.ContextNormal, msg.String())
	if partial || !ok {
		return nil
	}

	if i, isSelect := keybinds.CollectionIndex(action); isSelect {
		keys := m.ctrl.Registry().Keys()
		if i >= len(keys) {
			return nil
		}
		return m.selectCollection(keys[i])
	}

	active := m.ctrl.Active().Key

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit

	case keybinds.ActionNextCollection:
		return m.selectCollection(m.ctrl.Registry().Neighbor(active, 1))

	case keybinds.ActionPrevCollection:
		return m.selectCollection(m.ctrl.Registry().Neighbor(active, -1))

	case keybinds.ActionOpenGoto:
		m.mode = ModeGoto
		m.gotoInput.SetValue("")
		return m.gotoInput.Focus()

	case keybinds.ActionReload:
		return m.reload()

	case keybinds.ActionNavigateUp:
		m.table.MoveUp(1)

	case keybinds.ActionNavigateDown:
		m.table.MoveDown(1)

	case keybinds.ActionPageUp:
		m.table.MoveUp(m.table.Height())

	case keybinds.ActionPageDown:
		m.table.MoveDown(m.table.Height())

	case keybinds.ActionGoToTop:
		m.table.GotoTop()

	case keybinds.ActionGoToBottom:
		m.table.GotoBottom()

	case keybinds.ActionStartAdd:
		if m.ctrl.Request().Loading {
			return m.setErrorMessage("Wait for the collection to load")
		}
		return m.startAdd()

	case keybinds.ActionStartEdit:
		return m.startEdit()

	case keybinds.ActionCopyToClipboard:
		return m.copySelected()

	case keybinds.ActionOpenInspect:
		return m.openInspect()

	case keybinds.ActionOpenHistory:
		return m.loadHistory()

	case keybinds.ActionOpenErrorDetail:
		return m.openErrorDetail()

	case keybinds.ActionOpenHelp:
		m.openHelp()
	}

	return nil
}

// handleGotoKeys handles the fuzzy collection prompt
func (m *Model) handleGotoKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextGoto, msg.String())
	if ok {
		switch action {
		case keybinds.ActionTextCancel:
			m.gotoInput.Blur()
			m.mode = ModeNormal
			return nil

		case keybinds.ActionTextSubmit:
			input := m.gotoInput.Value()
			m.gotoInput.Blur()
			m.mode = ModeNormal
			key, err := m.ctrl.Registry().Resolve(input)
			if err != nil {
				m.logKeyError(string(action), err)
				return m.setErrorMessage(fmt.Sprintf("No collection matches %q", input))
			}
			return m.selectCollection(key)

		case keybinds.ActionTextPaste:
			text, err := clipboard.ReadAll()
			if err != nil {
				return m.setErrorMessage(fmt.Sprintf("Failed to read clipboard: %v", err))
			}
			m.gotoInput.SetValue(m.gotoInput.Value() + text)
			m.gotoInput.CursorEnd()
			return nil
		}
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return cmd
}

// handleHistoryKeys handles the fetch history modal
func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	action, _, partial := m.keybinds.MatchMultiKey(keybinds.ContextHistory, msg.String())
	if partial {
		return nil
	}
	if action == keybinds.ActionClearHistory {
		if len(m.historyEntries) == 0 {
			return m.setStatusMessage("History is already empty")
		}
		m.mode = ModeHistoryClearConfirm
		return nil
	}
	return m.handleViewerAction(action, &m.modalView)
}

// handleHistoryClearConfirmKeys asks before deleting the fetch log
func (m *Model) handleHistoryClearConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionConfirm:
		return m.clearHistory()
	case keybinds.ActionCancel:
		m.mode = ModeHistory
	}
	return nil
}
