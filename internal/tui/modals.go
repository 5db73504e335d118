package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/keybinds"
)

// renderModal draws a bordered, centered modal around a scrollable body
func (m Model) renderModal(title, body, footer string, border lipgloss.AdaptiveColor, widthMargin int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(m.width - widthMargin).
		Height(m.height - ModalHeightMargin).
		Padding(1, 2).
		Render(styleTitle.Render(title) + "\n\n" + body + "\n\n" + styleSubtle.Render(footer))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}

// viewerFooter lists the scroll and close keys of a viewer context
func (m Model) viewerFooter(context keybinds.Context, extra ...string) string {
	parts := []string{
		m.bindingLabel(context, keybinds.ActionNavigateUp) + " " + m.bindingLabel(context, keybinds.ActionNavigateDown) + " scroll",
	}
	parts = append(parts, extra...)
	parts = append(parts, m.bindingLabel(context, keybinds.ActionCloseModal)+" close")
	return strings.Join(parts, " | ")
}

// handleViewerKeys handles scrolling and closing of a read-only modal
func (m *Model) handleViewerKeys(context keybinds.Context, vp *viewport.Model, msg tea.KeyMsg) tea.Cmd {
	action, _, partial := m.keybinds.MatchMultiKey(context, msg.String())
	if partial {
		return nil
	}
	return m.handleViewerAction(action, vp)
}

func (m *Model) handleViewerAction(action keybinds.Action, vp *viewport.Model) tea.Cmd {
	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		vp.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		vp.ScrollDown(1)
	case keybinds.ActionPageUp:
		vp.PageUp()
	case keybinds.ActionPageDown:
		vp.PageDown()
	case keybinds.ActionGoToTop:
		vp.GotoTop()
	case keybinds.ActionGoToBottom:
		vp.GotoBottom()
	}
	return nil
}

// openInspect shows the selected record as highlighted JSON
func (m *Model) openInspect() tea.Cmd {
	rec, ok := m.selectedRecord()
	if !ok {
		return m.setErrorMessage("No record selected")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return m.setErrorMessage(fmt.Sprintf("Failed to encode record: %v", err))
	}

	m.modalView.SetContent(highlightJSON(string(data)))
	m.modalView.GotoTop()
	m.mode = ModeInspect
	return nil
}

// highlightJSON colors source for the terminal, falling back to plain text
func highlightJSON(source string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, source, "json", "terminal256", "monokai"); err != nil {
		return source
	}
	return b.String()
}

func (m Model) renderInspect() string {
	id := ""
	if rec, ok := m.selectedRecord(); ok {
		if n, ok := rec.ID(); ok {
			id = fmt.Sprintf(" #%d", n)
		}
	}
	title := fmt.Sprintf("Inspect %s%s", m.ctrl.Active().Title, id)
	footer := m.viewerFooter(keybinds.ContextInspect)
	return m.renderModal(title, m.modalView.View(), footer, colorBlue, ModalWidthMargin)
}

// openErrorDetail explains the last failed fetch of the active collection
func (m *Model) openErrorDetail() tea.Cmd {
	if m.fetchErr == nil {
		return m.setStatusMessage("No fetch error to show")
	}

	var b strings.Builder
	b.WriteString(styleError.Render(categorizeFetchError(m.fetchErr)))
	b.WriteString("\n\n")

	var fetchErr *executor.FetchError
	if errors.As(m.fetchErr, &fetchErr) {
		b.WriteString(fmt.Sprintf("URL:    %s\n", fetchErr.URL))
		if fetchErr.Status != 0 {
			b.WriteString(fmt.Sprintf("Status: %s\n", fetchErr.StatusText))
		}
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("Raw error:"))
	b.WriteString("\n")
	b.WriteString(m.fetchErr.Error())

	m.modalView.SetContent(b.String())
	m.modalView.GotoTop()
	m.mode = ModeErrorDetail
	return nil
}

func (m Model) renderErrorDetail() string {
	footer := m.viewerFooter(keybinds.ContextErrorDetail)
	return m.renderModal("Fetch Error", m.modalView.View(), footer, colorRed, ModalWidthMargin)
}

// historyContent formats the loaded fetch log, newest first
func (m Model) historyContent() string {
	if len(m.historyEntries) == 0 {
		return styleSubtle.Render("No fetches recorded yet")
	}

	var b strings.Builder
	for _, e := range m.historyEntries {
		status := styleSuccess.Render(fmt.Sprintf("%3d", e.Status))
		switch {
		case e.Status == 0:
			status = styleError.Render("ERR")
		case !executor.IsSuccessStatus(e.Status):
			status = styleError.Render(fmt.Sprintf("%3d", e.Status))
		}

		line := fmt.Sprintf("%s  %s  %-8s %6s %9s %4d records",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			e.Collection,
			executor.FormatDuration(e.Duration),
			executor.FormatSize(e.Size),
			e.RecordCount,
		)
		if e.Discarded {
			line += styleWarning.Render("  discarded")
		}
		if e.SessionID == m.ctrl.SessionID() {
			line += styleSubtle.Render("  (this session)")
		}
		b.WriteString(line)
		b.WriteString("\n")
		if e.Error != "" {
			b.WriteString("    ")
			b.WriteString(styleError.Render(e.Error))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderHistory() string {
	title := fmt.Sprintf("Fetch History (%d)", len(m.historyEntries))
	footer := m.viewerFooter(keybinds.ContextHistory,
		m.bindingLabel(keybinds.ContextHistory, keybinds.ActionClearHistory)+" clear")
	return m.renderModal(title, m.modalView.View(), footer, colorBlue, ModalWidthMargin)
}

func (m Model) renderHistoryClearConfirmation() string {
	body := styleWarning.Render(fmt.Sprintf("Delete all %d history entries?", len(m.historyEntries)))
	footer := fmt.Sprintf("%s yes | %s no",
		m.bindingLabel(keybinds.ContextConfirm, keybinds.ActionConfirm),
		m.bindingLabel(keybinds.ContextConfirm, keybinds.ActionCancel))
	return m.renderModal("Clear History", body, footer, colorRed, ModalWidthMarginNarrow)
}

// helpSections orders the contexts shown in the help modal
var helpSections = []struct {
	title   string
	context keybinds.Context
}{
	{"Collections", keybinds.ContextNormal},
	{"Form", keybinds.ContextForm},
	{"Goto", keybinds.ContextGoto},
	{"History", keybinds.ContextHistory},
	{"Viewers", keybinds.ContextInspect},
	{"Global", keybinds.ContextGlobal},
}

// openHelp lists the active keybindings grouped by action
func (m *Model) openHelp() {
	var b strings.Builder
	for _, section := range helpSections {
		byAction := make(map[keybinds.Action][]string)
		for _, binding := range m.keybinds.ListBindings(section.context) {
			if binding.Action == keybinds.ActionGoToTopPrepare {
				continue
			}
			key := binding.Key
			if key == " " {
				key = "space"
			}
			byAction[binding.Action] = append(byAction[binding.Action], key)
		}
		if len(byAction) == 0 {
			continue
		}

		lines := make([]string, 0, len(byAction))
		for action, keys := range byAction {
			lines = append(lines, fmt.Sprintf("  %-28s %s", keybinds.Describe(action), strings.Join(keys, ", ")))
		}
		sort.Strings(lines)

		b.WriteString(styleTitle.Render(section.title))
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}

	m.helpView.SetContent(strings.TrimRight(b.String(), "\n"))
	m.helpView.GotoTop()
	m.mode = ModeHelp
}

func (m Model) renderHelp() string {
	footer := m.viewerFooter(keybinds.ContextHelp)
	return m.renderModal("Keyboard Shortcuts", m.helpView.View(), footer, colorBlue, ModalWidthMarginNarrow)
}
