package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/restdeck/internal/keybinds"
	"github.com/studiowebux/restdeck/internal/view"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleButton = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
		Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
		Bold(false)
	return s
}

// renderMain renders the collection sidebar, the content panel and the status bar
func (m Model) renderMain() string {
	vm := view.Render(m.ctrl.Snapshot())

	panelHeight := m.height - MainViewHeightOffset
	contentWidth := m.contentWidth()

	sidebarBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(SidebarWidth).
		Height(panelHeight).
		Render(m.renderSidebar(vm.Nav))

	contentBorder := colorGreen
	if vm.Error != "" {
		contentBorder = colorRed
	}
	contentBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(contentBorder).
		Width(contentWidth).
		Height(panelHeight).
		Padding(0, 1).
		Render(m.renderContent(vm, contentWidth-2))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, sidebarBox, contentBox)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		mainView,
		m.renderStatusBar(vm),
	)
}

// renderSidebar lists the registered collections with their jump keys
func (m Model) renderSidebar(nav []view.NavItem) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Collections"))
	b.WriteString("\n\n")

	for i, item := range nav {
		line := fmt.Sprintf(" %d %s", i+1, item.Title)
		if i >= 9 {
			line = "   " + item.Title
		}
		line = lipgloss.NewStyle().Width(SidebarWidth).Render(line)
		if item.Active {
			line = styleSelected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderContent shows the form, the table or the request state of the active collection
func (m Model) renderContent(vm view.Model, width int) string {
	if m.mode == ModeForm && m.form != nil {
		return m.renderForm(width)
	}

	var body string
	switch {
	case vm.Loading:
		body = styleWarning.Render(view.LoadingText)
	case vm.Error != "":
		body = styleError.Render(vm.Error) + "\n\n" + styleSubtle.Render(fmt.Sprintf("%s details | %s retry",
			m.bindingLabel(keybinds.ContextNormal, keybinds.ActionOpenErrorDetail),
			m.bindingLabel(keybinds.ContextNormal, keybinds.ActionReload)))
	case len(m.rowIDs) == 0:
		body = styleSubtle.Render(fmt.Sprintf("No records | %s add",
			m.bindingLabel(keybinds.ContextNormal, keybinds.ActionStartAdd)))
	default:
		body = m.table.View()
	}

	return styleTitle.Render(vm.Title) + "\n\n" + body
}

// renderStatusBar shows mode and record count on the left, messages or input on the right
func (m Model) renderStatusBar(vm view.Model) string {
	left := fmt.Sprintf("[%s] %s", m.mode, vm.Title)
	if vm.Table != nil {
		left += fmt.Sprintf(" (%d)", len(vm.Table.Rows))
	}

	right := ""
	switch {
	case m.mode == ModeGoto:
		right = m.gotoInput.View()
	case m.errorMsg != "":
		right = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right = styleSuccess.Render(m.statusMsg)
	default:
		right = styleSubtle.Render(fmt.Sprintf("%s help | %s quit",
			m.bindingLabel(keybinds.ContextNormal, keybinds.ActionOpenHelp),
			m.bindingLabel(keybinds.ContextNormal, keybinds.ActionQuit)))
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// contentWidth is the width of the content panel; it MUST match renderMain
func (m Model) contentWidth() int {
	return max(MinColumnWidth*2, m.width-SidebarWidth-4)
}

// updateLayout resizes widgets after a window size change
func (m *Model) updateLayout() {
	inner := m.contentWidth() - 2
	m.table.SetWidth(inner)
	m.table.SetHeight(max(3, m.height-MainViewHeightOffset-2))

	m.modalView.Width = m.width - ModalWidthMargin - 4
	m.modalView.Height = max(3, m.height-ModalHeightMargin-ModalOverheadLines-ModalFooterLines)
	m.helpView.Width = m.width - ModalWidthMarginNarrow - 4
	m.helpView.Height = m.modalView.Height

	m.gotoInput.Width = max(10, m.width/3)

	m.syncTable()
}

// syncTable rebuilds the table rows from the controller's active store
func (m *Model) syncTable() {
	vm := view.Render(m.ctrl.Snapshot())
	cursor := m.table.Cursor()

	// Rows must be cleared before columns change or the table renders
	// rows against the wrong column count
	m.table.SetRows(nil)
	m.rowIDs = nil
	if vm.Table == nil {
		return
	}

	m.table.SetColumns(m.tableColumns(vm.Table.Columns))

	rows := make([]table.Row, len(vm.Table.Rows))
	ids := make([]int64, len(vm.Table.Rows))
	for i, r := range vm.Table.Rows {
		cells := make(table.Row, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = flattenCell(c)
		}
		rows[i] = cells
		ids[i] = r.ID
	}
	m.table.SetRows(rows)
	m.rowIDs = ids

	if len(rows) > 0 {
		m.table.SetCursor(min(max(cursor, 0), len(rows)-1))
	}
}

// tableColumns spreads the panel width across the display fields
func (m Model) tableColumns(columns []view.Column) []table.Column {
	dataCols := 0
	for _, c := range columns {
		if !c.Action {
			dataCols++
		}
	}

	// Each cell carries one space of padding on both sides
	available := m.contentWidth() - 2 - ActionsColumnWidth - 2*len(columns)
	width := MinColumnWidth
	if dataCols > 0 {
		width = max(MinColumnWidth, available/dataCols)
	}

	out := make([]table.Column, len(columns))
	for i, c := range columns {
		w := width
		if c.Action {
			w = ActionsColumnWidth
		}
		out[i] = table.Column{Title: c.Label, Width: w}
	}
	return out
}

// flattenCell keeps multi-line values on one table row
func flattenCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// bindingLabel returns the keys bound to action, readable in hints
func (m Model) bindingLabel(context keybinds.Context, action keybinds.Action) string {
	keys := m.keybinds.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	labels := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		labels[i] = k
	}
	return strings.Join(labels, "/")
}
