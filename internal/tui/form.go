package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/keybinds"
	"github.com/studiowebux/restdeck/internal/types"
	"github.com/studiowebux/restdeck/internal/view"
)

// formInput is one editable field; which widget is live depends on field.Kind
type formInput struct {
	field view.FormField
	text  textinput.Model
	area  textarea.Model
	value string // boolean fields: "true", "false" or "" when unset
}

// formState mirrors the controller's form with bubbles widgets.
// Every edit is pushed to the controller, which owns the pending values.
type formState struct {
	ctrl        *app.Controller
	title       string
	submitLabel string
	inputs      []*formInput
	focus       int
}

func newFormState(ctrl *app.Controller, f *view.Form, width int) *formState {
	fs := &formState{
		ctrl:        ctrl,
		title:       f.Title,
		submitLabel: f.SubmitLabel,
	}

	inputWidth := max(MinColumnWidth, width-FormLabelWidth-4)
	for _, field := range f.Fields {
		in := &formInput{field: field, value: field.Value}
		switch field.Kind {
		case types.KindText:
			in.text = textinput.New()
			in.text.Prompt = ""
			in.text.Placeholder = field.Placeholder
			in.text.Width = inputWidth
			in.text.SetValue(field.Value)
		case types.KindLongText:
			in.area = textarea.New()
			in.area.Placeholder = field.Placeholder
			in.area.ShowLineNumbers = false
			in.area.SetWidth(inputWidth)
			in.area.SetHeight(LongTextHeight)
			in.area.SetValue(field.Value)
		}
		fs.inputs = append(fs.inputs, in)
	}
	return fs
}

func (f *formState) focused() *formInput {
	if f.focus < 0 || f.focus >= len(f.inputs) {
		return nil
	}
	return f.inputs[f.focus]
}

// focusField moves focus to index i
func (f *formState) focusField(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if cur := f.focused(); cur != nil {
		switch cur.field.Kind {
		case types.KindText:
			cur.text.Blur()
		case types.KindLongText:
			cur.area.Blur()
		}
	}

	f.focus = i
	in := f.inputs[i]
	switch in.field.Kind {
	case types.KindText:
		return in.text.Focus()
	case types.KindLongText:
		return in.area.Focus()
	}
	return nil
}

// move shifts focus by delta, wrapping around
func (f *formState) move(delta int) tea.Cmd {
	n := len(f.inputs)
	if n == 0 {
		return nil
	}
	return f.focusField(((f.focus+delta)%n + n) % n)
}

// toggle flips the focused boolean field; false when the field is not boolean
func (f *formState) toggle() bool {
	in := f.focused()
	if in == nil || in.field.Kind != types.KindBoolean {
		return false
	}
	next := in.value != "true"
	in.value = fmt.Sprint(next)
	f.ctrl.UpdateField(in.field.Name, next)
	return true
}

// updateFocused forwards msg to the focused widget and pushes any change
func (f *formState) updateFocused(msg tea.Msg) tea.Cmd {
	in := f.focused()
	if in == nil {
		return nil
	}

	var cmd tea.Cmd
	switch in.field.Kind {
	case types.KindText:
		before := in.text.Value()
		in.text, cmd = in.text.Update(msg)
		if v := in.text.Value(); v != before {
			f.ctrl.UpdateField(in.field.Name, v)
		}
	case types.KindLongText:
		before := in.area.Value()
		in.area, cmd = in.area.Update(msg)
		if v := in.area.Value(); v != before {
			f.ctrl.UpdateField(in.field.Name, v)
		}
	}
	return cmd
}

// paste inserts text into the focused text field
func (f *formState) paste(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	return f.updateFocused(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Paste: true})
}

// openForm builds the widgets for the controller's freshly opened form
func (m *Model) openForm() tea.Cmd {
	vm := view.Render(m.ctrl.Snapshot())
	if vm.Form == nil {
		return nil
	}
	m.form = newFormState(m.ctrl, vm.Form, m.contentWidth())
	m.mode = ModeForm
	return m.form.focusField(0)
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = ModeNormal
}

// handleFormKeys handles keyboard input while the add/edit form is open.
// Keys without a form binding are typed into the focused input.
func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	if m.form == nil {
		m.mode = ModeNormal
		return nil
	}

	action, ok := m.keybinds.Match(keybinds.ContextForm, msg.String())
	if ok {
		switch action {
		case keybinds.ActionFormNextField:
			return m.form.move(1)

		case keybinds.ActionFormPrevField:
			return m.form.move(-1)

		case keybinds.ActionFormToggle:
			if m.form.toggle() {
				return nil
			}

		case keybinds.ActionFormSubmit:
			return m.submitForm()

		case keybinds.ActionFormCancel:
			m.cancelForm()
			return m.setStatusMessage("Form cancelled")

		case keybinds.ActionTextPaste:
			text, err := clipboard.ReadAll()
			if err != nil {
				return m.setErrorMessage(fmt.Sprintf("Failed to read clipboard: %v", err))
			}
			return m.form.paste(text)
		}
	}

	return m.form.updateFocused(msg)
}

// renderForm renders the add/edit form inside the content panel
func (m Model) renderForm(width int) string {
	f := m.form
	var b strings.Builder

	b.WriteString(styleTitle.Render(f.title))
	b.WriteString("\n\n")

	for i, in := range f.inputs {
		label := in.field.Label
		if in.field.Required {
			label += "*"
		}
		labelStyle := styleSubtle
		marker := "  "
		if i == f.focus {
			labelStyle = styleTitle
			marker = styleSuccess.Render("> ")
		}
		labelCell := lipgloss.NewStyle().Width(FormLabelWidth).Render(labelStyle.Render(label))

		var input string
		switch in.field.Kind {
		case types.KindText:
			input = in.text.View()
		case types.KindLongText:
			input = in.area.View()
		case types.KindBoolean:
			input = renderOptions(in.field.Options, in.value)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, marker, labelCell, input))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleButton.Render("[ " + f.submitLabel + " ]"))
	b.WriteString("  ")
	b.WriteString(styleSubtle.Render(m.formHint()))

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

// renderOptions draws the Yes/No choice of a boolean field
func renderOptions(options []view.Option, value string) string {
	parts := make([]string, 0, len(options))
	for _, opt := range options {
		mark := "( )"
		if opt.Value == value {
			mark = "(•)"
		}
		parts = append(parts, mark+" "+opt.Label)
	}
	return strings.Join(parts, "  ")
}

func (m Model) formHint() string {
	return fmt.Sprintf("%s submit | %s cancel | %s next | %s toggle",
		m.bindingLabel(keybinds.ContextForm, keybinds.ActionFormSubmit),
		m.bindingLabel(keybinds.ContextForm, keybinds.ActionFormCancel),
		m.bindingLabel(keybinds.ContextForm, keybinds.ActionFormNextField),
		m.bindingLabel(keybinds.ContextForm, keybinds.ActionFormToggle),
	)
}
