package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/restdeck/internal/types"
)

var (
	titleStyle  = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	markedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// pickerKeys are the keys the picker handles before the list sees them
type pickerKeys struct {
	toggle  key.Binding
	confirm key.Binding
	cancel  key.Binding
}

func newPickerKeys() pickerKeys {
	return pickerKeys{
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "dump")),
		cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q/esc", "cancel")),
	}
}

// collectionItem is one row of the picker
type collectionItem struct {
	collection types.Collection
	marked     bool
}

func (i collectionItem) FilterValue() string {
	return i.collection.Key + " " + i.collection.Title
}

func (i collectionItem) Title() string {
	mark := "[ ]"
	if i.marked {
		mark = markedStyle.Render("[x]")
	}
	return fmt.Sprintf("%s %s", mark, i.collection.Title)
}

func (i collectionItem) Description() string {
	names := make([]string, 0, len(i.collection.Fields))
	for _, f := range i.collection.DisplayFields() {
		names = append(names, f.Name)
	}
	return fmt.Sprintf("%s  (%s)", i.collection.URL, strings.Join(names, ", "))
}

// picker chooses one or more collections to dump
type picker struct {
	list      list.Model
	keys      pickerKeys
	chosen    []string
	cancelled bool
}

func newPicker(collections []types.Collection) picker {
	items := make([]list.Item, 0, len(collections))
	for _, c := range collections {
		items = append(items, collectionItem{collection: c})
	}

	keys := newPickerKeys()
	l := list.New(items, list.NewDefaultDelegate(), 80, 14)
	l.Title = "Select collections to dump"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.toggle, keys.confirm}
	}

	return picker{list: l, keys: keys}
}

func (p picker) Init() tea.Cmd {
	return nil
}

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(msg.Width, min(msg.Height, 20))
		return p, nil

	case tea.KeyMsg:
		// The list owns every key while a filter is being typed
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, p.keys.cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.toggle):
			if it, ok := p.list.SelectedItem().(collectionItem); ok {
				it.marked = !it.marked
				return p, p.list.SetItem(p.list.Index(), it)
			}
			return p, nil

		case key.Matches(msg, p.keys.confirm):
			p.chosen = p.marked()
			if len(p.chosen) == 0 {
				if it, ok := p.list.SelectedItem().(collectionItem); ok {
					p.chosen = []string{it.collection.Key}
				}
			}
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

// marked returns the keys of marked collections in registry order
func (p picker) marked() []string {
	var keys []string
	for _, li := range p.list.Items() {
		if it, ok := li.(collectionItem); ok && it.marked {
			keys = append(keys, it.collection.Key)
		}
	}
	return keys
}

func (p picker) View() string {
	if p.cancelled || p.chosen != nil {
		return ""
	}
	return p.list.View()
}

// PromptCollections shows an interactive picker and returns the chosen collection keys.
// Enter without marks picks the highlighted collection.
func PromptCollections(collections []types.Collection) ([]string, error) {
	final, err := tea.NewProgram(newPicker(collections), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("error running selector: %w", err)
	}

	result := final.(picker)
	if result.cancelled || len(result.chosen) == 0 {
		return nil, fmt.Errorf("selection cancelled")
	}
	return result.chosen, nil
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
