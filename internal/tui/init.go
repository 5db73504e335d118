package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/restdeck/internal/app"
	"github.com/studiowebux/restdeck/internal/history"
	"github.com/studiowebux/restdeck/internal/keybinds"
	"go.uber.org/zap"
)

// Options carries the collaborators of the TUI besides the controller
type Options struct {
	Keybinds       *keybinds.Registry // defaults when nil
	History        *history.Manager   // history modal disabled when nil
	Logger         *zap.Logger
	MessageTimeout time.Duration
}

// New creates a new TUI model
func New(ctrl *app.Controller, opts Options) Model {
	if opts.Keybinds == nil {
		opts.Keybinds = keybinds.NewDefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := table.New(table.WithFocused(true))
	t.SetStyles(tableStyles())

	gotoInput := textinput.New()
	gotoInput.Prompt = ":"
	gotoInput.Placeholder = "collection"
	gotoInput.CharLimit = 64

	return Model{
		ctrl:           ctrl,
		keybinds:       opts.Keybinds,
		historyManager: opts.History,
		logger:         opts.Logger,
		messageTimeout: opts.MessageTimeout,
		ctx:            ctx,
		cancel:         cancel,
		mode:           ModeNormal,
		table:          t,
		gotoInput:      gotoInput,
		modalView:      viewport.New(80, 20),
		helpView:       viewport.New(80, 20),
	}
}

// Run starts the TUI and blocks until the user quits
func Run(ctrl *app.Controller, opts Options) error {
	m := New(ctrl, opts)
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
