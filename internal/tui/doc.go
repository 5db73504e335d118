/*
Package tui implements the terminal user interface for restdeck.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: UI state (mode, widgets, status messages) around an app.Controller
  - Update: Processes messages and returns commands
  - View: Renders view.Render(controller.Snapshot()) to the terminal

The controller owns every piece of collection state. The TUI never edits
records itself; it calls controller operations and re-renders.

# Key Components

  - model.go: Mode enum, Model struct, Update and View
  - keys.go: Keyboard input handling and keybind routing
  - form.go: Add/edit form widgets (textinput, textarea, Yes/No toggle)
  - render.go: Sidebar, record table and status bar
  - modals.go: Inspect, fetch history, error detail and help modals
  - actions.go: Fetch commands, clipboard and history side effects

# Threading Model

The TUI runs in Bubble Tea's event loop. Each fetch cycle runs in a tea.Cmd
goroutine calling Controller.Load, which reconciles under the controller's
lock and reports back with a fetchDoneMsg. Results of superseded cycles come
back marked discarded and are ignored.

# Example Usage

	ctrl := app.New(reg, client, app.WithLogger(logger))
	if err := tui.Run(ctrl, tui.Options{Keybinds: keys, Logger: logger}); err != nil {
		log.Fatal(err)
	}
*/
package tui
