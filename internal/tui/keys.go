package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the panel keybindings.
type KeyMap struct {
	Run               key.Binding
	Reset             key.Binding
	NextField         key.Binding
	ToggleIntegration key.Binding
	ToggleAutoClose   key.Binding
	ToggleVTE         key.Binding
	FocusPane         key.Binding
	ScrollUp          key.Binding
	ScrollDown        key.Binding
	Quit              key.Binding
}

// DefaultKeyMap returns the built-in bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset stats"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		ToggleIntegration: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "shell integration"),
		),
		ToggleAutoClose: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "auto close"),
		),
		ToggleVTE: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "vte checks"),
		),
		FocusPane: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "switch pane"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.NextField, k.ToggleIntegration, k.ToggleAutoClose, k.ToggleVTE, k.Reset, k.FocusPane, k.Quit}
}
