package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Record     key.Binding
	Save       key.Binding
	Clear      key.Binding
	WindowUp   key.Binding
	WindowDown key.Binding
	BlocksUp   key.Binding
	BlocksDown key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Save, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Save, k.Clear},
		{k.WindowUp, k.WindowDown, k.BlocksUp, k.BlocksDown},
		{k.Help, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Record: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "record"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	WindowUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "wider window"),
	),
	WindowDown: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "narrower window"),
	),
	BlocksUp: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "more blocks"),
	),
	BlocksDown: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "fewer blocks"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
