package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Skip       key.Binding
	Restart    key.Binding
	Difficulty key.Binding
	Mode       key.Binding
	Character  key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Skip: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "skip word"),
		),
		Restart: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "new sentence"),
		),
		Difficulty: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "difficulty"),
		),
		Mode: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "solo/duel"),
		),
		Character: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "character"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Skip, k.Restart, k.Difficulty, k.Mode, k.Character, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
