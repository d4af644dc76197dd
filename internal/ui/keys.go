package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Hit       key.Binding
	Stay      key.Binding
	Freeze    key.Binding
	FlipThree key.Binding
	Advance   key.Binding
	Restart   key.Binding
	Up        key.Binding
	Down      key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Hit:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
		Stay:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stay")),
		Freeze:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "freeze")),
		FlipThree: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "flip three")),
		Advance:   key.NewBinding(key.WithKeys("enter", "n"), key.WithHelp("enter", "start / next round")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hit, k.Stay, k.Freeze, k.FlipThree, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hit, k.Stay, k.Freeze, k.FlipThree},
		{k.Advance, k.Restart},
		{k.Up, k.Down, k.Cancel},
		{k.Help, k.Quit},
	}
}
