package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	login  key.Binding
	scan   key.Binding
	enter  key.Binding
	back   key.Binding
	logout key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		login:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		scan:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan emails")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		logout: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.login, k.scan, k.enter},
		{k.back, k.logout, k.quit},
	}
}
