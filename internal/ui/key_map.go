package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Printable keys belong to the search input, so every command uses a modifier or a navigation key.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	loadMore key.Binding
	like     key.Binding
	clear    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "up")),
		down:     key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "down")),
		loadMore: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "load more")),
		like:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "like")),
		clear:    key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
		quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.loadMore, k.like, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.loadMore, k.like},
		{k.clear, k.quit},
	}
}
