package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	toggle    key.Binding
	selectAll key.Binding
	embed     key.Binding
	open      key.Binding
	transfer  key.Binding
	reload    key.Binding
	login     key.Binding
	filter    key.Binding
	back      key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:    key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
		selectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		embed:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open preview")),
		transfer:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer")),
		reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload/recheck login")),
		login:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.embed, k.transfer, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.selectAll},
		{k.embed, k.open, k.transfer, k.reload},
		{k.login, k.filter, k.back, k.quit},
	}
}
