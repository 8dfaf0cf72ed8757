package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit          key.Binding
	ForceQuit     key.Binding
	Refresh       key.Binding
	Up            key.Binding
	Down          key.Binding
	Top           key.Binding
	Heart         key.Binding // l: toggle heart reaction
	Comments      key.Binding // enter: open the comment panel
	Open          key.Binding // o: open in browser
	Repo          key.Binding // /: switch repository
	About         key.Binding // a: repository labels
	Login         key.Binding
	Logout        key.Binding
	Compose       key.Binding // c: comment via $EDITOR
	ComposeInline key.Binding // C: comment inline
	Edit          key.Binding // e: edit own comment
	Delete        key.Binding // d: delete own comment
	Back          key.Binding
	ToggleHints   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Heart: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "heart"),
		),
		Comments: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "comments"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		Repo: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "repo"),
		),
		About: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "about"),
		),
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "login"),
		),
		Logout: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "logout"),
		),
		Compose: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment ($EDITOR)"),
		),
		ComposeInline: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "comment (inline)"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ToggleHints: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "all keys"),
		),
	}
}
