// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// LoadMore fetches the next page of the feed.
	LoadMore key.Binding

	// Retry re-requests a failed page.
	Retry key.Binding

	// Filters opens the facet filter panel.
	Filters key.Binding

	// Toggle selects or deselects a facet value.
	Toggle key.Binding

	// Clear deselects every facet value.
	Clear key.Binding

	// MoreLikeThis filters the feed by the selected story's facets.
	MoreLikeThis key.Binding

	// ShowNew splices waiting new stories into the feed.
	ShowNew key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Filters: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filters"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		MoreLikeThis: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "more like this"),
		),
		ShowNew: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "show new"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FeedHelp returns keybindings for the feed view.
func (k *KeyMap) FeedHelp() []key.Binding {
	return []key.Binding{k.LoadMore, k.Filters, k.MoreLikeThis, k.Back}
}

// FiltersHelp returns keybindings for the filter panel.
func (k *KeyMap) FiltersHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Clear, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.LoadMore, k.Retry, k.ShowNew},
		{k.Filters, k.Toggle, k.Clear, k.MoreLikeThis},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
