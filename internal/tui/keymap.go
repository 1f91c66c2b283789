package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the requirements screen.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Views and paging
	NextView key.Binding
	PrevView key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	NextRows key.Binding
	PrevRows key.Binding
	PageSize key.Binding

	// Filters
	Search       key.Binding
	StatusFilter key.Binding
	ApplySearch  key.Binding
	ClearSearch  key.Binding

	// Actions
	Grab          key.Binding
	Drop          key.Binding
	CancelDrag    key.Binding
	Open          key.Binding
	Detail        key.Binding
	Refresh       key.Binding
	ChangeProject key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous requirement"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next requirement"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next server page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous server page"),
		),
		NextRows: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next table page"),
		),
		PrevRows: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous table page"),
		),
		PageSize: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "cycle server page size"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		StatusFilter: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "filter by status"),
		),
		ApplySearch: key.NewBinding(
			key.WithKeys("enter"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab requirement"),
		),
		Drop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "drop (while dragging)"),
		),
		CancelDrag: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ChangeProject: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "change project"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Search, k.StatusFilter, k.Grab, k.Help, k.Quit}
}
