package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/reqboard/internal/projector"
)

var (
	// HelpOverlayStyle defines the style for the help overlay container.
	HelpOverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		MarginTop(2)
)

// modeKeys narrows the key map to the bindings that do something in one view mode.
type modeKeys struct {
	k        KeyMap
	mode     projector.Mode
	dragging bool
}

func (m modeKeys) ShortHelp() []key.Binding {
	if m.dragging {
		return []key.Binding{m.k.Left, m.k.Right, m.k.Drop, m.k.CancelDrag}
	}
	return m.k.ShortHelp()
}

func (m modeKeys) FullHelp() [][]key.Binding {
	if m.dragging {
		return [][]key.Binding{{m.k.Left, m.k.Right, m.k.Drop, m.k.CancelDrag}}
	}

	nav := []key.Binding{m.k.Up, m.k.Down}
	paging := []key.Binding{m.k.NextView, m.k.PrevView, m.k.NextPage, m.k.PrevPage, m.k.PageSize}
	switch m.mode {
	case projector.ModeTable:
		paging = append(paging, m.k.NextRows, m.k.PrevRows)
	default:
		nav = append(nav, m.k.Left, m.k.Right)
	}

	return [][]key.Binding{
		nav,
		paging,
		{m.k.Search, m.k.StatusFilter, m.k.Refresh, m.k.ChangeProject},
		{m.k.Grab, m.k.Detail, m.k.Open, m.k.Help, m.k.Quit},
	}
}

// HelpModel wraps the bubbles help component.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel creates a new help overlay model.
func NewHelpModel(keymap KeyMap) HelpModel {
	return HelpModel{
		help:   help.New(),
		keymap: keymap,
	}
}

// View renders the help overlay for the given mode.
func (m HelpModel) View(width int, mode projector.Mode) string {
	m.help.ShowAll = true
	m.help.Width = width - 8 // Account for padding and border
	title := TitleStyle.Render("Keys: " + mode.String() + " view")
	return HelpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(modeKeys{k: m.keymap, mode: mode})))
}

// ShortView renders the one-line help for the footer.
func (m HelpModel) ShortView(width int, mode projector.Mode, dragging bool) string {
	m.help.ShowAll = false
	m.help.Width = width
	return m.help.View(modeKeys{k: m.keymap, mode: mode, dragging: dragging})
}
