package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/filter"
	"github.com/robby/reqboard/internal/stats"
)

// statusItem is one status filter choice.
type statusItem struct {
	status domain.Status
	count  int
}

func (i statusItem) FilterValue() string { return string(i.status) }

func (i statusItem) label() string {
	if i.status == filter.All {
		return "All statuses"
	}
	return string(i.status)
}

// statusDelegate renders one line per status.
type statusDelegate struct {
	current domain.Status
}

func (d statusDelegate) Height() int                             { return 1 }
func (d statusDelegate) Spacing() int                            { return 0 }
func (d statusDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d statusDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(statusItem)
	if !ok {
		return
	}

	marker := " "
	if i.status == d.current {
		marker = "•"
	}
	count := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(fmt.Sprintf("(%d)", i.count))
	str := fmt.Sprintf("%s %s %s", marker, i.label(), count)

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
	}
}

// closeStatusPickerMsg returns to the requirements screen unchanged.
type closeStatusPickerMsg struct{}

// StatusPickerModel lets the user choose the status filter.
type StatusPickerModel struct {
	list list.Model
}

// NewStatusPickerModel creates the picker with the cursor on current. st
// provides the per-status counts shown next to each choice.
func NewStatusPickerModel(current domain.Status, st stats.Stats) StatusPickerModel {
	items := []list.Item{statusItem{status: filter.All, count: st.Total}}
	selected := 0
	for i, s := range domain.Statuses() {
		items = append(items, statusItem{status: s, count: st.Count(s)})
		if s == current {
			selected = i + 1
		}
	}

	l := list.New(items, statusDelegate{current: current}, 40, len(items)+6)
	l.Title = "Filter by Status"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	l.Select(selected)

	return StatusPickerModel{list: l}
}

// Init initializes the model.
func (m StatusPickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m StatusPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			return m, func() tea.Msg { return closeStatusPickerMsg{} }
		case "enter":
			if item, ok := m.list.SelectedItem().(statusItem); ok {
				return m, func() tea.Msg {
					return StatusSelectedMsg{Status: item.status}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m StatusPickerModel) View() string {
	return m.list.View() + "\n" + HelpStyle.Render("enter: apply • esc: back")
}
