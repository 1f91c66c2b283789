package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/browser"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/engine"
)

// Layout constants
const (
	leftPanelRatio = 0.35 // Left panel takes 35% of width
	minLeftWidth   = 30
	maxLeftWidth   = 50
	headerHeight   = 1
	footerHeight   = 1
	borderSize     = 2 // Top + bottom border
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))
)

// DetailModel is the read-only requirement view with split-screen layout
type DetailModel struct {
	// Dependencies
	engine *engine.Engine
	webURL string

	// Snapshot taken when the view opened, used if the record leaves the caches
	record domain.Record

	viewport viewport.Model

	// View dimensions
	width  int
	height int
}

// NewDetailModel creates a new detail view model
func NewDetailModel(record domain.Record, e *engine.Engine, webURL string) DetailModel {
	vp := viewport.New(40, 10) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		engine:   e,
		webURL:   webURL,
		record:   record,
		viewport: vp,
	}
	m.updateViewportContent()
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// current returns the live record, so a move made elsewhere shows up here.
func (m DetailModel) current() domain.Record {
	if m.engine != nil {
		if r, err := m.engine.Record(m.record.ID); err == nil {
			return r
		}
	}
	return m.record
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// panelWidths splits the window between the metadata and description panels.
func panelWidths(width int) (left, right int) {
	left = int(float64(width) * leftPanelRatio)
	if left < minLeftWidth {
		left = minLeftWidth
	}
	if left > maxLeftWidth {
		left = maxLeftWidth
	}
	right = width - left - 1 // 1 char gap
	if right < 30 {
		right = 30
	}
	return left, right
}

// resizeComponents calculates and sets component dimensions
func (m *DetailModel) resizeComponents() {
	_, rightWidth := panelWidths(m.width)

	// Content height = total - header - footer
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	// Account for the border, the padding and the panel title
	m.viewport.Width = rightWidth - borderSize - 2
	m.viewport.Height = contentHeight - borderSize - 1

	m.updateViewportContent()
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		if u := recordURL(m.webURL, m.current()); u != "" {
			_ = browser.OpenURL(u)
		}
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}

	return m, nil
}

// View renders the split-screen detail view
func (m DetailModel) View() string {
	width := m.width
	height := m.height
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 30
	}

	leftWidth, rightWidth := panelWidths(width)

	contentHeight := height - headerHeight - footerHeight
	if contentHeight < 10 {
		contentHeight = 10
	}

	header := m.renderHeader()

	leftContent := m.renderLeftPanel(leftWidth - borderSize - 2)
	leftPanel := panelBorderStyle.
		Width(leftWidth - borderSize).
		Height(contentHeight - borderSize).
		Padding(0, 1).
		Render(leftContent)

	rightPanel := focusedPanelBorderStyle.
		Width(rightWidth - borderSize).
		Height(contentHeight - borderSize).
		Padding(0, 1).
		Render(m.renderRightPanel())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)

	footer := m.renderFooter(width)

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, footer)
}

// renderHeader renders the top help bar
func (m DetailModel) renderHeader() string {
	parts := []string{"[q]back", "[j/k]scroll", "[g/G]top/bottom"}
	if m.webURL != "" {
		parts = append(parts, "[o]open")
	}
	return dimStyle.Render(strings.Join(parts, " "))
}

// renderFooter renders the bottom status bar
func (m DetailModel) renderFooter(width int) string {
	left := m.current().CustomID

	var right string
	if m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			right = "TOP"
		case m.viewport.AtBottom():
			right = "END"
		default:
			right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		}
	}

	return dimStyle.Render(padBetween(left, right, width))
}

// renderLeftPanel renders the requirement metadata panel
func (m DetailModel) renderLeftPanel(width int) string {
	r := m.current()
	var b strings.Builder

	b.WriteString(detailLabelStyle.Render(r.CustomID))
	b.WriteString("\n\n")

	b.WriteString(detailTitleStyle.Render(wordwrap.String(r.Title, width)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label + ": "))
		b.WriteString(detailValueStyle.Render(truncate.StringWithTail(value, uint(width-len(label)-2), "…")))
		b.WriteString("\n")
	}

	statusStyle := detailValueStyle
	if c, ok := statusColors[string(r.Status)]; ok {
		statusStyle = statusStyle.Foreground(c)
	}
	b.WriteString(detailLabelStyle.Render("Status: "))
	b.WriteString(statusStyle.Render(string(r.Status)))
	b.WriteString("\n")

	assignee := r.Assignee()
	if assignee == "" {
		assignee = "unassigned"
	}
	field("Assigned", assignee)
	field("Priority", r.Priority)
	if r.StartDate != nil {
		field("Start", r.StartDate.Format("2006-01-02"))
	}
	if r.DueDate != nil {
		field("Due", r.DueDate.Format("2006-01-02"))
	}
	if !r.UpdatedAt.IsZero() {
		field("Updated", formatTimeAgo(r.UpdatedAt))
	}

	return b.String()
}

// renderRightPanel renders the description panel with viewport
func (m DetailModel) renderRightPanel() string {
	var b strings.Builder

	scrollHint := ""
	if m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			scrollHint = " ↓"
		case m.viewport.AtBottom():
			scrollHint = " ↑"
		default:
			scrollHint = " ↕"
		}
	}

	b.WriteString(detailLabelStyle.Render("Description"))
	b.WriteString(scrollIndicatorStyle.Render(scrollHint))
	b.WriteString("\n")

	if strings.TrimSpace(m.current().Description) == "" {
		b.WriteString(dimStyle.Render("No description"))
		return b.String()
	}

	b.WriteString(m.viewport.View())
	return b.String()
}

// updateViewportContent wraps the description to the viewport width
func (m *DetailModel) updateViewportContent() {
	wrapWidth := m.viewport.Width
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	m.viewport.SetContent(detailValueStyle.Render(wordwrap.String(m.current().Description, wrapWidth)))
}
