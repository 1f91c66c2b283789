package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robby/reqboard/internal/domain"
)

// Grid card dimensions, including the border
const (
	gridCardWidth  = 30
	gridCardHeight = 6
)

var (
	gridCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	gridIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// gridColumns returns how many cards fit side by side.
func gridColumns(width int) int {
	n := width / gridCardWidth
	if n < 1 {
		return 1
	}
	return n
}

// renderGrid renders the filtered records as a grid of cards. Rows scroll so
// the cursor stays visible.
func (m RequirementsModel) renderGrid(width, height int) string {
	records := m.engine.FilteredRecords()
	if len(records) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			dimStyle.Render("No requirements match the current filters"))
	}

	perRow := gridColumns(width)
	visibleRows := height / gridCardHeight
	if visibleRows < 1 {
		visibleRows = 1
	}

	cursorRow := m.gridCursor / perRow
	firstRow := 0
	if cursorRow >= visibleRows {
		firstRow = cursorRow - visibleRows + 1
	}

	var rows []string
	for row := firstRow; row < firstRow+visibleRows; row++ {
		start := row * perRow
		if start >= len(records) {
			break
		}
		end := start + perRow
		if end > len(records) {
			end = len(records)
		}

		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, m.renderGridCard(records[i], i == m.gridCursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m RequirementsModel) renderGridCard(r domain.Record, selected bool) string {
	inner := gridCardWidth - 4 // Border and padding

	header := truncate.StringWithTail(r.CustomID, uint(inner), "…")
	status := string(r.Status)
	gap := inner - lipgloss.Width(header) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}

	statusStyle := dimStyle
	if c, ok := statusColors[status]; ok {
		statusStyle = lipgloss.NewStyle().Foreground(c)
	}

	// Title gets the lines left between the header and the assignee
	titleLines := strings.Split(wordwrap.String(r.Title, inner), "\n")
	maxTitle := gridCardHeight - 2 - 2
	if len(titleLines) > maxTitle {
		titleLines = titleLines[:maxTitle]
		titleLines[maxTitle-1] = truncate.StringWithTail(titleLines[maxTitle-1]+" …", uint(inner), "…")
	}
	for len(titleLines) < maxTitle {
		titleLines = append(titleLines, "")
	}

	assignee := r.Assignee()
	if assignee == "" {
		assignee = "unassigned"
	}

	lines := []string{gridIDStyle.Render(header) + strings.Repeat(" ", gap) + statusStyle.Render(status)}
	for _, l := range titleLines {
		lines = append(lines, truncate.String(l, uint(inner)))
	}
	lines = append(lines, dimStyle.Render(truncate.StringWithTail("@"+assignee, uint(inner), "…")))

	style := gridCardStyle.Width(gridCardWidth - 2)
	switch {
	case m.feedback.dragging(r.ID):
		style = style.BorderForeground(lipgloss.Color("226"))
	case selected:
		style = style.BorderForeground(lipgloss.Color("205"))
	}
	return style.Render(strings.Join(lines, "\n"))
}
