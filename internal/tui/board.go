package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/drag"
	"github.com/robby/reqboard/internal/filter"
)

// Board layout constants
const (
	minColumnWidth = 20
	maxColumnWidth = 40
	indicatorWidth = 2 // Width of the ◀ / ▶ carousel indicators
)

// Styles for the board view - base styles without width/height (set dynamically)
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	draggedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205"))
)

// boardLayout describes which columns are visible and where.
type boardLayout struct {
	startCol      int
	endCol        int
	colWidth      int
	leftIndicator bool
	contentHeight int // Lines inside a column border
}

// layoutBoard computes the carousel layout for the given area.
func (m RequirementsModel) layoutBoard(totalWidth, totalHeight int) boardLayout {
	numCols := len(domain.Statuses())

	// lipgloss Border adds 2 lines (top + bottom) to the content height
	contentHeight := totalHeight - 2
	if contentHeight < 3 {
		contentHeight = 3
	}

	// Calculate how many columns can fit at minimum width
	visibleCols := totalWidth / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > numCols {
		visibleCols = numCols
	}

	// Calculate column width to fill available space evenly
	colWidth := totalWidth / visibleCols
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	// Determine visible column range based on columnOffset
	startCol := m.columnOffset
	endCol := startCol + visibleCols
	if endCol > numCols {
		endCol = numCols
		startCol = endCol - visibleCols
		if startCol < 0 {
			startCol = 0
		}
	}

	return boardLayout{
		startCol:      startCol,
		endCol:        endCol,
		colWidth:      colWidth,
		leftIndicator: startCol > 0,
		contentHeight: contentHeight,
	}
}

// boardSize returns the board area for the current window.
func (m RequirementsModel) boardSize() (int, int) {
	height := m.height
	if height == 0 {
		height = 24
	}
	h := height - m.aboveContent() - footerLines
	if h < 5 {
		h = 5
	}
	return m.contentWidth(), h
}

// hitTest maps screen coordinates to a board column and card index.
// col is -1 outside every column; card is -1 when not over a card.
func (m RequirementsModel) hitTest(x, y int) (col, card int) {
	width, height := m.boardSize()
	l := m.layoutBoard(width, height)

	top := m.aboveContent()
	if y < top || y >= top+l.contentHeight+2 {
		return -1, -1
	}

	left := 0
	if l.leftIndicator {
		left = indicatorWidth
	}
	if x < left {
		return -1, -1
	}
	col = l.startCol + (x-left)/l.colWidth
	if col >= l.endCol {
		return -1, -1
	}

	columns := m.engine.GroupedRecords()
	records := columns[col].Records
	status := columns[col].Status

	// Border line, then the column header
	row := y - top - 2
	offset := m.scrollOffset[status]
	if offset > 0 {
		row-- // "↑ N more" line
	}
	if row < 0 {
		return col, -1
	}
	card = offset + row
	if card >= len(records) {
		return col, -1
	}
	return col, card
}

// renderBoard renders the kanban columns within the given dimensions
// Implements horizontal scrolling (carousel) when columns overflow
func (m RequirementsModel) renderBoard(totalWidth, totalHeight int) string {
	columns := m.engine.GroupedRecords()
	l := m.layoutBoard(totalWidth, totalHeight)

	// Content width inside column (minus border and padding: 2 border + 2 padding = 4)
	innerWidth := l.colWidth - 4
	if innerWidth < 10 {
		innerWidth = 10
	}

	columnViews := make([]string, 0, l.endCol-l.startCol+2)

	// Left scroll indicator if there are hidden columns to the left
	if l.leftIndicator {
		indicator := lipgloss.NewStyle().
			Width(indicatorWidth).
			Height(l.contentHeight+2).
			Foreground(lipgloss.Color("205")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("◀")
		columnViews = append(columnViews, indicator)
	}

	for i := l.startCol; i < l.endCol; i++ {
		columnViews = append(columnViews, m.renderColumn(columns[i], i, l.colWidth, l.contentHeight, innerWidth))
	}

	// Right scroll indicator if there are hidden columns to the right
	if l.endCol < len(columns) {
		indicator := lipgloss.NewStyle().
			Width(indicatorWidth).
			Height(l.contentHeight+2).
			Foreground(lipgloss.Color("205")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("▶")
		columnViews = append(columnViews, indicator)
	}

	// Join horizontally with alignment at top
	return lipgloss.JoinHorizontal(lipgloss.Top, columnViews...)
}

// renderColumn renders a single status column with proper sizing.
// innerHeight is the content area, not including the border.
func (m RequirementsModel) renderColumn(col filter.Column, index, width, innerHeight, innerWidth int) string {
	records := col.Records
	selected := index == m.selectedColumn

	// Header: [N] Status (count)
	headerText := truncate.StringWithTail(fmt.Sprintf("[%d] %s (%d)", index+1, col.Status, len(records)), uint(innerWidth), "…")

	scrollOffset := m.scrollOffset[col.Status]
	selectedIdx := m.selectedCard[col.Status]

	// One line for the header
	cardSlots := innerHeight - 1
	if cardSlots < 1 {
		cardSlots = 1
	}

	needUpIndicator := scrollOffset > 0
	availableSlots := cardSlots
	if needUpIndicator {
		availableSlots--
	}

	endIdx := scrollOffset + availableSlots
	if endIdx > len(records) {
		endIdx = len(records)
	}

	needDownIndicator := false
	if endIdx < len(records) {
		needDownIndicator = true
		availableSlots--
		endIdx = scrollOffset + availableSlots
		if endIdx > len(records) {
			endIdx = len(records)
		}
	}

	var lines []string
	lines = append(lines, columnHeaderStyle.Render(headerText))

	if needUpIndicator {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↑ %d more", scrollOffset)))
	}

	for i := scrollOffset; i < endIdx; i++ {
		r := records[i]
		cardText := formatCardText(r, innerWidth-2) // 2 for "> " or "  " prefix
		switch {
		case m.feedback.dragging(r.ID):
			lines = append(lines, draggedCardStyle.Render("≡ "+cardText))
		case selected && i == selectedIdx:
			lines = append(lines, selectedCardStyle.Render("> "+cardText))
		default:
			lines = append(lines, cardStyle.Render("  "+cardText))
		}
	}

	remaining := len(records) - endIdx
	if needDownIndicator && remaining > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("↓ %d more", remaining)))
	}

	if len(records) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}

	content := strings.Join(lines, "\n")

	borderColor := lipgloss.Color("240")
	if c, ok := statusColors[string(col.Status)]; ok {
		borderColor = c
	}
	if selected {
		borderColor = lipgloss.Color("205")
	}
	if m.feedback.state == drag.Dragging && index == m.dropTarget {
		borderColor = lipgloss.Color("226")
	}

	// Height(innerHeight) sets content height, border adds 2 more lines
	// DO NOT use MaxHeight - it truncates the border!
	colStyle := lipgloss.NewStyle().
		Width(width-2).      // Subtract border width
		Height(innerHeight). // Inner content height (border adds 2 to total)
		Padding(0, 1).       // 1 char padding left/right
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor)

	return colStyle.Render(content)
}

// formatCardText formats a card for display with max width.
// Right-aligns the custom ID.
func formatCardText(r domain.Record, maxWidth int) string {
	title := r.Title
	suffix := r.CustomID

	if suffix == "" {
		return truncate.StringWithTail(title, uint(maxWidth), "…")
	}

	// Leave room for suffix + 1 space gap
	availableForTitle := maxWidth - lipgloss.Width(suffix) - 1
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title = truncate.StringWithTail(title, uint(availableForTitle), "…")

	padding := maxWidth - lipgloss.Width(title) - lipgloss.Width(suffix)
	if padding < 1 {
		padding = 1
	}

	return title + strings.Repeat(" ", padding) + dimStyle.Render(suffix)
}

// moveCardSelection moves the card selection up or down by delta
func (m *RequirementsModel) moveCardSelection(delta int) {
	columns := m.engine.GroupedRecords()
	if m.selectedColumn >= len(columns) {
		return
	}

	col := columns[m.selectedColumn]
	if len(col.Records) == 0 {
		return
	}

	m.selectedCard[col.Status] = clamp(m.selectedCard[col.Status]+delta, 0, len(col.Records)-1)
	m.adjustScroll(col.Status)
}

// adjustScroll ensures the selected card is visible
func (m *RequirementsModel) adjustScroll(status domain.Status) {
	selectedIdx := m.selectedCard[status]
	scrollOffset := m.scrollOffset[status]

	_, height := m.boardSize()
	visibleCards := height - 2 - 3 // Borders, header and potential scroll indicators
	if visibleCards < 3 {
		visibleCards = 3
	}

	if selectedIdx < scrollOffset {
		m.scrollOffset[status] = selectedIdx
	}
	if selectedIdx >= scrollOffset+visibleCards {
		m.scrollOffset[status] = selectedIdx - visibleCards + 1
	}
}

// adjustColumnScroll ensures the selected column is visible (horizontal carousel)
func (m *RequirementsModel) adjustColumnScroll() {
	numCols := len(domain.Statuses())
	if m.width == 0 {
		return
	}

	visibleCols := m.width / minColumnWidth
	if visibleCols < 1 {
		visibleCols = 1
	}
	if visibleCols > numCols {
		visibleCols = numCols
	}

	if m.selectedColumn < m.columnOffset {
		m.columnOffset = m.selectedColumn
	}
	if m.selectedColumn >= m.columnOffset+visibleCols {
		m.columnOffset = m.selectedColumn - visibleCols + 1
	}
}
