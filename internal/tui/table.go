package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/robby/reqboard/internal/projector"
)

// tableStyles returns the bubbles table styles used by the table view.
func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	return s
}

// renderTable renders the client page of the filtered windowed page. The
// Actions column is only present when canMutate is true.
func (m RequirementsModel) renderTable(width, height int, canMutate bool) string {
	records := m.engine.TablePage()
	if len(records) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			dimStyle.Render("No requirements on this page"))
	}

	cols := projector.TableColumns(canMutate)

	// Title takes whatever width the fixed columns leave
	fixed := 0
	for _, c := range cols {
		if c.Title != projector.ColumnTitle {
			fixed += c.Width + 2 // Cell padding
		}
	}
	titleWidth := width - fixed - 2
	if titleWidth < 12 {
		titleWidth = 12
	}

	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		w := c.Width
		if c.Title == projector.ColumnTitle {
			w = titleWidth
		}
		columns[i] = table.Column{Title: c.Title, Width: w}
	}

	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row(projector.TableRow(r, cols))
	}

	t := m.table
	// Rows must be cleared before the column count changes
	t.SetRows(nil)
	t.SetColumns(columns)
	t.SetRows(rows)
	t.SetStyles(tableStyles())
	t.SetCursor(clamp(m.tableCursor, 0, len(rows)-1))
	t.SetHeight(height - 1)
	t.SetWidth(width)

	return t.View()
}
