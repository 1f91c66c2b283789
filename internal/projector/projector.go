// Package projector decides what each view mode shows: which copy of the
// collection feeds it, which pagination controls apply, and which table
// columns the current user sees.
package projector

import (
	"fmt"
	"strings"

	"github.com/robby/reqboard/internal/domain"
	"github.com/robby/reqboard/internal/filter"
)

// Mode is one of the mutually exclusive view projections.
type Mode int

// View modes, in tab order.
const (
	ModeTable Mode = iota
	ModeGrid
	ModeBoard
)

var modeNames = []string{"table", "grid", "board"}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Next returns the following mode, wrapping around.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// ParseMode resolves a mode name case-insensitively.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Mode(i), nil
		}
	}
	return ModeTable, fmt.Errorf("unknown view mode %q", name)
}

// ServerWindow describes the server-side pagination of the windowed page.
// Total counts every matching record on the server, not the records held locally.
type ServerWindow struct {
	Index int // Zero-based page index
	Size  int
	Total int
}

// PageCount returns the number of server pages, at least 1.
func (w ServerWindow) PageCount() int {
	if w.Size <= 0 || w.Total <= 0 {
		return 1
	}
	return (w.Total + w.Size - 1) / w.Size
}

// HasPrev reports whether a previous server page exists.
func (w ServerWindow) HasPrev() bool {
	return w.Index > 0
}

// HasNext reports whether a following server page exists.
func (w ServerWindow) HasNext() bool {
	return w.Index+1 < w.PageCount()
}

// ClientWindow paginates an already windowed and filtered slice locally.
type ClientWindow struct {
	Index int // Zero-based client page index
	Size  int
}

// PageCount returns the number of client pages for n records, at least 1.
func (w ClientWindow) PageCount(n int) int {
	if w.Size <= 0 || n <= 0 {
		return 1
	}
	return (n + w.Size - 1) / w.Size
}

// Clamp returns w with Index limited to the pages available for n records.
func (w ClientWindow) Clamp(n int) ClientWindow {
	if last := w.PageCount(n) - 1; w.Index > last {
		w.Index = last
	}
	if w.Index < 0 {
		w.Index = 0
	}
	return w
}

// Apply returns the slice of records visible on the current client page.
func (w ClientWindow) Apply(records []domain.Record) []domain.Record {
	if w.Size <= 0 {
		return records
	}
	w = w.Clamp(len(records))
	start := w.Index * w.Size
	end := start + w.Size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Copy identifies which representation of the collection feeds a view.
type Copy int

// Collection copies.
const (
	WindowedPage Copy = iota
	ShadowCopy
)

func (c Copy) String() string {
	if c == ShadowCopy {
		return "shadow copy"
	}
	return "windowed page"
}

// SourceFor returns the copy that grid, board and aggregate stats read.
//
// With any filter active this is the windowed page, otherwise the shadow
// copy. Filtered counts are therefore only complete when the windowed page
// already holds every matching record.
func SourceFor(f filter.State) Copy {
	if f.Active() {
		return WindowedPage
	}
	return ShadowCopy
}

// ShowServerPager reports whether a mode shows server Previous/Next controls.
// Table mode always paginates (client-side, over the server window); grid and
// board only show server controls while no filter is active.
func ShowServerPager(mode Mode, f filter.State) bool {
	if mode == ModeTable {
		return true
	}
	return !f.Active()
}

// TableColumn is one column of the table projection.
type TableColumn struct {
	Title string
	Width int
}

// Table column titles.
const (
	ColumnID       = "ID"
	ColumnTitle    = "Title"
	ColumnStatus   = "Status"
	ColumnAssignee = "Assignee"
	ColumnUpdated  = "Updated"
	ColumnActions  = "Actions"
)

// TableColumns returns the table column set. The actions column is only shown
// to users who may mutate.
func TableColumns(canMutate bool) []TableColumn {
	cols := []TableColumn{
		{Title: ColumnID, Width: 10},
		{Title: ColumnTitle, Width: 32},
		{Title: ColumnStatus, Width: 12},
		{Title: ColumnAssignee, Width: 16},
		{Title: ColumnUpdated, Width: 16},
	}
	if canMutate {
		cols = append(cols, TableColumn{Title: ColumnActions, Width: 10})
	}
	return cols
}

// TableRow renders one record for the given column set.
func TableRow(r domain.Record, cols []TableColumn) []string {
	row := make([]string, 0, len(cols))
	for _, c := range cols {
		switch c.Title {
		case ColumnID:
			row = append(row, r.CustomID)
		case ColumnTitle:
			row = append(row, r.Title)
		case ColumnStatus:
			row = append(row, string(r.Status))
		case ColumnAssignee:
			if name := r.Assignee(); name != "" {
				row = append(row, name)
			} else {
				row = append(row, "unassigned")
			}
		case ColumnUpdated:
			if r.UpdatedAt.IsZero() {
				row = append(row, "")
			} else {
				row = append(row, r.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
		case ColumnActions:
			row = append(row, "move")
		default:
			row = append(row, "")
		}
	}
	return row
}
