// Package filter holds the search/status filter state and the pure functions
// deriving filtered and status-grouped views from a record collection.
package filter

import (
	"strings"

	"github.com/robby/reqboard/internal/domain"
)

// All is the status filter value that matches every status.
const All domain.Status = "all"

// State is the filter value object: a free-text search term and a single
// categorical status filter. The zero value is not useful; use NewState.
type State struct {
	SearchTerm   string
	StatusFilter domain.Status
}

// NewState returns a state matching everything.
func NewState() State {
	return State{StatusFilter: All}
}

// WithSearch returns a copy of s with the search term replaced.
func (s State) WithSearch(term string) State {
	s.SearchTerm = term
	return s
}

// WithStatus returns a copy of s with the status filter replaced.
func (s State) WithStatus(status domain.Status) State {
	s.StatusFilter = status
	return s
}

// Active reports whether any filter narrows the collection.
func (s State) Active() bool {
	return s.SearchTerm != "" || (s.StatusFilter != All && s.StatusFilter != "")
}

// MatchesSearch reports whether r contains the search term case-insensitively
// in its title, description or custom ID. An empty term matches everything.
func (s State) MatchesSearch(r domain.Record) bool {
	if s.SearchTerm == "" {
		return true
	}
	query := strings.ToLower(s.SearchTerm)
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) ||
		strings.Contains(strings.ToLower(r.CustomID), query)
}

// MatchesStatus reports whether r has exactly the filtered status.
func (s State) MatchesStatus(r domain.Record) bool {
	return s.StatusFilter == All || s.StatusFilter == "" || s.StatusFilter == r.Status
}

// Matches combines both predicates.
func (s State) Matches(r domain.Record) bool {
	return s.MatchesSearch(r) && s.MatchesStatus(r)
}

// Filtered returns the records matching s, preserving input order.
// The result is always a new slice; records is never modified.
func Filtered(records []domain.Record, s State) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Column is one board column: a status and the records in it.
type Column struct {
	Status  domain.Status
	Records []domain.Record
}

// Grouped partitions the filtered records into one column per status, in the
// fixed status order. Every column exists even when empty.
func Grouped(records []domain.Record, s State) []Column {
	filtered := Filtered(records, s)

	statuses := domain.Statuses()
	columns := make([]Column, len(statuses))
	index := make(map[domain.Status]int, len(statuses))
	for i, st := range statuses {
		columns[i] = Column{Status: st, Records: []domain.Record{}}
		index[st] = i
	}

	for _, r := range filtered {
		if i, ok := index[r.Status]; ok {
			columns[i].Records = append(columns[i].Records, r)
		}
	}
	return columns
}
