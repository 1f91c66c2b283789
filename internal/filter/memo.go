package filter

import "github.com/robby/reqboard/internal/domain"

// Memo caches Filtered and Grouped results keyed on the identity of the source
// collection and the filter state. Callers supply the identity as a version
// number that changes whenever the collection is replaced or mutated.
//
// Cached slices are shared between calls; callers must not modify them.
type Memo struct {
	filteredKey memoKey
	filtered    []domain.Record
	hasFiltered bool
	generation  uint64 // Bumped on every Filtered recompute

	groupedKey memoKey
	grouped    []Column
	hasGrouped bool
}

type memoKey struct {
	version uint64
	state   State
}

// Filtered returns Filtered(records, s), reusing the previous result when
// version and s are unchanged.
func (m *Memo) Filtered(version uint64, records []domain.Record, s State) []domain.Record {
	key := memoKey{version: version, state: s}
	if m.hasFiltered && m.filteredKey == key {
		return m.filtered
	}
	m.filtered = Filtered(records, s)
	m.filteredKey = key
	m.hasFiltered = true
	m.generation++
	return m.filtered
}

// Generation identifies the last Filtered result. It changes whenever
// Filtered recomputes, so it can key caches of values derived from it.
func (m *Memo) Generation() uint64 {
	return m.generation
}

// Grouped returns Grouped(records, s), reusing the previous result when
// version and s are unchanged.
func (m *Memo) Grouped(version uint64, records []domain.Record, s State) []Column {
	key := memoKey{version: version, state: s}
	if m.hasGrouped && m.groupedKey == key {
		return m.grouped
	}
	m.grouped = Grouped(records, s)
	m.groupedKey = key
	m.hasGrouped = true
	return m.grouped
}

// Reset drops all cached results. The generation keeps increasing.
func (m *Memo) Reset() {
	*m = Memo{generation: m.generation}
}
