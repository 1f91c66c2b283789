// Package stats computes count-by-status summaries of a requirement set.
package stats

import "github.com/robby/reqboard/internal/domain"

// Stats summarizes a record set.
type Stats struct {
	Total          int
	CountPerStatus map[domain.Status]int
}

// Compute counts records per status. Every known status is present in
// CountPerStatus, zero when absent from the set.
func Compute(records []domain.Record) Stats {
	counts := make(map[domain.Status]int, len(domain.Statuses()))
	for _, st := range domain.Statuses() {
		counts[st] = 0
	}
	for _, r := range records {
		counts[r.Status]++
	}
	return Stats{Total: len(records), CountPerStatus: counts}
}

// Count returns the count for one status.
func (s Stats) Count(status domain.Status) int {
	return s.CountPerStatus[status]
}

// Memo caches Compute keyed on the identity (version) of the source set.
type Memo struct {
	version uint64
	valid   bool
	stats   Stats
}

// Compute returns the stats of records, recomputing only when version changes.
func (m *Memo) Compute(version uint64, records []domain.Record) Stats {
	if m.valid && m.version == version {
		return m.stats
	}
	m.stats = Compute(records)
	m.version = version
	m.valid = true
	return m.stats
}
