package monitor

import (
	"github.com/talismancer/journald-exporter/internal/journalkey"
)

// Set is a built collection of monitor filters, split into those with
// a message pattern (filters sharing the same pattern text share one
// scan of the message body) and those without one (evaluated unconditionally on every
// message). Go's regexp package has no RegexSet equivalent to Rust's
// regex::RegexSet, so the "set" here is a slice of individually
// compiled patterns; Observe still does one pass per filter, but each
// pattern is checked against the message at most once per message.
type Set struct {
	patterned   []*Filter
	unpatterned []*Filter
}

// NewSet groups filters into patterned and unpatterned buckets.
func NewSet(filters []*Filter) *Set {
	s := &Set{}
	for _, f := range filters {
		if f.compiled != nil {
			s.patterned = append(s.patterned, f)
		} else {
			s.unpatterned = append(s.unpatterned, f)
		}
	}
	return s
}

// Observe classifies one ingested message against every filter in the
// set: for patterned filters the regex is evaluated against message;
// for unpatterned filters the predicate runs unconditionally.
func (s *Set) Observe(key journalkey.MessageKey, message []byte, msgLen uint64) {
	var scanned map[string]bool
	for _, f := range s.patterned {
		matched, seen := scanned[f.Pattern]
		if !seen {
			matched = f.compiled.Match(message)
			if scanned == nil {
				scanned = make(map[string]bool, len(s.patterned))
			}
			scanned[f.Pattern] = matched
		}
		f.observe(key, msgLen, matched)
	}
	for _, f := range s.unpatterned {
		f.observe(key, msgLen, true)
	}
}

// Filters returns every filter in the set, patterned and unpatterned,
// for snapshot collection.
func (s *Set) Filters() []*Filter {
	all := make([]*Filter, 0, len(s.patterned)+len(s.unpatterned))
	all = append(all, s.patterned...)
	all = append(all, s.unpatterned...)
	return all
}

// HitEntry is one row of the monitor_hits snapshot: a per-filter,
// per-key line/byte count tagged with the filter's name.
type HitEntry struct {
	Name  string
	Key   journalkey.MessageKey
	Lines uint64
	Bytes uint64
}

// Snapshot collects every filter's aggregator into a single
// name-tagged monitor_hits snapshot: the filters' rows are concatenated
// in filter order, and are sorted by key only within each filter.
func (s *Set) Snapshot() []HitEntry {
	var out []HitEntry
	for _, f := range s.Filters() {
		for _, e := range f.agg.Snapshot() {
			out = append(out, HitEntry{Name: f.Name, Key: e.Key, Lines: e.Lines, Bytes: e.Bytes})
		}
	}
	return out
}
