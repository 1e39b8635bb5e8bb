// Package monitor implements named, predicate-filtered variants of the
// line/byte aggregator: a monitor filter matches a subset of ingested
// messages by priority, uid, gid, service and message-body pattern,
// and tallies hits under its own name.
package monitor

import (
	"regexp"

	"github.com/talismancer/journald-exporter/internal/counter"
	"github.com/talismancer/journald-exporter/internal/journalkey"
)

// Filter is one resolved monitor filter: an AND-combined predicate
// over {priority, uid, gid, service, message pattern}, each component
// optional (a zero value matches anything).
type Filter struct {
	Name        string
	Priority    journalkey.Priority
	HasPriority bool
	UID         journalkey.OptionalID
	GID         journalkey.OptionalID
	Service     journalkey.OptionalService
	Pattern     string // empty means "matches any message"

	compiled *regexp.Regexp
	agg      *counter.Aggregator
}

// NewFilter builds a Filter from its resolved configuration fields.
// If pattern is non-empty it is compiled as a regular expression
// applied to the message body; an invalid pattern is reported as the
// returned error.
func NewFilter(name string, priority journalkey.Priority, hasPriority bool, uid, gid journalkey.OptionalID, service journalkey.OptionalService, pattern string) (*Filter, error) {
	f := &Filter{
		Name:        name,
		Priority:    priority,
		HasPriority: hasPriority,
		UID:         uid,
		GID:         gid,
		Service:     service,
		Pattern:     pattern,
		agg:         counter.New(),
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.compiled = re
	}
	return f, nil
}

// matchesNonPattern evaluates every predicate field except the message
// pattern.
func (f *Filter) matchesNonPattern(key journalkey.MessageKey) bool {
	if f.HasPriority && key.Priority != f.Priority {
		return false
	}
	if f.UID.Valid && (!key.UID.Valid || key.UID.Value != f.UID.Value) {
		return false
	}
	if f.GID.Valid && (!key.GID.Valid || key.GID.Value != f.GID.Value) {
		return false
	}
	if f.Service.Valid {
		if !key.Service.Valid || !f.Service.Value.Matches(key.Service.Value) {
			return false
		}
	}
	return true
}

// observe records one ingested message against the filter if it
// fully matches, given the already-evaluated pattern result (true if
// the filter has no pattern, or the pattern matched message).
func (f *Filter) observe(key journalkey.MessageKey, msgLen uint64, patternMatched bool) {
	if !patternMatched {
		return
	}
	if !f.matchesNonPattern(key) {
		return
	}
	f.agg.AddMessageLineIngested(key, msgLen)
}
