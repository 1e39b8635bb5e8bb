package counter

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/talismancer/journald-exporter/internal/journalkey"
)

// Aggregator is a concurrent multi-producer MessageKey -> {lines,
// bytes} map. Entries are created on first observation of a key and
// never removed; sync.Map gives lock-free-ish inserts (an internal
// read-mostly snapshot plus a dirty map guarded by a mutex only on
// miss) and the *entry values are updated with plain atomics, so a
// lookup of an existing key never blocks a concurrent insert of a
// different key.
type Aggregator struct {
	entries sync.Map // journalkey.MessageKey -> *entry

	faults              atomic.Uint64
	entriesIngested     atomic.Uint64
	fieldsIngested      atomic.Uint64
	dataIngestedBytes   atomic.Uint64
	cursorDoubleRetries atomic.Uint64
	unreadableFields    atomic.Uint64
	corruptedFields     atomic.Uint64
	metricsRequests     atomic.Uint64
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) entryFor(key journalkey.MessageKey) *entry {
	if v, ok := a.entries.Load(key); ok {
		return v.(*entry)
	}
	v, _ := a.entries.LoadOrStore(key, &entry{})
	return v.(*entry)
}

// AddMessageLineIngested records one ingested journal line of length
// msgLen bytes under key. Saturation of either counter bumps Faults.
func (a *Aggregator) AddMessageLineIngested(key journalkey.MessageKey, msgLen uint64) {
	e := a.entryFor(key)
	satLines := addSaturating(&e.lines, 1)
	satBytes := addSaturating(&e.bytes, msgLen)
	if satLines || satBytes {
		a.faults.Add(1)
	}
	a.entriesIngested.Add(1)
	a.dataIngestedBytes.Add(msgLen)
}

// AddFault increments the faults counter.
func (a *Aggregator) AddFault() { a.faults.Add(1) }

// AddCursorDoubleRetry increments cursor_double_retries.
func (a *Aggregator) AddCursorDoubleRetry() { a.cursorDoubleRetries.Add(1) }

// AddUnreadableField increments unreadable_fields.
func (a *Aggregator) AddUnreadableField() { a.unreadableFields.Add(1) }

// AddCorruptedField increments corrupted_fields.
func (a *Aggregator) AddCorruptedField() { a.corruptedFields.Add(1) }

// AddFieldsIngested increments fields_ingested by n.
func (a *Aggregator) AddFieldsIngested(n uint64) { a.fieldsIngested.Add(n) }

// AddMetricsRequests increments metrics_requests by n.
func (a *Aggregator) AddMetricsRequests(n uint64) { a.metricsRequests.Add(n) }

// Totals is the snapshot of the eight scalar counters (the per-key
// counters are returned separately by Snapshot).
type Totals struct {
	EntriesIngested     uint64
	FieldsIngested      uint64
	DataIngestedBytes   uint64
	Faults              uint64
	CursorDoubleRetries uint64
	UnreadableFields    uint64
	CorruptedFields     uint64
	MetricsRequests     uint64
}

// TotalsSnapshot reads the eight scalar counters.
func (a *Aggregator) TotalsSnapshot() Totals {
	return Totals{
		EntriesIngested:     a.entriesIngested.Load(),
		FieldsIngested:      a.fieldsIngested.Load(),
		DataIngestedBytes:   a.dataIngestedBytes.Load(),
		Faults:              a.faults.Load(),
		CursorDoubleRetries: a.cursorDoubleRetries.Load(),
		UnreadableFields:    a.unreadableFields.Load(),
		CorruptedFields:     a.corruptedFields.Load(),
		MetricsRequests:     a.metricsRequests.Load(),
	}
}

// Snapshot returns the per-key counters sorted by key for
// deterministic serialization.
func (a *Aggregator) Snapshot() []Entry {
	var out []Entry
	a.entries.Range(func(k, v any) bool {
		key := k.(journalkey.MessageKey)
		e := v.(*entry)
		out = append(out, Entry{
			Key:   key,
			Lines: e.lines.Load(),
			Bytes: e.bytes.Load(),
		})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.Less(out[j].Key)
	})
	return out
}
