// Package promstate is the process-wide state facade: the counter
// aggregator, the optional monitor filter set, and the two
// notify handles the IPC loop and supervisor share, behind a single
// process-lifetime singleton.
package promstate

import (
	"github.com/talismancer/journald-exporter/internal/counter"
	"github.com/talismancer/journald-exporter/internal/journalkey"
	"github.com/talismancer/journald-exporter/internal/metrics"
	"github.com/talismancer/journald-exporter/internal/monitor"
	"github.com/talismancer/journald-exporter/internal/onceinit"
)

// State is the process-wide facade. It must be created once via New
// and shared by every collaborator; there is no package-level global
// so tests can construct independent instances.
type State struct {
	agg           *counter.Aggregator
	monitorFilter onceinit.Cell[*monitor.Set]
	terminate     *Notify
	done          *Notify
}

// New builds an empty State with no monitor filter set installed
// (InitializeMonitorFilter installs one), ready for use before the
// first child spawn.
func New() *State {
	return &State{
		agg:       counter.New(),
		terminate: NewNotify(),
		done:      NewNotify(),
	}
}

// AddMessageLineIngested records one ingested journal line and, if a
// monitor filter set is installed, classifies it against every filter.
func (s *State) AddMessageLineIngested(key journalkey.MessageKey, message []byte, msgLen uint64) {
	s.agg.AddMessageLineIngested(key, msgLen)
	if set, ok := s.monitorFilter.Get(); ok && set != nil {
		set.Observe(key, message, msgLen)
	}
}

// AddFault increments the faults counter.
func (s *State) AddFault() { s.agg.AddFault() }

// AddCursorDoubleRetry increments cursor_double_retries.
func (s *State) AddCursorDoubleRetry() { s.agg.AddCursorDoubleRetry() }

// AddUnreadableField increments unreadable_fields.
func (s *State) AddUnreadableField() { s.agg.AddUnreadableField() }

// AddCorruptedField increments corrupted_fields.
func (s *State) AddCorruptedField() { s.agg.AddCorruptedField() }

// AddFieldsIngested increments fields_ingested by n.
func (s *State) AddFieldsIngested(n uint64) { s.agg.AddFieldsIngested(n) }

// AddMetricsRequests increments metrics_requests by n.
func (s *State) AddMetricsRequests(n uint64) { s.agg.AddMetricsRequests(n) }

// InitializeMonitorFilter installs the monitor filter set exactly
// once; later calls are no-ops. Passing nil filters
// installs an empty, always-present set so Snapshot always returns a
// (possibly empty) monitor_hits family rather than omitting it.
func (s *State) InitializeMonitorFilter(filters []*monitor.Filter) {
	s.monitorFilter.Set(monitor.NewSet(filters))
}

// Snapshot collects the full PromSnapshot for rendering.
func (s *State) Snapshot() metrics.PromSnapshot {
	snap := metrics.PromSnapshot{
		Totals:           s.agg.TotalsSnapshot(),
		MessagesIngested: s.agg.Snapshot(),
	}
	if set, ok := s.monitorFilter.Get(); ok && set != nil {
		snap.MonitorHits = set.Snapshot()
	}
	return snap
}

// TerminateNotify signals an external request to stop the supervisor.
func (s *State) TerminateNotify() *Notify { return s.terminate }

// DoneNotify signals internal completion of the supervisor's
// shutdown sequence.
func (s *State) DoneNotify() *Notify { return s.done }
