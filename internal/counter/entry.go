// Package counter implements the per-key line/byte aggregator: a
// concurrent map from journalkey.MessageKey to a saturating {lines,
// bytes} pair, with a sorted snapshot for rendering.
package counter

import (
	"sync/atomic"

	"github.com/talismancer/journald-exporter/internal/journalkey"
)

// entry holds the saturating counters for one key. Once inserted into
// an Aggregator's map it is never removed or replaced; updates only
// ever move the atomics forward.
type entry struct {
	lines atomic.Uint64
	bytes atomic.Uint64
}

const maxU64 = ^uint64(0)

// addSaturating adds delta to *v, clamping at maxU64 on overflow and
// reporting whether it saturated.
func addSaturating(v *atomic.Uint64, delta uint64) (saturated bool) {
	for {
		old := v.Load()
		if delta == 0 {
			return false
		}
		if old > maxU64-delta {
			if v.CompareAndSwap(old, maxU64) {
				return true
			}
			continue
		}
		next := old + delta
		if v.CompareAndSwap(old, next) {
			return false
		}
	}
}

// Entry is a read-only view of one key's counters, used by snapshot().
type Entry struct {
	Key   journalkey.MessageKey
	Lines uint64
	Bytes uint64
}
