// Package metrics renders a PromSnapshot into OpenMetrics text
// exposition, and defines the snapshot/environment types the renderer
// consumes.
package metrics

import (
	"time"

	"github.com/talismancer/journald-exporter/internal/counter"
	"github.com/talismancer/journald-exporter/internal/monitor"
)

// PromEnvironment carries the ambient values the renderer needs that
// aren't part of the snapshot itself.
type PromEnvironment struct {
	Created time.Time
}

// PromSnapshot is the full point-in-time state rendered by one scrape:
// the eight scalar counters plus the two per-key families.
type PromSnapshot struct {
	Totals           counter.Totals
	MessagesIngested []counter.Entry
	MonitorHits      []monitor.HitEntry
}
