package metrics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/talismancer/journald-exporter/internal/counter"
	"github.com/talismancer/journald-exporter/internal/idcache"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/journalkey"
	"github.com/talismancer/journald-exporter/internal/monitor"
)

// preallocatedBufferSize is pre-reserved so a render never
// reallocates the buffer for realistic key cardinalities.
const preallocatedBufferSize = 80 * 1024

// Render produces one metrics response frame: tag 0x00, u32-LE
// length, then the OpenMetrics text body. The returned bytes are
// written to the child's stdin as a single frame.
func Render(env PromEnvironment, snap PromSnapshot, table idcache.UidGidTable) []byte {
	var body bytes.Buffer
	body.Grow(preallocatedBufferSize)

	created := formatTimestamp(env.Created)

	renderGlobal(&body, "journald_entries_ingested", "", created, snap.Totals.EntriesIngested)
	renderGlobal(&body, "journald_fields_ingested", "", created, snap.Totals.FieldsIngested)
	renderGlobal(&body, "journald_data_ingested_bytes", "bytes", created, snap.Totals.DataIngestedBytes)
	renderGlobal(&body, "journald_faults", "", created, snap.Totals.Faults)
	renderGlobal(&body, "journald_cursor_double_retries", "", created, snap.Totals.CursorDoubleRetries)
	renderGlobal(&body, "journald_unreadable_fields", "", created, snap.Totals.UnreadableFields)
	renderGlobal(&body, "journald_corrupted_fields", "", created, snap.Totals.CorruptedFields)
	renderGlobal(&body, "journald_metrics_requests", "", created, snap.Totals.MetricsRequests)

	renderMessages(&body, "journald_messages_ingested", created, snap.MessagesIngested, table, false)
	renderMessages(&body, "journald_messages_ingested_bytes", created, snap.MessagesIngested, table, true)
	renderMonitorHits(&body, "journald_monitor_hits", created, snap.MonitorHits, table, false)
	renderMonitorHits(&body, "journald_monitor_hits_bytes", created, snap.MonitorHits, table, true)

	body.WriteString("# EOF\n")

	payload := body.Bytes()
	out := make([]byte, 0, 5+len(payload))
	out = append(out, byte(ipc.TagMetrics))
	out = appendU32LE(out, uint32(len(payload)))
	out = append(out, payload...)
	return out
}

func appendU32LE(b []byte, v uint32) []byte {
	return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// formatTimestamp renders t as fixed-point seconds with exactly three
// millisecond digits. Sub-millisecond precision is deliberately
// discarded so the exposition does not expose a fine-grained clock.
func formatTimestamp(t time.Time) string {
	unixNano := t.UnixNano()
	millis := unixNano / int64(time.Millisecond)
	seconds := millis / 1000
	remainder := millis % 1000
	return fmt.Sprintf("%d.%03d", seconds, remainder)
}

func renderGlobal(body *bytes.Buffer, name, unit, created string, value uint64) {
	fmt.Fprintf(body, "# TYPE %s counter\n", name)
	if unit != "" {
		fmt.Fprintf(body, "# UNIT %s %s\n", name, unit)
	}
	fmt.Fprintf(body, "%s_created %s\n", name, created)
	fmt.Fprintf(body, "%s_total %d\n", name, value)
}

func renderMessages(body *bytes.Buffer, name, created string, entries []counter.Entry, table idcache.UidGidTable, bytesFamily bool) {
	fmt.Fprintf(body, "# TYPE %s counter\n", name)
	if bytesFamily {
		fmt.Fprintf(body, "# UNIT %s bytes\n", name)
	}
	if len(entries) == 0 {
		fmt.Fprintf(body, "%s_created %s\n", name, created)
		fmt.Fprintf(body, "%s_total 0\n", name)
		return
	}
	for _, e := range entries {
		value := e.Lines
		if bytesFamily {
			value = e.Bytes
		}
		labels := messageLabels(e.Key, table, "")
		fmt.Fprintf(body, "%s_created%s %s\n", name, labels, created)
		fmt.Fprintf(body, "%s_total%s %d\n", name, labels, value)
	}
}

func renderMonitorHits(body *bytes.Buffer, name, created string, entries []monitor.HitEntry, table idcache.UidGidTable, bytesFamily bool) {
	fmt.Fprintf(body, "# TYPE %s counter\n", name)
	if bytesFamily {
		fmt.Fprintf(body, "# UNIT %s bytes\n", name)
	}
	if len(entries) == 0 {
		fmt.Fprintf(body, "%s_created %s\n", name, created)
		fmt.Fprintf(body, "%s_total 0\n", name)
		return
	}
	for _, e := range entries {
		value := e.Lines
		if bytesFamily {
			value = e.Bytes
		}
		labels := messageLabels(e.Key, table, e.Name)
		fmt.Fprintf(body, "%s_created%s %s\n", name, labels, created)
		fmt.Fprintf(body, "%s_total%s %d\n", name, labels, value)
	}
}

// messageLabels renders the fixed label set: service, priority,
// severity, user, group, and (only for monitor rows) a trailing name.
// Unresolved user/group and absent service render as "?".
func messageLabels(key journalkey.MessageKey, table idcache.UidGidTable, filterName string) string {
	service := "?"
	if key.Service.Valid {
		service = key.Service.Value.String()
	}
	user := "?"
	if key.UID.Valid {
		if name, ok := table.LookupUser(key.UID.Value); ok {
			user = name
		}
	}
	group := "?"
	if key.GID.Valid {
		if name, ok := table.LookupGroup(key.GID.Value); ok {
			group = name
		}
	}
	severity := string(key.Priority.AsSeverityByte())
	if filterName != "" {
		return fmt.Sprintf("{service=%q,priority=%q,severity=%q,user=%q,group=%q,name=%q}",
			service, key.Priority.String(), severity, user, group, filterName)
	}
	return fmt.Sprintf("{service=%q,priority=%q,severity=%q,user=%q,group=%q}",
		service, key.Priority.String(), severity, user, group)
}
