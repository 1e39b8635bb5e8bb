package metrics

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/talismancer/journald-exporter/internal/counter"
	"github.com/talismancer/journald-exporter/internal/idcache"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/journalkey"
)

func TestFormatTimestampFixedPoint(t *testing.T) {
	ts := time.Unix(123, 456000000)
	got := formatTimestamp(ts)
	if got != "123.456" {
		t.Fatalf("got %q, want %q", got, "123.456")
	}
}

func TestRenderSingleMessageEntry(t *testing.T) {
	svc, ok := journalkey.NewServiceRepr([]byte("foo.service"))
	if !ok {
		t.Fatal("bad service repr")
	}
	key := journalkey.MessageKey{
		Priority: journalkey.PriorityInfo,
		UID:      journalkey.SomeID(123),
		GID:      journalkey.SomeID(123),
		Service:  journalkey.SomeService(svc),
	}
	snap := PromSnapshot{
		MessagesIngested: []counter.Entry{{Key: key, Lines: 1, Bytes: 5}},
	}
	env := PromEnvironment{Created: time.Unix(123, 456000000)}
	table := idcache.UidGidTable{
		UIDs: idcache.NewTable([]idcache.Entry{{ID: 123, Name: "app"}}),
		GIDs: idcache.NewTable([]idcache.Entry{{ID: 123, Name: "app"}}),
	}

	out := Render(env, snap, table)
	if out[0] != byte(ipc.TagMetrics) {
		t.Fatalf("frame tag = %d, want TagMetrics", out[0])
	}
	body := string(out[5:])
	if !strings.Contains(body, `journald_messages_ingested_created{service="foo.service",priority="INFO",severity="6",user="app",group="app"} 123.456`) {
		t.Fatalf("missing expected per-entry created row in body:\n%s", body)
	}
	if !strings.Contains(body, `journald_messages_ingested_total{service="foo.service",priority="INFO",severity="6",user="app",group="app"} 1`) {
		t.Fatalf("missing expected lines row in body:\n%s", body)
	}
	if !strings.Contains(body, `journald_messages_ingested_bytes_total{service="foo.service",priority="INFO",severity="6",user="app",group="app"} 5`) {
		t.Fatalf("missing expected bytes row in body:\n%s", body)
	}
	if !strings.Contains(body, "_created 123.456") {
		t.Fatalf("missing created timestamp in body:\n%s", body)
	}
	if !strings.HasSuffix(body, "# EOF\n") {
		t.Fatalf("body does not end with # EOF:\n%s", body)
	}
}

func TestRenderEmptyMessageFamilyStillEmitsTotalZero(t *testing.T) {
	env := PromEnvironment{Created: time.Unix(1, 0)}
	out := Render(env, PromSnapshot{}, idcache.UidGidTable{})
	body := string(out[5:])
	if !strings.Contains(body, "journald_messages_ingested_total 0\n") {
		t.Fatalf("expected a zero total row for an empty family:\n%s", body)
	}
}

func TestRenderUnresolvedUserRendersQuestionMark(t *testing.T) {
	key := journalkey.MessageKey{Priority: journalkey.PriorityWarning, UID: journalkey.SomeID(999)}
	snap := PromSnapshot{MessagesIngested: []counter.Entry{{Key: key, Lines: 1, Bytes: 1}}}
	out := Render(PromEnvironment{Created: time.Unix(0, 0)}, snap, idcache.UidGidTable{})
	body := string(out[5:])
	if !strings.Contains(body, `user="?"`) {
		t.Fatalf("expected unresolved uid to render as ?, got:\n%s", body)
	}
}

func TestRenderFrameLengthMatchesBody(t *testing.T) {
	out := Render(PromEnvironment{Created: time.Unix(0, 0)}, PromSnapshot{}, idcache.UidGidTable{})
	var length uint32
	for i := 0; i < 4; i++ {
		length |= uint32(out[1+i]) << (8 * i)
	}
	if int(length) != len(out)-5 {
		t.Fatalf("frame length %d does not match body length %d", length, len(out)-5)
	}
}

func TestRenderEmptySnapshotExactExposition(t *testing.T) {
	env := PromEnvironment{Created: time.Unix(123, 456000000)}
	out := Render(env, PromSnapshot{}, idcache.UidGidTable{})
	body := string(out[5:])

	want := `# TYPE journald_entries_ingested counter
journald_entries_ingested_created 123.456
journald_entries_ingested_total 0
# TYPE journald_fields_ingested counter
journald_fields_ingested_created 123.456
journald_fields_ingested_total 0
# TYPE journald_data_ingested_bytes counter
# UNIT journald_data_ingested_bytes bytes
journald_data_ingested_bytes_created 123.456
journald_data_ingested_bytes_total 0
# TYPE journald_faults counter
journald_faults_created 123.456
journald_faults_total 0
# TYPE journald_cursor_double_retries counter
journald_cursor_double_retries_created 123.456
journald_cursor_double_retries_total 0
# TYPE journald_unreadable_fields counter
journald_unreadable_fields_created 123.456
journald_unreadable_fields_total 0
# TYPE journald_corrupted_fields counter
journald_corrupted_fields_created 123.456
journald_corrupted_fields_total 0
# TYPE journald_metrics_requests counter
journald_metrics_requests_created 123.456
journald_metrics_requests_total 0
# TYPE journald_messages_ingested counter
journald_messages_ingested_created 123.456
journald_messages_ingested_total 0
# TYPE journald_messages_ingested_bytes counter
# UNIT journald_messages_ingested_bytes bytes
journald_messages_ingested_bytes_created 123.456
journald_messages_ingested_bytes_total 0
# TYPE journald_monitor_hits counter
journald_monitor_hits_created 123.456
journald_monitor_hits_total 0
# TYPE journald_monitor_hits_bytes counter
# UNIT journald_monitor_hits_bytes bytes
journald_monitor_hits_bytes_created 123.456
journald_monitor_hits_bytes_total 0
# EOF
`
	if body != want {
		t.Fatalf("exposition mismatch:\ngot:\n%s\nwant:\n%s", body, want)
	}
}

func TestRenderU64Boundaries(t *testing.T) {
	snap := PromSnapshot{}
	snap.Totals.EntriesIngested = math.MaxUint64
	out := Render(PromEnvironment{Created: time.Unix(0, 0)}, snap, idcache.UidGidTable{})
	body := string(out[5:])
	if !strings.Contains(body, "journald_entries_ingested_total 18446744073709551615\n") {
		t.Fatalf("u64 max not rendered without loss:\n%s", body)
	}
	if !strings.Contains(body, "journald_faults_total 0\n") {
		t.Fatalf("zero not rendered as 0:\n%s", body)
	}

	// Every rendered decimal must round-trip back to its value.
	for _, line := range strings.Split(body, "\n") {
		if !strings.Contains(line, "_total ") {
			continue
		}
		dec := line[strings.LastIndexByte(line, ' ')+1:]
		if _, err := strconv.ParseUint(dec, 10, 64); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
	}
}
