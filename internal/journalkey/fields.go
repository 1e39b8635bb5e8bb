package journalkey

// The journal field names a caller translates into a MessageKey. Reading
// the journal itself is out of scope for this module; these
// constants exist so that the excluded journal-reader collaborator and
// this package agree on names instead of passing opaque strings around.
const (
	FieldMessage  = "MESSAGE"
	FieldPriority = "PRIORITY"
	FieldUID      = "_UID"
	FieldGID      = "_GID"
	FieldUnit     = "_SYSTEMD_UNIT"
	FieldSyslogID = "SYSLOG_IDENTIFIER"
)

// FieldSet names the sd_journal_get_data fields a caller reads to build
// a MessageKey. It exists so the journal-reading collaborator and this
// package share one documented vocabulary instead of passing opaque
// field-name strings around.
type FieldSet struct {
	Message  string
	Priority string
	UID      string
	GID      string
	Unit     string
	SyslogID string
}

// Fields is the canonical FieldSet this package expects callers to use.
var Fields = FieldSet{
	Message:  FieldMessage,
	Priority: FieldPriority,
	UID:      FieldUID,
	GID:      FieldGID,
	Unit:     FieldUnit,
	SyslogID: FieldSyslogID,
}
