package journalkey

// MaxServiceLen is the maximum number of bytes a service name may occupy.
// Names longer than this are rejected outright.
const MaxServiceLen = 256

// serviceByteAllowed reports whether b may appear in a service name: the
// class [0-9A-Za-z:._\-@\\].
func serviceByteAllowed(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b == ':' || b == '.' || b == '_' || b == '-' || b == '@' || b == '\\':
		return true
	default:
		return false
	}
}

// ServiceRepr is the raw-byte representation of a systemd unit name. It is
// compared by byte equality, never normalized.
type ServiceRepr struct {
	raw string
}

// NewServiceRepr validates b against the service name grammar (ASCII,
// length <= MaxServiceLen, byte class as above) and returns the
// corresponding ServiceRepr. ok is false if any byte is disallowed or the
// name is too long; in that case the whole name is rejected, not just the
// bad byte.
func NewServiceRepr(b []byte) (ServiceRepr, bool) {
	if len(b) == 0 || len(b) > MaxServiceLen {
		return ServiceRepr{}, false
	}
	for _, c := range b {
		if !serviceByteAllowed(c) {
			return ServiceRepr{}, false
		}
	}
	return ServiceRepr{raw: string(b)}, true
}

// Bytes returns the raw service name bytes.
func (s ServiceRepr) Bytes() []byte {
	return []byte(s.raw)
}

// String implements fmt.Stringer.
func (s ServiceRepr) String() string {
	return s.raw
}

// Equal reports byte-for-byte equality.
func (s ServiceRepr) Equal(other ServiceRepr) bool {
	return s.raw == other.raw
}

// templateSeparator is the character that splits a unit@instance name into
// its base and instance parts (e.g. "getty@tty1.service").
const templateSeparator = '@'

// baseAndInstance splits a service name into (base, instance, hasInstance).
// "getty@tty1.service" -> ("getty@.service", "tty1", true).
func (s ServiceRepr) baseAndInstance() (base string, instance string, ok bool) {
	at := -1
	for i := 0; i < len(s.raw); i++ {
		if s.raw[i] == templateSeparator {
			at = i
			break
		}
	}
	if at < 0 {
		return "", "", false
	}
	// Find the suffix after the instance (typically ".service").
	suffix := ""
	for i := at + 1; i < len(s.raw); i++ {
		if s.raw[i] == '.' {
			suffix = s.raw[i:]
			break
		}
	}
	return s.raw[:at] + "@" + suffix, s.raw[at+1 : len(s.raw)-len(suffix)], true
}

// Matches compares a filter's configured service value (self)
// against an observed service name. Exact byte equality always matches.
// When self names a template unit (base@.suffix, with an empty instance
// component), any instance of that template matches.
func (self ServiceRepr) Matches(observed ServiceRepr) bool {
	if self.Equal(observed) {
		return true
	}
	selfBase, selfInstance, selfIsTemplate := self.baseAndInstance()
	if !selfIsTemplate || selfInstance != "" {
		// self is either not a template or is a concrete instance;
		// either way only exact equality applies.
		return false
	}
	obsBase, _, obsIsTemplate := observed.baseAndInstance()
	if !obsIsTemplate {
		return false
	}
	return selfBase == obsBase
}
