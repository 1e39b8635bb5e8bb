// Package idcache implements the UID/GID name cache: a TTL- and
// mtime-gated cache of the passwd/group name tables,
// refreshed lazily on request.
package idcache

import "strconv"

// maxNameLen is the maximum length of a decoded name.
const maxNameLen = 32

// nameStartAllowed reports whether b may start a name: [A-Za-z_].
func nameStartAllowed(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// nameContinueAllowed reports whether b may continue a name after the
// first byte: [0-9A-Za-z_-].
func nameContinueAllowed(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_' || b == '-'
}

// Entry is one decoded (id, name) pair.
type Entry struct {
	ID   uint32
	Name string
}

// ParseLines parses the passwd/group line format
// "name:password:id:...", terminated by newline or end of input.
// Malformed lines are skipped up to the next newline; duplicate ids
// overwrite previous names, preserving the insertion-order position of
// the first occurrence to keep the resulting table stable.
func ParseLines(data []byte) []Entry {
	var entries []Entry
	index := make(map[uint32]int)

	pos := 0
	for pos < len(data) {
		lineEnd := pos
		for lineEnd < len(data) && data[lineEnd] != '\n' {
			lineEnd++
		}
		line := data[pos:lineEnd]
		pos = lineEnd + 1

		if e, ok := parseLine(line); ok {
			if i, dup := index[e.ID]; dup {
				entries[i] = e
			} else {
				index[e.ID] = len(entries)
				entries = append(entries, e)
			}
		}
	}
	return entries
}

// parseLine decodes a single "name:password:id:..." line.
func parseLine(line []byte) (Entry, bool) {
	if len(line) == 0 {
		return Entry{}, false
	}
	nameEnd := 0
	for nameEnd < len(line) && line[nameEnd] != ':' {
		nameEnd++
	}
	if nameEnd == len(line) {
		return Entry{}, false // no colon at all
	}
	name := line[:nameEnd]
	if len(name) == 0 || !nameStartAllowed(name[0]) {
		return Entry{}, false
	}
	i := 1
	for i < len(name) && nameContinueAllowed(name[i]) {
		i++
	}
	// Optional single trailing '$'.
	if i < len(name) && name[i] == '$' {
		i++
	}
	if i != len(name) {
		return Entry{}, false // trailing bytes didn't match the grammar
	}
	if len(name) > maxNameLen {
		return Entry{}, false
	}

	rest := line[nameEnd+1:]
	colon := 0
	for colon < len(rest) && rest[colon] != ':' {
		colon++
	}
	if colon == len(rest) {
		return Entry{}, false // missing password field terminator
	}
	idField := rest[colon+1:]
	idEnd := 0
	for idEnd < len(idField) && idField[idEnd] != ':' {
		idEnd++
	}
	idStr := string(idField[:idEnd])
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return Entry{}, false // non-numeric or overflowing u32
	}

	return Entry{ID: uint32(id), Name: string(name)}, true
}
