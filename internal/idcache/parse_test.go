package idcache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLinesBasic(t *testing.T) {
	data := []byte("root:x:0:0:root:/root:/bin/bash\ndaemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin\n")
	entries := ParseLines(data)
	require.Len(t, entries, 2)
	require.Equal(t, Entry{ID: 0, Name: "root"}, entries[0])
	require.Equal(t, Entry{ID: 1, Name: "daemon"}, entries[1])
}

func TestParseLinesNoTrailingNewline(t *testing.T) {
	data := []byte("root:x:0:0:root:/root:/bin/bash")
	entries := ParseLines(data)
	require.Len(t, entries, 1)
	require.Equal(t, "root", entries[0].Name)
}

func TestParseLinesSkipsMalformed(t *testing.T) {
	data := []byte("1bad:x:5:5::\ngood_name:x:6:6::\nno-colon-line\nnameonly:\n")
	entries := ParseLines(data)
	require.Len(t, entries, 1)
	require.Equal(t, Entry{ID: 6, Name: "good_name"}, entries[0])
}

func TestParseLinesDuplicateIDOverwrites(t *testing.T) {
	data := []byte("first:x:9:9::\nsecond:x:9:9::\n")
	entries := ParseLines(data)
	require.Len(t, entries, 1)
	require.Equal(t, "second", entries[0].Name)
}

func TestParseLinesIDOverflowDiscards(t *testing.T) {
	data := []byte("toobig:x:99999999999:9::\nok:x:10:10::\n")
	entries := ParseLines(data)
	require.Len(t, entries, 1)
	require.Equal(t, "ok", entries[0].Name)
}

func TestParseLinesTrailingDollar(t *testing.T) {
	data := []byte("machine$:x:100:100::\n")
	entries := ParseLines(data)
	require.Len(t, entries, 1)
	require.Equal(t, "machine$", entries[0].Name)
}

func TestParseLinesNameTooLong(t *testing.T) {
	long := make([]byte, maxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	data := append(long, []byte(":x:1:1::\n")...)
	require.Empty(t, ParseLines(data))
}

func TestParseLinesNameGrammarHolds(t *testing.T) {
	// Whatever bytes go in, every surviving entry's name must satisfy
	// the name grammar and its id must have fit in a uint32.
	inputs := [][]byte{
		[]byte("root:x:0:0::\n:::\n\n\x00\x01garbage\nweird$name$:x:1:1::\n"),
		[]byte("a:b:c\nx_1-2:pw:4294967295:\ny:pw:4294967296:\n"),
		[]byte("::::::\n_under:x:7:7::\n-lead:x:8:8::\n"),
	}
	for _, data := range inputs {
		for _, e := range ParseLines(data) {
			require.LessOrEqual(t, len(e.Name), maxNameLen)
			require.NotEmpty(t, e.Name)
			require.True(t, nameStartAllowed(e.Name[0]), "name %q", e.Name)
			body := e.Name[1:]
			if n := len(body); n > 0 && body[n-1] == '$' {
				body = body[:n-1]
			}
			for i := 0; i < len(body); i++ {
				require.True(t, nameContinueAllowed(body[i]), "name %q byte %d", e.Name, i)
			}
		}
	}
}
