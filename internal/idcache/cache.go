package idcache

import (
	"os"
	"sync"
	"time"
)

// ttl is the cache lifetime between forced refreshes.
const ttl = 10 * time.Minute

// Cache lazily refreshes a UidGidTable snapshot from the passwd and
// group source files, applying a TTL-and-mtime refresh policy. It is
// shared (read-only snapshots) between the renderer and the
// IPC loop, replaced atomically by refresh.
type Cache struct {
	passwdPath string
	groupPath  string

	// clock exists purely to let tests control time without sleeping;
	// it defaults to time.Now.
	clock func() time.Time

	mu          sync.Mutex
	table       UidGidTable
	lastUpdated time.Time
	expiry      time.Time
	haveCache   bool
}

// New creates a Cache reading from the given passwd/group file paths
// (e.g. "/etc/passwd" and "/etc/group").
func New(passwdPath, groupPath string) *Cache {
	return &Cache{passwdPath: passwdPath, groupPath: groupPath, clock: time.Now}
}

// Get returns the current UidGidTable, refreshing it first if the TTL
// has elapsed. It never returns an error: a refresh failure falls back
// to the last good snapshot (or an empty table on first use), since a
// missing name resolution degrades gracefully to "?" in the renderer
// rather than failing the whole scrape.
func (c *Cache) Get() UidGidTable {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.haveCache && now.Before(c.expiry) {
		return c.table
	}

	maxMtime, statOK := c.statMaxMtime()
	if statOK && c.haveCache && maxMtime.Equal(c.lastUpdated) {
		// Source files unchanged since last parse: extend the expiry
		// without re-reading or re-parsing.
		c.expiry = now.Add(ttl)
		return c.table
	}

	table, updated, ok := c.reparse()
	if !ok {
		// Stat or read failed; keep serving the stale snapshot (if any)
		// but still push the expiry out so we don't hammer the
		// filesystem on every single request during an outage.
		c.expiry = now.Add(ttl)
		return c.table
	}
	c.table = table
	c.lastUpdated = updated
	c.expiry = now.Add(ttl)
	c.haveCache = true
	return c.table
}

func (c *Cache) statMaxMtime() (time.Time, bool) {
	p, pErr := os.Stat(c.passwdPath)
	g, gErr := os.Stat(c.groupPath)
	if pErr != nil || gErr != nil {
		return time.Time{}, false
	}
	max := p.ModTime()
	if g.ModTime().After(max) {
		max = g.ModTime()
	}
	return max, true
}

func (c *Cache) reparse() (UidGidTable, time.Time, bool) {
	maxMtime, ok := c.statMaxMtime()
	if !ok {
		return UidGidTable{}, time.Time{}, false
	}
	passwdData, err := os.ReadFile(c.passwdPath)
	if err != nil {
		return UidGidTable{}, time.Time{}, false
	}
	groupData, err := os.ReadFile(c.groupPath)
	if err != nil {
		return UidGidTable{}, time.Time{}, false
	}
	table := UidGidTable{
		UIDs: NewTable(ParseLines(passwdData)),
		GIDs: NewTable(ParseLines(groupData)),
	}
	return table, maxMtime, true
}
