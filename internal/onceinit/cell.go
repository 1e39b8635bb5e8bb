// Package onceinit implements a value initialized at most once under a
// once-barrier, used by promstate to install its monitor filter set
// exactly once.
package onceinit

import "sync"

// Cell holds a value of type T that is set at most once. Reads before
// initialization block (via GetOrInit) or observe the zero value (via
// Get); reads after initialization never touch the barrier.
type Cell[T any] struct {
	once sync.Once
	mu   sync.RWMutex
	set  bool
	val  T
}

// GetOrInit returns the cell's value, initializing it with init() the
// first time any caller invokes GetOrInit. Concurrent callers during
// initialization block until init() completes; all of them observe the
// same value. init is called at most once regardless of concurrent
// callers.
func (c *Cell[T]) GetOrInit(init func() T) T {
	c.once.Do(func() {
		v := init()
		c.mu.Lock()
		c.val = v
		c.set = true
		c.mu.Unlock()
	})
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

// Set initializes the cell to value, if not already initialized. It
// returns (zero value, true) if this call performed the initialization, or
// (rejected value, false) if the cell was already set -- rejected is the
// value the caller passed in, returned back so it isn't silently
// dropped.
func (c *Cell[T]) Set(value T) (rejected T, didSet bool) {
	didSet = false
	c.once.Do(func() {
		c.mu.Lock()
		c.val = value
		c.set = true
		c.mu.Unlock()
		didSet = true
	})
	if didSet {
		var zero T
		return zero, true
	}
	return value, false
}

// Get returns the current value and whether it has been initialized.
// Safe to call concurrently with GetOrInit/Set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val, c.set
}
