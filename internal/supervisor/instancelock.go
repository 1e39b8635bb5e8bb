package supervisor

import (
	"fmt"

	"github.com/gofrs/flock"
)

// InstanceLock guarantees at most one supervisor runs against a given
// state directory at a time, extending the at-most-one-child
// invariant up one level to the parent itself.
type InstanceLock struct {
	fl *flock.Flock
}

// AcquireInstanceLock tries to take an exclusive, non-blocking lock on
// path (typically a lock file inside the runtime state directory). It
// returns an error if another supervisor already holds it.
func AcquireInstanceLock(path string) (*InstanceLock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("supervisor: lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("supervisor: another instance already holds %s", path)
	}
	return &InstanceLock{fl: fl}, nil
}

// Release drops the lock.
func (l *InstanceLock) Release() error {
	return l.fl.Unlock()
}
