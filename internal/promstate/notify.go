package promstate

import "github.com/talismancer/journald-exporter/internal/checkpoint"

// Notify is a one-to-many broadcast signal built on checkpoint.
// Signal() is safe to call repeatedly; each call wakes the waiters
// blocked at that moment. A Wait that starts after a Signal does not
// observe it.
type Notify struct {
	cp *checkpoint.Checkpoint[uint64]
}

// NewNotify returns an unsignaled Notify.
func NewNotify() *Notify {
	return &Notify{cp: checkpoint.New[uint64](0)}
}

// Signal wakes every current waiter.
func (n *Notify) Signal() {
	n.cp.Notify(func(v *uint64) { *v++ })
}

// Wait blocks until the next Signal call.
func (n *Notify) Wait() {
	g := n.cp.Wait()
	g.Unlock()
}
