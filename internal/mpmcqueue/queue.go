// Package mpmcqueue implements a tiny MPMC queue: a coarse,
// single-lock, whole-buffer-drain queue suitable for
// low-rate control signaling (child-state transitions, termination
// notifications) -- not for high-throughput data.
package mpmcqueue

import (
	"sync/atomic"
	"time"

	"github.com/talismancer/journald-exporter/internal/checkpoint"
)

// maxRefCount is the refcount ceiling; an increment past it aborts the
// process rather than wrapping.
const maxRefCount = 1<<31 - 1

// state is the checkpoint-guarded payload: the pending item queue.
type state[T any] struct {
	items []T
}

// Queue is a tiny multi-producer multi-consumer queue of items of type T.
// Senders and Receivers share one Queue; closing all Senders or all
// Receivers changes Disconnected semantics as described below.
type Queue[T any] struct {
	senders   atomic.Int32
	receivers atomic.Int32
	cp        *checkpoint.Checkpoint[state[T]]
}

// New creates a queue along with one Sender and one Receiver handle.
// Additional handles are obtained via Sender.Clone / Receiver.Clone.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &Queue[T]{cp: checkpoint.New(state[T]{})}
	q.senders.Store(1)
	q.receivers.Store(1)
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Sender is a handle that can push items into the queue.
type Sender[T any] struct {
	q *Queue[T]
}

// Receiver is a handle that can drain items from the queue.
type Receiver[T any] struct {
	q *Queue[T]
}

// Clone increments the sender refcount (acquire-on-read would be
// overkill in Go's memory model for a plain atomic counter; increments
// use Add, which is sequentially consistent).
func (s *Sender[T]) Clone() *Sender[T] {
	if s.q.senders.Add(1) > maxRefCount {
		panic("mpmcqueue: too many senders")
	}
	return &Sender[T]{q: s.q}
}

// Close decrements the sender refcount. Once it reaches zero, pending
// Receiver reads observe Disconnected once the queue drains empty.
func (s *Sender[T]) Close() {
	s.q.senders.Add(-1)
}

// Clone increments the receiver refcount.
func (r *Receiver[T]) Clone() *Receiver[T] {
	if r.q.receivers.Add(1) > maxRefCount {
		panic("mpmcqueue: too many receivers")
	}
	return &Receiver[T]{q: r.q}
}

// Close decrements the receiver refcount. Once it reaches zero, Send
// calls start returning Disconnected.
func (r *Receiver[T]) Close() {
	r.q.receivers.Add(-1)
}

// SendResult is returned by Send.
type SendResult[T any] struct {
	// Disconnected is true if there were no live receivers; Value holds
	// the item that could not be delivered.
	Disconnected bool
	Value        T
}

// Send pushes value if any receivers remain, notifying a waiting reader.
// If no receivers remain, it returns the value back to the caller
// wrapped in a Disconnected result instead of queuing it.
func (s *Sender[T]) Send(value T) SendResult[T] {
	if s.q.receivers.Load() == 0 {
		return SendResult[T]{Disconnected: true, Value: value}
	}
	s.q.cp.Notify(func(st *state[T]) {
		st.items = append(st.items, value)
	})
	return SendResult[T]{}
}

// ReadStatus is the outcome of a ReadWithTimeout call.
type ReadStatus int

const (
	// ReadOK means items contains at least one drained item.
	ReadOK ReadStatus = iota
	// ReadTimedOut means the timeout elapsed with no items available and
	// at least one sender is still alive.
	ReadTimedOut
	// ReadDisconnected means no senders remain and the queue was empty.
	ReadDisconnected
)

// ReadWithTimeout drains with a deadline: if the queue
// is non-empty, it atomically drains the entire queue; otherwise, if any
// senders remain, it waits up to timeout and re-checks; if still empty
// and no senders remain, it reports Disconnected.
func (r *Receiver[T]) ReadWithTimeout(timeout time.Duration) ([]T, ReadStatus) {
	// The sender count is read before each drain: once it is zero no
	// further sends happen, so an empty drain after it is final.
	sendersGone := r.q.senders.Load() == 0
	if items, ok := r.drainIfNonEmpty(); ok {
		return items, ReadOK
	}
	if sendersGone {
		return nil, ReadDisconnected
	}

	g, waited := r.q.cp.WaitFor(timeout)
	if waited {
		g.Unlock()
	}

	sendersGone = r.q.senders.Load() == 0
	if items, ok := r.drainIfNonEmpty(); ok {
		return items, ReadOK
	}
	if sendersGone {
		return nil, ReadDisconnected
	}
	return nil, ReadTimedOut
}

func (r *Receiver[T]) drainIfNonEmpty() ([]T, bool) {
	var drained []T
	r.q.cp.Peek(func(st *state[T]) {
		if len(st.items) == 0 {
			return
		}
		drained = st.items
		st.items = nil
	})
	if drained == nil {
		return nil, false
	}
	return drained, true
}
