// Package threadhandle wraps a goroutine whose body returns an error,
// giving it join-on-drop semantics: a failure that is never
// observed via Join is promoted to a panic instead of disappearing
// silently, and a panic inside the body is re-raised from Join.
package threadhandle

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
)

// ErrNotJoined is embedded in the panic raised when a Handle is garbage
// collected without ever having Join called on it.
var ErrNotJoined = errors.New("threadhandle: handle dropped without Join")

type panicValue struct {
	recovered any
	stack     []byte
}

// Handle is a joinable reference to a spawned goroutine.
type Handle struct {
	done    chan struct{}
	err     error
	panicV  *panicValue
	joined  atomic.Bool
}

// Go spawns f in a new goroutine and returns a Handle for it. A panic
// inside f is recovered and re-raised by Join (or, if the Handle is
// never joined, by the finalizer installed below).
func Go(f func() error) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.panicV = &panicValue{recovered: r, stack: capturePanicStack()}
			}
		}()
		h.err = f()
	}()
	runtime.SetFinalizer(h, finalizeUnjoined)
	return h
}

func capturePanicStack() []byte {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

// finalizeUnjoined is the GC safety net: if a Handle is collected
// without Join ever being called, and its body either panicked or
// returned a non-nil error, that failure must not vanish silently, so
// it panics. The finalizer runs on its own goroutine, disconnected
// from any caller, so that panic takes down the whole process;
// production code is expected to always call Join explicitly -- see
// Join's doc comment.
func finalizeUnjoined(h *Handle) {
	if h.joined.Load() {
		return
	}
	select {
	case <-h.done:
	default:
		// Still running; nothing to report yet.
		return
	}
	if h.panicV != nil || h.err != nil {
		panic(fmt.Sprintf("threadhandle: %v: goroutine finished with err=%v panic=%v, but Join was never called", ErrNotJoined, h.err, h.panicV))
	}
}

// Join blocks until the goroutine finishes, then either re-raises its
// panic, or returns its error. Callers MUST call Join on every Handle
// returned by Go -- failing to do so risks the
// failure being promoted to a panic asynchronously by the finalizer,
// which runs at an unpredictable time.
func (h *Handle) Join() error {
	<-h.done
	h.joined.Store(true)
	runtime.SetFinalizer(h, nil)
	if h.panicV != nil {
		panic(fmt.Sprintf("threadhandle: re-raising panic: %v\n%s", h.panicV.recovered, h.panicV.stack))
	}
	return h.err
}

// Done returns a channel that is closed when the goroutine finishes,
// for use in select statements alongside other channels (e.g. a
// terminate-notify). It does not suppress the Join-must-be-called
// requirement above.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
