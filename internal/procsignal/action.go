package procsignal

import (
	"os"
	"os/signal"
)

// Handler receives a delivered Signal. It runs on a dedicated goroutine
// fed by Go's runtime signal notification machinery (see Install); it
// must not allocate in the hot path if used from latency-sensitive
// code.
type Handler func(Signal)

// Action binds a Handler to a signal mask. Go cannot install a raw
// sigaction callback from user code (signals are funneled through the
// runtime's os/signal machinery), so Action adapts that model to a
// handler-plus-mask shape: Install adds mask to the calling thread's
// blocked-signal mask (best-effort) and the returned stop function
// leaves that mask in place.
type Action struct {
	handler Handler
	mask    SignalSet
	ch      chan os.Signal
	done    chan struct{}
}

// NewAction creates an Action. Call Install to activate it.
func NewAction(handler Handler, mask SignalSet) *Action {
	return &Action{handler: handler, mask: mask, done: make(chan struct{})}
}

// Install begins delivering sig to the action's handler on a dedicated
// goroutine. Returns a Stop function that reverts the installation.
func (a *Action) Install(sig Signal) (stop func()) {
	if err := a.mask.SetBlocked(); err != nil {
		// Blocking is best-effort; proceed regardless since
		// os/signal.Notify still delivers the signal to this process.
		_ = err
	}
	a.ch = make(chan os.Signal, 1)
	signal.Notify(a.ch, signalToOS(sig))
	go func() {
		for {
			select {
			case s := <-a.ch:
				a.handler(osToSignal(s))
			case <-a.done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(a.ch)
		close(a.done)
	}
}

// NoopSIGCHLDHandler installs a no-op SIGCHLD handler and blocks SIGCHLD
// from default disposition. This exists purely to avoid the POSIX quirk
// where SIG_IGN on SIGCHLD turns children into non-reapable zombies on
// some platforms. Install it before a ChildProcessHandle's first
// Wait.
func NoopSIGCHLDHandler() (stop func()) {
	a := NewAction(func(Signal) {}, NewSignalSet().Add(SIGCHLD))
	return a.Install(SIGCHLD)
}
