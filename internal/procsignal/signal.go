// Package procsignal provides signal and waitable-child primitives:
// a Signal value type, a SignalSet builder, a
// ChildProcessHandle that can terminate() and wait() a spawned process,
// and parent-death signaling.
package procsignal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Signal is a POSIX signal number, covering the standard set plus the
// real-time range.
type Signal int

// The subset of standard signals this module issues or reasons about.
const (
	SIGHUP  Signal = Signal(unix.SIGHUP)
	SIGINT  Signal = Signal(unix.SIGINT)
	SIGQUIT Signal = Signal(unix.SIGQUIT)
	SIGKILL Signal = Signal(unix.SIGKILL)
	SIGTERM Signal = Signal(unix.SIGTERM)
	SIGCHLD Signal = Signal(unix.SIGCHLD)
	SIGUSR1 Signal = Signal(unix.SIGUSR1)
	SIGUSR2 Signal = Signal(unix.SIGUSR2)
)

const (
	rtMin = 34 // SIGRTMIN on Linux/glibc
	rtMax = 64 // SIGRTMAX on Linux/glibc
)

var standardNames = map[Signal]string{
	SIGHUP:  "SIGHUP",
	SIGINT:  "SIGINT",
	SIGQUIT: "SIGQUIT",
	SIGKILL: "SIGKILL",
	SIGTERM: "SIGTERM",
	SIGCHLD: "SIGCHLD",
	SIGUSR1: "SIGUSR1",
	SIGUSR2: "SIGUSR2",
}

// String renders named signals as "SIGFOO" and real-time signals as
// "SIGRTMIN+N".
func (s Signal) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	if int(s) >= rtMin && int(s) <= rtMax {
		offset := int(s) - rtMin
		if offset == 0 {
			return "SIGRTMIN"
		}
		return fmt.Sprintf("SIGRTMIN+%d", offset)
	}
	return fmt.Sprintf("signal %d", int(s))
}

// SignalSet is a builder for a set of signals, used with SetBlocked.
type SignalSet struct {
	signals []Signal
}

// NewSignalSet returns an empty set.
func NewSignalSet() SignalSet {
	return SignalSet{}
}

// Add appends signals to the set and returns the set for chaining.
func (s SignalSet) Add(sig ...Signal) SignalSet {
	s.signals = append(s.signals, sig...)
	return s
}

// SetBlocked adds the set to the calling thread's blocked-signal mask;
// other threads of the process keep their own masks.
func (s SignalSet) SetBlocked() error {
	var set unix.Sigset_t
	for _, sig := range s.signals {
		addToSigset(&set, sig)
	}
	return unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil)
}

// Unblock removes the set from the calling thread's blocked-signal mask.
func (s SignalSet) Unblock() error {
	var set unix.Sigset_t
	for _, sig := range s.signals {
		addToSigset(&set, sig)
	}
	return unix.PthreadSigmask(unix.SIG_UNBLOCK, &set, nil)
}
