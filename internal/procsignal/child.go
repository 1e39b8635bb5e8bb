package procsignal

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ExitResult is the tagged outcome of a child's exit: a normal exit
// code, or the signal that killed it.
type ExitResult struct {
	// ExitedNormally is true if the process called exit() (possibly via
	// main returning); Code is then the low 8 bits of its status.
	// Otherwise the process died from Sig.
	ExitedNormally bool
	Code           uint8
	Sig            Signal
}

// String renders the result for logging.
func (r ExitResult) String() string {
	if r.ExitedNormally {
		return fmt.Sprintf("exited with code %d", r.Code)
	}
	return fmt.Sprintf("killed by %s", r.Sig)
}

// ErrNoSuchProcess is returned by Terminate when the process is already
// gone.
var ErrNoSuchProcess = errors.New("procsignal: no such process")

// ChildProcessHandle is a process handle: a handle uniquely
// referring to a child process, usable to signal and await exit without
// PID-reuse races. Linux's pidfd is the real mechanism this stands in
// for; this implementation falls back to plain PID-based unix.Wait4
// (the supervisor owns the single child it spawned, so the PID-reuse
// window is a non-issue in practice as long as Wait is only ever called
// by the spawning process).
type ChildProcessHandle struct {
	pid int
}

// NewChildProcessHandle wraps a just-spawned child's PID.
func NewChildProcessHandle(pid int) *ChildProcessHandle {
	return &ChildProcessHandle{pid: pid}
}

// Pid returns the wrapped process ID.
func (h *ChildProcessHandle) Pid() int {
	return h.pid
}

// Terminate sends SIGTERM to the child.
func (h *ChildProcessHandle) Terminate() error {
	if err := unix.Kill(h.pid, unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			return ErrNoSuchProcess
		}
		return err
	}
	return nil
}

// Kill sends SIGKILL to the child, used as a last resort during
// destroy/cleanup paths that must guarantee no orphaned workers survive.
func (h *ChildProcessHandle) Kill() error {
	if err := unix.Kill(h.pid, unix.SIGKILL); err != nil {
		if err == unix.ESRCH {
			return ErrNoSuchProcess
		}
		return err
	}
	return nil
}

// Wait blocks until the child exits and returns its ExitResult. The
// caller must have installed a no-op SIGCHLD handler (NoopSIGCHLDHandler)
// before the first Wait call on any handle in the process, to
// guarantee the child is reapable.
func (h *ChildProcessHandle) Wait() (ExitResult, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(h.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ExitResult{}, fmt.Errorf("procsignal: wait4(%d): %w", h.pid, err)
		}
		break
	}
	if ws.Exited() {
		return ExitResult{ExitedNormally: true, Code: uint8(ws.ExitStatus())}, nil
	}
	return ExitResult{Sig: Signal(ws.Signal())}, nil
}

// IsAlive reports whether the process still exists, via a zero-signal
// probe.
func (h *ChildProcessHandle) IsAlive() bool {
	return unix.Kill(h.pid, 0) == nil
}
