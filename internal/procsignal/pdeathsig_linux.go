//go:build linux

package procsignal

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// RequestSignalWhenParentTerminates arranges for cmd's SysProcAttr so
// that the child is sent sig when this (the spawning) process dies.
// Must be set before the process is started.
func RequestSignalWhenParentTerminates(cmd *exec.Cmd, sig Signal) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = unix.Signal(sig)
}
