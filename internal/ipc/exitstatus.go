package ipc

import "github.com/talismancer/journald-exporter/internal/procsignal"

// ExitStatus bundles the outcome of one child lifecycle: the exit
// result (if the wait succeeded), and any errors
// encountered on the parent's IPC-loop side or the child-wait side.
type ExitStatus struct {
	Result         *procsignal.ExitResult
	ParentError    error
	ChildWaitError error
}
