package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync/atomic"
	"syscall"

	"github.com/talismancer/journald-exporter/internal/corelog"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/procsignal"
)

// WorkerIdentity is the UID/GID the worker process is spawned under,
// resolved by the (out-of-scope) config layer.
type WorkerIdentity struct {
	UID uint32
	GID uint32
}

// ChildHandle bundles the per-spawn resources under one owner: the
// worker's stdin/stdout and its process handle. It is
// created per spawn and torn down once the child has been waited on.
type ChildHandle struct {
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Proc   *procsignal.ChildProcessHandle

	cmd    *exec.Cmd
	reaped atomic.Bool
}

// Spawn starts the worker binary at execPath with stdin/stdout piped
// and stderr inherited, dropping privileges to identity, and performs
// the version handshake before returning. The caller hands the
// returned handle to the IPC loop.
func Spawn(execPath string, args []string, identity WorkerIdentity) (*ChildHandle, error) {
	cmd := exec.Command(execPath, args...)
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: identity.UID, Gid: identity.GID},
	}
	procsignal.RequestSignalWhenParentTerminates(cmd, procsignal.SIGKILL)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("supervisor: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("supervisor: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("supervisor: spawn %s: %w", execPath, err)
	}
	corelog.Infof("spawned worker pid=%d uid=%d gid=%d", cmd.Process.Pid, identity.UID, identity.GID)

	if err := ipc.WriteHandshake(stdin); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("supervisor: handshake write: %w", err)
	}

	handle := &ChildHandle{
		Stdin:  stdin,
		Stdout: stdout,
		Proc:   procsignal.NewChildProcessHandle(cmd.Process.Pid),
		cmd:    cmd,
	}
	runtime.SetFinalizer(handle, finalizeUnreaped)
	return handle, nil
}

// finalizeUnreaped is the GC safety net mirroring threadhandle's
// finalize-on-drop pattern: if a ChildHandle is collected without ever
// being Wait'd or Destroy'd -- a panic unwinding past the manager
// before cleanup runs, say -- this guarantees the worker is still
// killed and reaped rather than left an orphan.
func finalizeUnreaped(h *ChildHandle) {
	if h.reaped.Load() {
		return
	}
	h.Destroy()
}

// Terminate signals the child with SIGTERM. A missing process is not
// an error: the child may already have exited.
func (h *ChildHandle) Terminate() error {
	if err := h.Proc.Terminate(); err != nil && err != procsignal.ErrNoSuchProcess {
		return err
	}
	return nil
}

// Wait blocks until the child exits and returns its ExitResult. It
// does not touch the stdio pipes: the IPC loop keeps reading until the
// child's side closes, and the parent ends are released separately via
// Close once the loop has drained. Safe to call exactly once per
// handle.
func (h *ChildHandle) Wait() (procsignal.ExitResult, error) {
	result, err := h.Proc.Wait()
	h.reaped.Store(true)
	runtime.SetFinalizer(h, nil)
	return result, err
}

// Close releases the parent's ends of the stdio pipes. Call after the
// IPC loop has finished with them.
func (h *ChildHandle) Close() {
	_ = h.Stdin.Close()
	_ = h.Stdout.Close()
}

// Destroy is the panic/shutdown-path cleanup guaranteeing no worker
// outlives its supervisor: kill unconditionally, then reap.
func (h *ChildHandle) Destroy() {
	_ = h.Proc.Kill()
	_, _ = h.Wait()
	h.Close()
}
