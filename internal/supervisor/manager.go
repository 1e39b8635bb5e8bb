package supervisor

import (
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talismancer/journald-exporter/internal/corelog"
	"github.com/talismancer/journald-exporter/internal/idcache"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/mpmcqueue"
	"github.com/talismancer/journald-exporter/internal/procsignal"
	"github.com/talismancer/journald-exporter/internal/promstate"
	"github.com/talismancer/journald-exporter/internal/threadhandle"
)

// Manager drives the spawn manager state machine: it owns the
// Idle/Starting/Running/Waiting/Backoff transitions across
// worker lifetimes until TerminateNotify fires or the restart policy
// gives up.
type Manager struct {
	cfg    Config
	state  *promstate.State
	ids    *idcache.Cache
	policy *RestartPolicy

	terminated  chan struct{}
	stopSIGCHLD func()
}

// NewManager builds a Manager ready to Run. It installs the
// process-wide no-op SIGCHLD handler required before any
// ChildProcessHandle.Wait call, and starts the single goroutine that
// turns state's one-shot TerminateNotify broadcast into
// a sticky channel: Notify.Wait only catches a broadcast that happens
// after it starts waiting, so this goroutine must be the only waiter
// and must start before Run's loop can possibly race a Signal call.
func NewManager(cfg Config, state *promstate.State) *Manager {
	m := &Manager{
		cfg:         cfg,
		state:       state,
		ids:         idcache.New(cfg.PasswdPath, cfg.GroupPath),
		policy:      NewRestartPolicy(),
		terminated:  make(chan struct{}),
		stopSIGCHLD: procsignal.NoopSIGCHLDHandler(),
	}
	go func() {
		state.TerminateNotify().Wait()
		close(m.terminated)
	}()
	return m
}

// Close reverts process-wide signal installation. Call once, at
// process exit.
func (m *Manager) Close() {
	m.stopSIGCHLD()
}

// Run drives the state machine until TerminateNotify fires or the
// restart policy reports too many fast failures, whichever comes
// first. It returns the terminal error, or nil on a clean shutdown.
func (m *Manager) Run() error {
	current := StateIdle
	for {
		select {
		case <-m.terminateCh():
			return nil
		default:
		}

		switch current {
		case StateIdle, StateStarting:
			// Running and Waiting are not tracked as distinct values of
			// current: runChild blocks for the child's whole lifetime,
			// so this branch passes through both synchronously before
			// handleExit picks the next state.
			handle, err := Spawn(m.cfg.WorkerExecPath, m.cfg.WorkerArgs, m.cfg.Identity)
			if err != nil {
				corelog.Errorf("spawn failed: %v", err)
				current = StateBackoff
				break
			}
			NotifyReady()
			status := m.runChild(handle)
			current = m.handleExit(status)
		case StateBackoff:
			delay, err := m.policy.RecordExit()
			if err != nil {
				return err
			}
			time.Sleep(delay)
			current = StateStarting
		default:
			current = StateStarting
		}
	}
}

// terminateCh returns the sticky channel closed once termination has
// been signaled. Safe to read from any number of goroutines, any
// number of times, unlike a raw Notify.Wait call.
func (m *Manager) terminateCh() <-chan struct{} {
	return m.terminated
}

// waitOutcome is the single message the child-wait thread sends once
// the worker has been reaped.
type waitOutcome struct {
	exit procsignal.ExitResult
	err  error
}

// exitPollInterval paces the supervising thread's checks for a
// terminate request while the child is still running.
const exitPollInterval = 200 * time.Millisecond

// runChild runs one worker lifetime: the IPC reader runs on a joinable
// thread handle (so a panic in it is re-raised here instead of being
// lost), the reap runs on its own goroutine and reports through a tiny
// queue, and this thread supervises both, forwarding terminate
// requests to the child as they arrive.
func (m *Manager) runChild(handle *ChildHandle) ipc.ExitStatus {
	var status ipc.ExitStatus
	ipcJoined := false

	ipcThread := threadhandle.Go(func() error {
		return RunIPCLoop(handle, m.state, m.ids, m.cfg.KeyDirectory, time.Now)
	})

	exitTx, exitRx := mpmcqueue.New[waitOutcome]()
	defer exitRx.Close()

	var g errgroup.Group
	g.Go(func() error {
		defer exitTx.Close()
		exit, err := handle.Wait()
		exitTx.Send(waitOutcome{exit: exit, err: err})
		return nil
	})
	g.Go(func() error {
		for {
			items, st := exitRx.ReadWithTimeout(exitPollInterval)
			switch st {
			case mpmcqueue.ReadOK:
				outcome := items[len(items)-1]
				if outcome.err != nil {
					status.ChildWaitError = outcome.err
				} else {
					exit := outcome.exit
					status.Result = &exit
				}
				return nil
			case mpmcqueue.ReadDisconnected:
				return nil
			}

			select {
			case <-m.terminateCh():
				_ = handle.Terminate()
			default:
			}

			if !ipcJoined {
				select {
				case <-ipcThread.Done():
					ipcJoined = true
					if err := ipcThread.Join(); err != nil && err != io.EOF {
						status.ParentError = err
						// A protocol failure leaves no usable stream;
						// stop the worker so the reap can finish.
						_ = handle.Terminate()
					}
				default:
				}
			}
		}
	})
	_ = g.Wait()

	if !ipcJoined {
		if err := ipcThread.Join(); err != nil && err != io.EOF {
			status.ParentError = err
		}
	}
	handle.Close()
	return status
}

// handleExit classifies a finished child lifetime and returns the
// next state.
func (m *Manager) handleExit(status ipc.ExitStatus) SpawnState {
	if status.ChildWaitError != nil {
		corelog.Errorf("child wait error: %v", status.ChildWaitError)
		return StateBackoff
	}
	if status.ParentError != nil && !errors.Is(status.ParentError, ipc.ErrProtocolTruncated) {
		corelog.Warningf("ipc loop ended: %v", status.ParentError)
	}
	if status.Result != nil && status.Result.ExitedNormally && status.Result.Code == 0 {
		m.policy.Reset()
		return StateIdle
	}
	corelog.Warningf("worker exited abnormally: %s", status.Result)
	return StateBackoff
}
