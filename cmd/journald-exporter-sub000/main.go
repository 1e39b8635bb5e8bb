// Command journald-exporter-sub000 is the process entrypoint: it
// dispatches to either the privileged parent supervisor or the
// unprivileged worker child, per the --child-process flag. Full
// CLI/TOML configuration parsing is an excluded collaborator's job;
// this binary builds its supervisor.Config from a handful of plain
// flags (worker uid/gid, key directory, passwd/group paths, lock file).
package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/talismancer/journald-exporter/internal/corelog"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/procsignal"
	"github.com/talismancer/journald-exporter/internal/promstate"
	"github.com/talismancer/journald-exporter/internal/supervisor"
)

var (
	childProcess = flag.Bool("child-process", false, "run as the unprivileged worker instead of the supervisor")
	workerUID    = flag.Uint("worker-uid", 0, "uid the worker process runs as (parent mode only)")
	workerGID    = flag.Uint("worker-gid", 0, "gid the worker process runs as (parent mode only)")
	keyDir       = flag.String("key-directory", "/etc/journald-exporter/keys", "directory of signed-token key files")
	passwdPath   = flag.String("passwd-path", "/etc/passwd", "passwd file backing the uid name cache")
	groupPath    = flag.String("group-path", "/etc/group", "group file backing the gid name cache")
	lockPath     = flag.String("lock-file", "/run/journald-exporter.lock", "single-instance lock file path")
)

func main() {
	flag.Parse()

	corelog.Infof("journald-exporter-sub000 starting")
	corelog.Infof("pid=%d uid=%d gid=%d goos=%s goarch=%s child-process=%t",
		os.Getpid(), os.Getuid(), os.Getgid(), runtime.GOOS, runtime.GOARCH, *childProcess)

	if *childProcess {
		runChild()
		return
	}
	runParent()
}

// runChild is the unprivileged worker entrypoint: it completes the
// version handshake on stdin and then hands off to the journal-reading
// collaborator (out of scope here), which drives the IPC opcodes on
// stdout and receives response frames on stdin.
func runChild() {
	if err := ipc.ReadHandshake(os.Stdin); err != nil {
		corelog.Errorf("handshake failed: %v", err)
		os.Exit(1)
	}
	// Acknowledge the version back to the parent; its IPC loop verifies
	// these three bytes before accepting any opcode.
	if err := ipc.WriteHandshake(os.Stdout); err != nil {
		corelog.Errorf("handshake ack failed: %v", err)
		os.Exit(1)
	}
	corelog.Infof("handshake complete, ready for journal tailing")

	// A parent-initiated terminate is a clean shutdown, not a crash.
	stop := procsignal.NewAction(func(procsignal.Signal) { os.Exit(0) }, procsignal.NewSignalSet()).Install(procsignal.SIGTERM)
	defer stop()

	// Journal tailing and MessageKey classification is an excluded
	// collaborator; it would drive os.Stdout with opcodes here and
	// read response frames from os.Stdin.
	select {}
}

func runParent() {
	lock, err := supervisor.AcquireInstanceLock(*lockPath)
	if err != nil {
		corelog.Errorf("%v", err)
		os.Exit(1)
	}
	defer lock.Release()

	if err := supervisor.CheckDropPrivilegesCapable(); err != nil {
		corelog.Errorf("%v", err)
		os.Exit(1)
	}

	cfg := supervisor.Config{
		WorkerExecPath: os.Args[0],
		WorkerArgs:     []string{"--child-process"},
		Identity:       supervisor.WorkerIdentity{UID: uint32(*workerUID), GID: uint32(*workerGID)},
		KeyDirectory:   *keyDir,
		PasswdPath:     *passwdPath,
		GroupPath:      *groupPath,
	}

	state := promstate.New()

	// SIGTERM and SIGINT both feed the single terminate notify; the
	// manager forwards it to the worker and shuts down.
	requestStop := func(procsignal.Signal) { state.TerminateNotify().Signal() }
	stopTerm := procsignal.NewAction(requestStop, procsignal.NewSignalSet()).Install(procsignal.SIGTERM)
	defer stopTerm()
	stopInt := procsignal.NewAction(requestStop, procsignal.NewSignalSet()).Install(procsignal.SIGINT)
	defer stopInt()

	mgr := supervisor.NewManager(cfg, state)
	defer mgr.Close()

	runErr := mgr.Run()
	state.DoneNotify().Signal()
	supervisor.NotifyStopping()
	if runErr != nil {
		// Exit code 2 distinguishes a fatal supervision failure
		// (repeated fast restarts) from configuration/startup errors,
		// which exit 1 above.
		corelog.Errorf("supervisor terminated: %v", runErr)
		os.Exit(2)
	}
	corelog.Infof("supervisor exiting cleanly")
}
