package supervisor

import (
	"fmt"

	"github.com/syndtr/gocapability/capability"
)

// CheckDropPrivilegesCapable verifies the running process holds
// CAP_SETUID/CAP_SETGID before a spawn attempt bothers forking at all,
// the way sandbox.go probes for required capabilities before handing
// off to the sandboxed process. Returns a descriptive error instead of
// letting the eventual setuid syscall fail deep inside os/exec.
func CheckDropPrivilegesCapable() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("supervisor: load capabilities: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("supervisor: load capabilities: %w", err)
	}
	if !caps.Get(capability.EFFECTIVE, capability.CAP_SETUID) {
		return fmt.Errorf("supervisor: missing CAP_SETUID, cannot drop privileges for worker")
	}
	if !caps.Get(capability.EFFECTIVE, capability.CAP_SETGID) {
		return fmt.Errorf("supervisor: missing CAP_SETGID, cannot drop privileges for worker")
	}
	return nil
}
