package supervisor

import (
	"time"

	"github.com/talismancer/journald-exporter/internal/corelog"
	"github.com/talismancer/journald-exporter/internal/idcache"
	"github.com/talismancer/journald-exporter/internal/ipc"
	"github.com/talismancer/journald-exporter/internal/metrics"
	"github.com/talismancer/journald-exporter/internal/promstate"
)

// RunIPCLoop reads opcodes from the child's stdout and answers them
// over its stdin:
//   - TRACK_REQUEST increments metrics_requests; no response.
//   - REQUEST_METRICS snapshots state, renders an exposition, writes a
//     metrics frame.
//   - REQUEST_KEY enumerates the key directory and writes a key-set
//     frame.
//
// Before any opcode is processed it reads the child's three-byte
// version acknowledgement from stdout and verifies it; a mismatch is a
// fatal protocol error for this child lifetime.
//
// It blocks until the child's stdout closes or a protocol error
// occurs, at which point it clears the stdin slot and returns.
func RunIPCLoop(handle *ChildHandle, state *promstate.State, ids *idcache.Cache, keyDir string, now func() time.Time) error {
	slot := newStdinSlot(handle.Stdin)
	defer slot.clear()

	if err := ipc.ReadHandshake(handle.Stdout); err != nil {
		return err
	}

	return ipc.ReadOpcodeLoop(handle.Stdout, func(op ipc.Opcode) error {
		switch op {
		case ipc.OpTrackRequest:
			state.AddMetricsRequests(1)
			return nil
		case ipc.OpRequestMetrics:
			return handleRequestMetrics(slot, state, ids, now)
		case ipc.OpRequestKey:
			return handleRequestKey(slot, state, keyDir)
		default:
			return ipc.ErrProtocolOpcode
		}
	})
}

func handleRequestMetrics(slot *stdinSlot, state *promstate.State, ids *idcache.Cache, now func() time.Time) error {
	snap := state.Snapshot()
	env := metrics.PromEnvironment{Created: now()}
	frame := metrics.Render(env, snap, ids.Get())
	if err := slot.write(frame); err != nil {
		corelog.Errorf("write metrics frame: %v", err)
	}
	return nil
}

func handleRequestKey(slot *stdinSlot, state *promstate.State, keyDir string) error {
	keys, faults, err := ReadKeys(keyDir)
	if err != nil {
		corelog.Errorf("read key directory: %v", err)
		keys = nil
	}
	for i := 0; i < faults; i++ {
		state.AddFault()
	}
	payload := ipc.EncodeKeySet(keys)
	if err := ipc.WriteKeySetFrame(writerFunc(slot.write), payload); err != nil {
		corelog.Errorf("write key-set frame: %v", err)
	}
	return nil
}

// writerFunc adapts a plain write function to io.Writer so ipc.WriteKeySetFrame
// can target the synchronized stdin slot directly.
type writerFunc func([]byte) error

func (f writerFunc) Write(p []byte) (int, error) {
	if err := f(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
