package supervisor

import "testing"

func TestSpawnStateStrings(t *testing.T) {
	cases := map[SpawnState]string{
		StateIdle:     "idle",
		StateStarting: "starting",
		StateRunning:  "running",
		StateWaiting:  "waiting",
		StateBackoff:  "backoff",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
