package procsignal

import "testing"

func TestSignalStringNamed(t *testing.T) {
	if got := SIGTERM.String(); got != "SIGTERM" {
		t.Fatalf("got %q, want SIGTERM", got)
	}
}

func TestSignalStringRealtime(t *testing.T) {
	cases := []struct {
		sig  Signal
		want string
	}{
		{Signal(rtMin), "SIGRTMIN"},
		{Signal(rtMin + 5), "SIGRTMIN+5"},
		{Signal(rtMax), "SIGRTMIN+30"},
	}
	for _, c := range cases {
		if got := c.sig.String(); got != c.want {
			t.Errorf("Signal(%d).String() = %q, want %q", c.sig, got, c.want)
		}
	}
}

func TestSignalStringUnknown(t *testing.T) {
	got := Signal(9999).String()
	if got != "signal 9999" {
		t.Fatalf("got %q", got)
	}
}

func TestExitResultString(t *testing.T) {
	r := ExitResult{ExitedNormally: true, Code: 0}
	if r.String() != "exited with code 0" {
		t.Fatalf("got %q", r.String())
	}
	r2 := ExitResult{Sig: SIGKILL}
	if r2.String() != "killed by SIGKILL" {
		t.Fatalf("got %q", r2.String())
	}
}
