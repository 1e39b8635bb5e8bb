package threadhandle

import (
	"errors"
	"testing"
)

func TestJoinReturnsError(t *testing.T) {
	wantErr := errors.New("boom")
	h := Go(func() error { return wantErr })
	if err := h.Join(); err != wantErr {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestJoinReturnsNilOnSuccess(t *testing.T) {
	h := Go(func() error { return nil })
	if err := h.Join(); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestJoinRepanicsOnPanic(t *testing.T) {
	h := Go(func() error { panic("kaboom") })
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Join to re-panic")
		}
	}()
	h.Join()
	t.Fatal("unreachable")
}

func TestDoneChannelClosesOnCompletion(t *testing.T) {
	h := Go(func() error { return nil })
	<-h.Done()
	if err := h.Join(); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}
