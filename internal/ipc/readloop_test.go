package ipc

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadOpcodeLoopDispatchOrder(t *testing.T) {
	buf := bytes.NewBuffer([]byte{
		byte(OpRequestMetrics),
		byte(OpRequestKey),
		byte(OpTrackRequest),
	})
	var got []Opcode
	err := ReadOpcodeLoop(buf, func(op Opcode) error {
		got = append(got, op)
		return nil
	})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	want := []Opcode{OpRequestMetrics, OpRequestKey, OpTrackRequest}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReadOpcodeLoopRejectsUnknownOpcode(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xFF})
	err := ReadOpcodeLoop(buf, func(Opcode) error { return nil })
	if !errors.Is(err, ErrProtocolOpcode) {
		t.Fatalf("expected ErrProtocolOpcode, got %v", err)
	}
}

func TestReadOpcodeLoopPropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	buf := bytes.NewBuffer([]byte{byte(OpRequestMetrics)})
	err := ReadOpcodeLoop(buf, func(Opcode) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
