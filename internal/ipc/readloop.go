package ipc

import (
	"errors"
	"io"
	"syscall"
)

// OpcodeHandler is invoked once per opcode byte read from the child,
// in the order received.
type OpcodeHandler func(Opcode) error

// ReadOpcodeLoop reads bytes from r in chunks, dispatching each as an
// Opcode to handle in order. A read may return multiple opcodes in one
// buffer; each is processed before the next Read call.
//
// Reads are retried on interruption-class errors and EAGAIN/EWOULDBLOCK;
// any other error (including a clean io.EOF) ends the loop and is
// returned to the caller, which is expected to treat io.EOF as a normal
// shutdown and anything else as fatal.
func ReadOpcodeLoop(r io.Reader, handle OpcodeHandler) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				op, ok := IsKnownOpcode(buf[i])
				if !ok {
					return ErrProtocolOpcode
				}
				if herr := handle(op); herr != nil {
					return herr
				}
			}
		}
		if err != nil {
			if isRetriable(err) {
				continue
			}
			return err
		}
	}
}

func isRetriable(err error) bool {
	if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) {
		return true
	}
	return false
}
