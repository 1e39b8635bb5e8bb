package procsignal

import (
	"os"
	"syscall"
)

func signalToOS(s Signal) os.Signal {
	return syscall.Signal(int(s))
}

func osToSignal(s os.Signal) Signal {
	if sig, ok := s.(syscall.Signal); ok {
		return Signal(sig)
	}
	return 0
}
