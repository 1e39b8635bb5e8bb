//go:build linux

package procsignal

import "golang.org/x/sys/unix"

// addToSigset sets the bit for sig in a glibc-layout sigset_t, which
// golang.org/x/sys/unix represents as an array of uint64 words (64 bits
// each) on Linux.
func addToSigset(set *unix.Sigset_t, sig Signal) {
	bit := uint(sig) - 1 // signal numbers are 1-based
	word := bit / 64
	off := bit % 64
	set.Val[word] |= 1 << off
}
