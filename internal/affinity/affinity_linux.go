//go:build linux
// +build linux

// Package affinity pins a Worker's socket and its locked OS thread to the
// same logical processor. Both pins are best-effort hints: a failure on
// either is a warning, never fatal, since the echo server is still correct
// (just not contended-free) without them.
package affinity

import "golang.org/x/sys/unix"

// SetSocketIncomingCPU hints to the kernel that datagrams destined for fd
// should be steered to the receive queue local to cpu, so that a Worker's
// recvmmsg calls tend to wake up on the same core its thread is pinned to.
func SetSocketIncomingCPU(fd, cpu int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_INCOMING_CPU, cpu)
}

// PinCurrentThread binds the calling OS thread to cpu. The caller must have
// already called runtime.LockOSThread so the goroutine cannot migrate to a
// different OS thread afterward.
func PinCurrentThread(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(unix.Gettid(), &set)
}
