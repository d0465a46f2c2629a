//go:build !linux
// +build !linux

package affinity

import "errors"

// errUnsupported is returned by both hints on platforms that expose neither
// SO_INCOMING_CPU nor sched_setaffinity; Workers log it as a warning and
// keep running unpinned.
var errUnsupported = errors.New("affinity: not supported on this platform")

// SetSocketIncomingCPU is a no-op outside Linux.
func SetSocketIncomingCPU(fd, cpu int) error {
	return errUnsupported
}

// PinCurrentThread is a no-op outside Linux.
func PinCurrentThread(cpu int) error {
	return errUnsupported
}
