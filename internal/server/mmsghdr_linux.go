//go:build linux
// +build linux

package server

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmsghdr is the kernel's struct mmsghdr, the per-message entry of a
// recvmmsg/sendmmsg batch. Deliberately not pooled: each Worker keeps its
// own fixed array for the life of the process, so the datapath never visits
// a shared allocator. Go rounds the struct size up to its alignment, which
// gives the kernel's 64-byte entry on 64-bit and 32-byte entry on 32-bit.
type mmsghdr struct {
	hdr unix.Msghdr
	len uint32
}

// buildMMsg wires one mmsghdr to point at ctx's sockaddr slot and payload
// buffer, exactly the split ioContext.sockaddr()/payload() expose.
func buildMMsg(m *mmsghdr, iov *unix.Iovec, ctx *ioContext, payloadLen int) {
	buf := ctx.payload()[:payloadLen]
	name := ctx.sockaddr()
	iov.Base = &buf[0]
	iov.Len = convertUint(len(buf))
	m.hdr.Iov = iov
	m.hdr.Iovlen = 1
	m.hdr.Name = (*byte)(unsafe.Pointer(&name[0]))
	m.hdr.Namelen = uint32(len(name))
}

// syscallMMsg issues a recvmmsg/sendmmsg batch. timeout is only meaningful
// for SYS_RECVMMSG, where it bounds how long the kernel will wait to fill
// the batch; pass nil for SYS_SENDMMSG, which takes no timeout argument.
func syscallMMsg(fd, trap int, msgs []mmsghdr, flags int, timeout *unix.Timespec) (int, error) {
	var timeoutPtr uintptr
	if timeout != nil {
		timeoutPtr = uintptr(unsafe.Pointer(timeout))
	}
	r, _, e := unix.Syscall6(
		uintptr(trap),
		uintptr(fd),
		uintptr(unsafe.Pointer(&msgs[0])),
		uintptr(len(msgs)),
		uintptr(flags),
		timeoutPtr,
		0)
	if e != 0 {
		return int(r), unix.Errno(e)
	}
	return int(r), nil
}
