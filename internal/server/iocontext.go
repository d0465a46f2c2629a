// Package server implements the per-core Worker pipeline: one endpoint, one
// completion queue realized as batched recvmmsg/sendmmsg syscalls, and a
// fixed pool of I/O Contexts recycling between receive and send.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package server

import (
	"github.com/Alan-Jowett/shardedudpecho/internal/netutil"
	"golang.org/x/sys/unix"
)

// ioContext is a single I/O Context: a contiguous buffer whose first
// netutil.SockaddrSize bytes hold the raw kernel sockaddr and whose
// remainder holds the payload. n is the number of valid payload bytes
// currently held (set on Recv completion, read back on the matching Send).
// peer is populated only by the portable (non-recvmmsg) loop, which
// receives its sender address as a decoded unix.Sockaddr rather than raw
// bytes; the Linux loop leaves it nil and uses sockaddr() instead.
type ioContext struct {
	buf  []byte
	n    int
	peer unix.Sockaddr
}

func newIOContext(payloadSize int) *ioContext {
	return &ioContext{buf: make([]byte, netutil.SockaddrSize+payloadSize)}
}

// sockaddr returns the raw kernel sockaddr slot.
func (c *ioContext) sockaddr() []byte {
	return c.buf[:netutil.SockaddrSize]
}

// payload returns the full payload capacity (MTU budget), independent of n.
func (c *ioContext) payload() []byte {
	return c.buf[netutil.SockaddrSize:]
}

// data returns the valid payload bytes: payload()[:n].
func (c *ioContext) data() []byte {
	return c.buf[netutil.SockaddrSize : netutil.SockaddrSize+c.n]
}

// sendFreeList is a Worker-local LIFO stack of available Send Contexts.
// Deliberately not synchronized: only the owning Worker thread ever touches
// it, so a mutex would be pure overhead on the hottest path in the system.
type sendFreeList struct {
	ctx []*ioContext
}

func newSendFreeList(ctx []*ioContext) *sendFreeList {
	f := &sendFreeList{ctx: make([]*ioContext, len(ctx))}
	copy(f.ctx, ctx)
	return f
}

func (f *sendFreeList) pop() *ioContext {
	n := len(f.ctx)
	if n == 0 {
		return nil
	}
	c := f.ctx[n-1]
	f.ctx = f.ctx[:n-1]
	return c
}

func (f *sendFreeList) push(c *ioContext) {
	f.ctx = append(f.ctx, c)
}

func (f *sendFreeList) len() int {
	return len(f.ctx)
}
