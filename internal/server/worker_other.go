//go:build (freebsd || dragonfly || darwin) && !linux
// +build freebsd dragonfly darwin
// +build !linux

package server

import (
	"github.com/Alan-Jowett/shardedudpecho/log"
	"github.com/Alan-Jowett/shardedudpecho/metrics"
	"golang.org/x/sys/unix"
)

// loop is the portable fallback for platforms without recvmmsg/sendmmsg: it
// satisfies the same state machine one datagram per syscall. SO_RCVTIMEO
// gives it the same shutdown-check cadence the batched Linux loop gets from
// the recvmmsg timeout argument.
func (w *Worker) loop() {
	// SO_RCVTIMEO only takes effect on a blocking socket.
	if err := unix.SetNonblock(w.ep.fd, false); err != nil {
		log.Warnf("processor %d: clear O_NONBLOCK failed: %v", w.processor, err)
	}
	if err := unix.SetsockoptTimeval(w.ep.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &unix.Timeval{
		Sec:  int64(w.shutdownTimeout / 1e9),
		Usec: int64((w.shutdownTimeout % 1e9) / 1e3),
	}); err != nil {
		log.Warnf("processor %d: set SO_RCVTIMEO failed: %v", w.processor, err)
	}

	next := 0
	for !w.shutdown.Load() {
		ctx := w.recvCtx[next]
		n, from, err := unix.Recvfrom(w.ep.fd, ctx.payload(), 0)
		if err != nil {
			// Timeout (EAGAIN) loops back to the shutdown check exactly as
			// the batched path does. Any other error means this Recv
			// Context failed to re-post; it stays at the head of the
			// rotation and is retried next iteration.
			if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				metrics.Add(metrics.RecvRepostFail, 1)
				log.Warnf("processor %d: recvfrom repost failed: %v", w.processor, err)
			}
			continue
		}
		ctx.n = n
		ctx.peer = from
		w.counters.packetsReceived.Inc()
		w.counters.bytesReceived.Add(uint64(n))
		next = (next + 1) % len(w.recvCtx)

		if n == 0 {
			continue
		}
		sendCtx := w.sendFree.pop()
		if sendCtx == nil {
			metrics.Add(metrics.EchoDropSendPoolExhausted, 1)
			log.Warnf("processor %d: send pool exhausted, dropping echo", w.processor)
			continue
		}
		copy(sendCtx.payload(), ctx.data())
		sendCtx.n = n
		sendCtx.peer = from

		if err := unix.Sendto(w.ep.fd, sendCtx.data(), 0, sendCtx.peer); err != nil {
			log.Warnf("processor %d: sendto failed: %v", w.processor, err)
		} else {
			w.counters.packetsSent.Inc()
			w.counters.bytesSent.Add(uint64(sendCtx.n))
		}
		w.sendFree.push(sendCtx)
	}
}
