//go:build linux
// +build linux

package server

import (
	"github.com/Alan-Jowett/shardedudpecho/internal/netutil"
	"github.com/Alan-Jowett/shardedudpecho/log"
	"github.com/Alan-Jowett/shardedudpecho/metrics"
	"golang.org/x/sys/unix"
)

// loop is the Linux realization of the completion-batching main loop: a
// single recvmmsg(2) call dequeues up to OUTSTANDING_OPS Recv completions
// in one trap, and whatever echoes that batch produces are flushed with one
// sendmmsg(2) call before the loop dequeues again. When nothing is queued on
// the non-blocking socket, the loop waits in poll(2) for at most the
// shutdown timeout before it re-checks the shutdown flag. Together the two calls report at most
// 2 x OUTSTANDING_OPS completions, the same bound a batched completion
// queue would enforce.
func (w *Worker) loop() {
	recvMsgs := make([]mmsghdr, w.outstandingOps)
	recvIov := make([]unix.Iovec, w.outstandingOps)
	sendMsgs := make([]mmsghdr, w.outstandingOps)
	sendIov := make([]unix.Iovec, w.outstandingOps)
	pending := make([]*ioContext, 0, w.outstandingOps)

	timeout := unix.NsecToTimespec(w.shutdownTimeout.Nanoseconds())
	pollFds := []unix.PollFd{{Fd: int32(w.ep.fd), Events: unix.POLLIN}}
	pollTimeoutMs := int(w.shutdownTimeout.Milliseconds())

	for !w.shutdown.Load() {
		for i, ctx := range w.recvCtx {
			buildMMsg(&recvMsgs[i], &recvIov[i], ctx, w.payloadSize)
		}

		n, err := syscallMMsg(w.ep.fd, unix.SYS_RECVMMSG, recvMsgs, 0, &timeout)
		metrics.Add(metrics.RecvMMsgCalls, 1)
		if err != nil {
			// EAGAIN/EWOULDBLOCK means nothing is queued: wait up to the
			// shutdown timeout for the socket to become readable, then loop
			// back to the shutdown check. Any other error means the batch of
			// Recv buffers failed to re-post; the same buffers are retried
			// next iteration, but the failure is tracked since repeated ones
			// mean the endpoint stopped dequeuing.
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				_, _ = unix.Poll(pollFds, pollTimeoutMs)
				continue
			}
			metrics.Add(metrics.RecvRepostFail, 1)
			log.Warnf("processor %d: recvmmsg repost failed: %v", w.processor, err)
			continue
		}
		metrics.Add(metrics.RecvMMsgPackets, uint64(n))

		pending = pending[:0]
		for i := 0; i < n; i++ {
			ctx := w.recvCtx[i]
			length := int(recvMsgs[i].len)
			ctx.n = length
			w.counters.packetsReceived.Inc()
			w.counters.bytesReceived.Add(uint64(length))

			if length == 0 {
				continue
			}
			sendCtx := w.sendFree.pop()
			if sendCtx == nil {
				metrics.Add(metrics.EchoDropSendPoolExhausted, 1)
				peer, peerErr := netutil.SockaddrSliceToUDPAddr(ctx.sockaddr())
				if peerErr != nil {
					log.Warnf("processor %d: send pool exhausted, dropping echo to unparseable peer: %v", w.processor, peerErr)
				} else {
					log.Warnf("processor %d: send pool exhausted, dropping echo to %s", w.processor, peer)
				}
				continue
			}
			copy(sendCtx.sockaddr(), ctx.sockaddr())
			copy(sendCtx.payload(), ctx.data())
			sendCtx.n = length
			pending = append(pending, sendCtx)
		}

		w.flushSends(pending, sendMsgs, sendIov)
	}
}

// flushSends issues one sendmmsg(2) call for every Send Context accumulated
// while walking a single Recv batch, then returns each of them to the
// free-list: success increments packets_sent/bytes_sent, failure is logged
// and the datagram is dropped, but the Context still comes back.
func (w *Worker) flushSends(pending []*ioContext, msgs []mmsghdr, iov []unix.Iovec) {
	if len(pending) == 0 {
		return
	}
	msgs = msgs[:len(pending)]
	iov = iov[:len(pending)]
	for i, ctx := range pending {
		buildMMsg(&msgs[i], &iov[i], ctx, ctx.n)
	}

	sent, err := syscallMMsg(w.ep.fd, unix.SYS_SENDMMSG, msgs, 0, nil)
	metrics.Add(metrics.SendMMsgCalls, 1)
	if err != nil {
		log.Warnf("processor %d: sendmmsg failed: %v", w.processor, err)
		sent = 0
	}
	metrics.Add(metrics.SendMMsgPackets, uint64(sent))

	for i, ctx := range pending {
		if i < sent {
			w.counters.packetsSent.Inc()
			w.counters.bytesSent.Add(uint64(ctx.n))
		}
		w.sendFree.push(ctx)
	}
}
