package server

import (
	"runtime"
	"time"

	"github.com/Alan-Jowett/shardedudpecho/internal/affinity"
	"github.com/Alan-Jowett/shardedudpecho/log"
	"go.uber.org/atomic"
)

// Worker owns exactly one endpoint, one set of Recv/Send I/O contexts, and
// one pinned OS thread. Every field below is touched only by that thread
// once the main loop starts; there is no lock and no shared buffer.
type Worker struct {
	processor       int
	ep              *endpoint
	outstandingOps  int
	payloadSize     int
	shutdownTimeout time.Duration

	recvCtx  []*ioContext
	sendCtx  []*ioContext
	sendFree *sendFreeList

	counters workerCounters

	shutdown *atomic.Bool
	done     chan struct{}
}

// newWorker allocates exactly OUTSTANDING_OPS Recv Contexts and
// OUTSTANDING_OPS Send Contexts; the Send Contexts all start on the
// free-list, the Recv Contexts are considered posted from the moment the
// main loop starts.
func newWorker(ep *endpoint, opt options, shutdown *atomic.Bool) *Worker {
	w := &Worker{
		processor:       ep.processor,
		ep:              ep,
		outstandingOps:  opt.outstandingOps,
		payloadSize:     opt.payloadSize,
		shutdownTimeout: opt.shutdownTimeout,
		shutdown:        shutdown,
		done:            make(chan struct{}),
	}
	w.recvCtx = make([]*ioContext, opt.outstandingOps)
	for i := range w.recvCtx {
		w.recvCtx[i] = newIOContext(opt.payloadSize)
	}
	w.sendCtx = make([]*ioContext, opt.outstandingOps)
	for i := range w.sendCtx {
		w.sendCtx[i] = newIOContext(opt.payloadSize)
	}
	w.sendFree = newSendFreeList(w.sendCtx)
	return w
}

// start launches the Worker's thread, hard-pinned to w.processor, and runs
// the platform main loop until the shutdown flag is observed.
func (w *Worker) start() {
	go func() {
		defer close(w.done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := affinity.PinCurrentThread(w.processor); err != nil {
			log.Warnf("processor %d: thread pin failed: %v", w.processor, err)
		}
		log.Infof("processor %d: worker started, endpoint fd=%d dual-stack=%v",
			w.processor, w.ep.fd, w.ep.dualStack)

		w.loop()

		s := w.counters.snapshot()
		log.Infof("processor %d: worker stopped, packets_received=%d packets_sent=%d "+
			"bytes_received=%d bytes_sent=%d", w.processor,
			s.PacketsReceived, s.PacketsSent, s.BytesReceived, s.BytesSent)
	}()
}

// join blocks until the Worker's thread has exited.
func (w *Worker) join() {
	<-w.done
}

// stats snapshots the four monotonic counters. Only safe to call after
// join, so the read happens-after every write the Worker thread made.
func (w *Worker) stats() Stats {
	return w.counters.snapshot()
}
