package server

import (
	"sync"

	"github.com/Alan-Jowett/shardedudpecho/log"
	"github.com/Alan-Jowett/shardedudpecho/metrics"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// Supervisor constructs, starts, and tears down Workers, and owns the
// process-wide shutdown flag. It touches no datapath state itself: once
// start returns, every Worker is independent until stop joins them.
type Supervisor struct {
	opt      options
	shutdown atomic.Bool
	workers  []*Worker
}

// New creates a Supervisor with opts layered over the package defaults.
func New(opts ...Option) *Supervisor {
	var o options
	o.setDefault()
	for _, opt := range opts {
		opt.f(&o)
	}
	return &Supervisor{opt: o}
}

// Start builds up to workerCount Workers listening on port, each sized to
// recvBufBytes of kernel socket buffer. If zero Workers are successfully
// constructed, it returns a fatal error and starts nothing.
func (s *Supervisor) Start(port, workerCount, recvBufBytes int) error {
	log.Infof("starting: port=%d requested_workers=%d recvbuf=%d", port, workerCount, recvBufBytes)

	type result struct {
		ep  *endpoint
		err error
	}
	results := make([]result, workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		i := i
		submitConstruction(func() {
			defer wg.Done()
			ep, err := newEndpoint(i, port, recvBufBytes)
			results[i] = result{ep: ep, err: err}
		})
	}
	wg.Wait()

	for i, r := range results {
		if r.err != nil {
			metrics.Add(metrics.BindFail, 1)
			log.Warnf("processor %d: endpoint construction failed: %v", i, r.err)
			continue
		}
		w := newWorker(r.ep, s.opt, &s.shutdown)
		s.workers = append(s.workers, w)
	}

	if len(s.workers) == 0 {
		return errors.New("no worker could be constructed")
	}

	for _, w := range s.workers {
		w.start()
	}
	log.Infof("started %d of %d requested workers", len(s.workers), workerCount)
	return nil
}

// Stop implements the fixed teardown order: signal, join every Worker
// thread (each wakes within one shutdownTimeout interval via its batched
// dequeue timeout and exits its loop on seeing the flag), close every
// endpoint, then aggregate and return the summed statistics. Reversing any
// two of these steps risks either use-after-free of the socket or a
// permanently wedged thread.
func (s *Supervisor) Stop() Stats {
	s.shutdown.Store(true)

	for _, w := range s.workers {
		w.join()
	}
	for _, w := range s.workers {
		if err := w.ep.close(); err != nil {
			log.Warnf("processor %d: close endpoint failed: %v", w.processor, err)
		}
	}

	var total Stats
	for _, w := range s.workers {
		total = total.Add(w.stats())
	}
	log.Infof("stopped: packets_received=%d packets_sent=%d bytes_received=%d bytes_sent=%d",
		total.PacketsReceived, total.PacketsSent, total.BytesReceived, total.BytesSent)
	return total
}

// WorkerCount returns how many Workers were actually started.
func (s *Supervisor) WorkerCount() int {
	return len(s.workers)
}
