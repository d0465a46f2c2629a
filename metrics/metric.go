// Package metrics provides process-wide operational counters for the echo
// server: construction-time outcomes (affinity, buffer sizing, bind) and
// steady-state drop/batch visibility beyond the four per-Worker counters
// the datapath itself tracks.
package metrics

import (
	"time"

	"github.com/Alan-Jowett/shardedudpecho/log"
	"go.uber.org/atomic"
)

// All metrics definitions.
const (
	// AffinityHintOK counts successful SO_INCOMING_CPU socket hints.
	AffinityHintOK = iota
	// AffinityHintFail counts affinity hints that failed (warning, not fatal).
	AffinityHintFail
	// BufferSizeSetFail counts failed SO_RCVBUF/SO_SNDBUF setsockopt calls.
	BufferSizeSetFail
	// BindFail counts Worker indices that failed to bind their endpoint.
	BindFail
	// DualStackFallback counts endpoints that fell back from IPv6 to IPv4.
	DualStackFallback
	// EchoDropSendPoolExhausted counts echoes dropped because the Send
	// free-list was empty.
	EchoDropSendPoolExhausted
	// RecvRepostFail counts recv calls that failed for a reason other than
	// an empty queue; the Worker retries the same Recv Context(s) on its
	// next iteration.
	RecvRepostFail
	// RecvMMsgCalls counts recvmmsg(2) syscalls across all Workers.
	RecvMMsgCalls
	// RecvMMsgPackets counts datagrams returned across all recvmmsg calls.
	RecvMMsgPackets
	// SendMMsgCalls counts sendmmsg(2) syscalls across all Workers.
	SendMMsgCalls
	// SendMMsgPackets counts datagrams flushed across all sendmmsg calls.
	SendMMsgPackets

	// Max keeps this last; it sizes the counter array.
	Max
)

var metrics [Max]atomic.Uint64

// Add adds delta to the named counter. A name outside [0, Max) is ignored.
func Add(name int, delta uint64) {
	if name < 0 || name >= Max {
		return
	}
	metrics[name].Add(delta)
}

// Get returns the current value of the named counter.
func Get(name int) uint64 {
	if name < 0 || name >= Max {
		return 0
	}
	return metrics[name].Load()
}

// GetAll returns a snapshot of every counter.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metrics {
		m[i] = metrics[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod blocks for d, then logs at debug level the delta of
// every counter observed over that window.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	cur := GetAll()
	var m [Max]uint64
	for i := range metrics {
		m[i] = cur[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics logs at debug level the current value of every counter.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	log.Debug("######### echo server metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	log.Debugf("%-50s: %d", "# affinity hints applied", m[AffinityHintOK])
	log.Debugf("%-50s: %d", "# affinity hints failed", m[AffinityHintFail])
	log.Debugf("%-50s: %d", "# buffer size setsockopt failures", m[BufferSizeSetFail])
	log.Debugf("%-50s: %d", "# endpoint bind failures", m[BindFail])
	log.Debugf("%-50s: %d", "# dual-stack to IPv4 fallbacks", m[DualStackFallback])
	log.Debugf("%-50s: %d", "# echoes dropped (send pool exhausted)", m[EchoDropSendPoolExhausted])
	log.Debugf("%-50s: %d", "# recv re-post failures", m[RecvRepostFail])
	log.Debugf("%-50s: %d", "# recvmmsg calls", m[RecvMMsgCalls])
	recvSucc := m[RecvMMsgCalls]
	if recvSucc > 0 {
		log.Debugf("%-50s: %.2f", "# recvmmsg batch efficiency", float64(m[RecvMMsgPackets])/float64(recvSucc))
	}
	log.Debugf("%-50s: %d", "# sendmmsg calls", m[SendMMsgCalls])
	sendSucc := m[SendMMsgCalls]
	if sendSucc > 0 {
		log.Debugf("%-50s: %.2f", "# sendmmsg batch efficiency", float64(m[SendMMsgPackets])/float64(sendSucc))
	}
}
