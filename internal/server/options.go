package server

import "time"

const (
	// defaultOutstandingOps is OUTSTANDING_OPS: the depth of both the Recv
	// and Send context pools per Worker.
	defaultOutstandingOps = 32
	// defaultShutdownTimeout is IOCP_SHUTDOWN_TIMEOUT_MS: the upper bound
	// on per-Worker shutdown latency, and the batched-dequeue timeout that
	// gives the main loop its shutdown-check cadence.
	defaultShutdownTimeout = 200 * time.Millisecond
	// defaultPayloadSize is the fixed per-context buffer size, comfortably
	// above a typical Ethernet MTU so fragmented-but-reassembled jumbo
	// datagrams still fit without a second allocation.
	defaultPayloadSize = 65536
	// defaultRecvBufBytes is the default recvBufBytes option value.
	defaultRecvBufBytes = 4194304
)

// Option configures a Supervisor or Worker.
type Option struct {
	f func(*options)
}

type options struct {
	outstandingOps  int
	shutdownTimeout time.Duration
	payloadSize     int
	recvBufBytes    int
}

func (o *options) setDefault() {
	o.outstandingOps = defaultOutstandingOps
	o.shutdownTimeout = defaultShutdownTimeout
	o.payloadSize = defaultPayloadSize
	o.recvBufBytes = defaultRecvBufBytes
}

// WithOutstandingOps overrides OUTSTANDING_OPS, the depth of the Recv and
// Send context pools per Worker.
func WithOutstandingOps(n int) Option {
	return Option{func(o *options) {
		o.outstandingOps = n
	}}
}

// WithShutdownTimeout overrides IOCP_SHUTDOWN_TIMEOUT_MS, the batched
// dequeue timeout and shutdown-check cadence.
func WithShutdownTimeout(d time.Duration) Option {
	return Option{func(o *options) {
		o.shutdownTimeout = d
	}}
}

// WithPayloadSize overrides the fixed per-context payload buffer size.
func WithPayloadSize(n int) Option {
	return Option{func(o *options) {
		o.payloadSize = n
	}}
}

// WithRecvBufBytes records a kernel SO_RCVBUF/SO_SNDBUF size in the options.
// Supervisor.Start does not read it: it sizes every endpoint from its own
// recvBufBytes argument.
func WithRecvBufBytes(n int) Option {
	return Option{func(o *options) {
		o.recvBufBytes = n
	}}
}
