package server

import "go.uber.org/atomic"

// Stats is a snapshot of a Worker's four monotonic counters.
type Stats struct {
	PacketsReceived uint64
	PacketsSent     uint64
	BytesReceived   uint64
	BytesSent       uint64
}

// Add returns the element-wise sum of s and other, used by the Supervisor
// to aggregate per-Worker snapshots after every Worker thread has joined.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		PacketsReceived: s.PacketsReceived + other.PacketsReceived,
		PacketsSent:     s.PacketsSent + other.PacketsSent,
		BytesReceived:   s.BytesReceived + other.BytesReceived,
		BytesSent:       s.BytesSent + other.BytesSent,
	}
}

// workerCounters holds the four per-Worker counters required by the data
// model. They are written only by the owning Worker's thread during
// steady-state operation; the Supervisor only reads them, and only after
// that Worker's thread has been joined, so the read happens-after every
// write.
type workerCounters struct {
	packetsReceived atomic.Uint64
	packetsSent     atomic.Uint64
	bytesReceived   atomic.Uint64
	bytesSent       atomic.Uint64
}

func (c *workerCounters) snapshot() Stats {
	return Stats{
		PacketsReceived: c.packetsReceived.Load(),
		PacketsSent:     c.packetsSent.Load(),
		BytesReceived:   c.bytesReceived.Load(),
		BytesSent:       c.bytesSent.Load(),
	}
}
