package server

import (
	"github.com/Alan-Jowett/shardedudpecho/internal/affinity"
	"github.com/Alan-Jowett/shardedudpecho/internal/reuseport"
	"github.com/Alan-Jowett/shardedudpecho/log"
	"github.com/Alan-Jowett/shardedudpecho/metrics"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// endpoint is a bound UDP socket together with the address family that
// ended up winning (dual-stack IPv6 or IPv4 fallback) and the processor
// index it is meant to be steered to.
type endpoint struct {
	fd        int
	processor int
	dualStack bool
}

// newEndpoint builds the endpoint for one Worker index. It first creates and
// binds the socket (dual-stack IPv6 preferred, IPv4 on failure), and only
// then attaches the CPU affinity hint and sizes the kernel buffers, on the
// already bound socket. Affinity-hint and buffer-size failures are warnings;
// a create or bind failure is fatal for this index and reported as an error.
func newEndpoint(processor, port, recvBufBytes int) (*endpoint, error) {
	fd, dualStack, err := listenDualStack(port)
	if err != nil {
		return nil, errors.Wrapf(err, "processor %d: create endpoint", processor)
	}

	if err := affinity.SetSocketIncomingCPU(fd, processor); err != nil {
		metrics.Add(metrics.AffinityHintFail, 1)
		log.Warnf("processor %d: affinity hint failed: %v", processor, err)
	} else {
		metrics.Add(metrics.AffinityHintOK, 1)
	}

	if err := reuseport.SetRecvBuffer(fd, recvBufBytes); err != nil {
		metrics.Add(metrics.BufferSizeSetFail, 1)
		log.Warnf("processor %d: set SO_RCVBUF failed: %v", processor, err)
	}
	if err := reuseport.SetSendBuffer(fd, recvBufBytes); err != nil {
		metrics.Add(metrics.BufferSizeSetFail, 1)
		log.Warnf("processor %d: set SO_SNDBUF failed: %v", processor, err)
	}

	return &endpoint{fd: fd, processor: processor, dualStack: dualStack}, nil
}

// listenDualStack tries an IPv6 wildcard socket with IPV6_V6ONLY cleared
// before bind, since the kernel rejects that setsockopt once the socket is
// bound; a setsockopt failure there demotes the endpoint to single-stack
// IPv6 rather than silently assuming dual-stack reach. Socket-creation or
// bind failure on IPv6 falls all the way back to IPv4.
func listenDualStack(port int) (fd int, dualStack bool, err error) {
	fd, err = reuseport.Socket(unix.AF_INET6)
	if err != nil {
		metrics.Add(metrics.DualStackFallback, 1)
		fd, err = reuseport.ListenUDP(unix.AF_INET, port)
		if err != nil {
			return -1, false, errors.Wrap(err, "both IPv6 and IPv4 socket creation failed")
		}
		return fd, false, nil
	}

	dualStack = true
	if err := reuseport.SetV6Only(fd, false); err != nil {
		log.Warnf("clearing IPV6_V6ONLY failed, endpoint stays single-stack IPv6: %v", err)
		dualStack = false
	}

	if err := reuseport.Bind(fd, unix.AF_INET6, port); err != nil {
		unix.Close(fd)
		metrics.Add(metrics.DualStackFallback, 1)
		fd, err = reuseport.ListenUDP(unix.AF_INET, port)
		if err != nil {
			return -1, false, errors.Wrap(err, "both IPv6 bind and IPv4 socket creation failed")
		}
		return fd, false, nil
	}
	return fd, dualStack, nil
}

func (e *endpoint) close() error {
	return unix.Close(e.fd)
}
