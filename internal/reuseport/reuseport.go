// Package reuseport creates UDP sockets that share a single port across
// multiple independent file descriptors via SO_REUSEPORT, so that each
// Worker can own its own socket while the kernel load-balances incoming
// datagrams across them.
package reuseport

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Socket creates a non-blocking UDP socket of the requested family with
// SO_REUSEADDR and SO_REUSEPORT set, so that many such sockets can share the
// same port once bound. family must be unix.AF_INET or unix.AF_INET6. The fd
// is left unbound: callers that need IPV6_V6ONLY cleared must do so between
// Socket and Bind, since the kernel rejects that setsockopt once a socket
// has been bound. The caller owns the returned file descriptor and is
// responsible for closing it.
func Socket(family int) (fd int, err error) {
	fd, err = unix.Socket(family, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return -1, errors.Wrap(err, "socket")
	}
	defer func() {
		if err != nil {
			unix.Close(fd)
		}
	}()

	if err = unix.SetNonblock(fd, true); err != nil {
		return -1, errors.Wrap(err, "setnonblock")
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return -1, errors.Wrap(err, "setsockopt SO_REUSEADDR")
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return -1, errors.Wrap(err, "setsockopt SO_REUSEPORT")
	}
	return fd, nil
}

// Bind binds fd, already created by Socket with the same family, to the
// wildcard address of family on port.
func Bind(fd, family, port int) error {
	var err error
	switch family {
	case unix.AF_INET:
		err = unix.Bind(fd, &unix.SockaddrInet4{Port: port})
	case unix.AF_INET6:
		err = unix.Bind(fd, &unix.SockaddrInet6{Port: port})
	default:
		return errors.Errorf("unsupported address family %d", family)
	}
	if err != nil {
		return errors.Wrap(err, "bind")
	}
	return nil
}

// ListenUDP creates and binds a non-blocking UDP socket to port on the
// wildcard address of the requested family, with SO_REUSEADDR and
// SO_REUSEPORT set. It is Socket followed by Bind for callers that don't
// need to set any socket option between the two. The caller owns the
// returned file descriptor and is responsible for closing it.
func ListenUDP(family int, port int) (fd int, err error) {
	fd, err = Socket(family)
	if err != nil {
		return -1, err
	}
	if err = Bind(fd, family, port); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// SetV6Only sets or clears the IPV6_V6ONLY option on an AF_INET6 socket.
// Clearing it (only) lets the socket also accept IPv4 traffic mapped into
// ::ffff:0:0/96, giving a single Worker dual-stack coverage.
func SetV6Only(fd int, only bool) error {
	v := 0
	if only {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, v)
}

// SetRecvBuffer sets SO_RCVBUF on fd to size bytes.
func SetRecvBuffer(fd, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, size)
}

// SetSendBuffer sets SO_SNDBUF on fd to size bytes.
func SetSendBuffer(fd, size int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, size)
}
