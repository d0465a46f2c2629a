//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package netutil_test

import (
	"net"
	"testing"

	"github.com/Alan-Jowett/shardedudpecho/internal/netutil"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestSockaddrSliceToUDPAddr(t *testing.T) {
	sockaddr4 := []byte{2, 0, 201, 168, 127, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	expected4, _ := net.ResolveUDPAddr("udp4", "127.0.0.1:51624")
	addr, err := netutil.SockaddrSliceToUDPAddr(sockaddr4)
	assert.Nil(t, err)
	assert.Equal(t, expected4.String(), addr.String())

	family := unix.AF_INET6
	sockaddr6 := []byte{byte(family), 0, 165, 116, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0}
	expected6, _ := net.ResolveUDPAddr("udp6", "[::1]:42356")
	addr, err = netutil.SockaddrSliceToUDPAddr(sockaddr6)
	assert.Nil(t, err)
	assert.Equal(t, expected6.String(), addr.String())
}

func TestSockaddrSliceToUDPAddrError(t *testing.T) {
	invalidAddr := make([]byte, netutil.SockaddrSize+1)
	addr, err := netutil.SockaddrSliceToUDPAddr(invalidAddr)
	assert.NotNil(t, err)
	assert.Nil(t, addr)

	invalidAddr = []byte{3, 0, 201, 168, 127, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	addr, err = netutil.SockaddrSliceToUDPAddr(invalidAddr)
	assert.NotNil(t, err)
	assert.Nil(t, addr)
}

func TestIP6ZoneToString(t *testing.T) {
	assert.Equal(t, "", netutil.IP6ZoneToString(0))
	// an interface index that almost certainly doesn't exist falls back to
	// the decimal string form.
	assert.Equal(t, "987654321", netutil.IP6ZoneToString(987654321))
}

func TestStringToZoneID(t *testing.T) {
	id, err := netutil.StringToZoneID("")
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), id)

	id, err = netutil.StringToZoneID("987654321")
	assert.Nil(t, err)
	assert.Equal(t, uint32(987654321), id)

	_, err = netutil.StringToZoneID("not-an-interface-and-not-a-number")
	assert.NotNil(t, err)
}
