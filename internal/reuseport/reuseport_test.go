package reuseport_test

import (
	"testing"

	"github.com/Alan-Jowett/shardedudpecho/internal/reuseport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestListenUDPSharesPort(t *testing.T) {
	fd1, err := reuseport.ListenUDP(unix.AF_INET, 0)
	require.NoError(t, err)
	defer unix.Close(fd1)

	sa, err := unix.Getsockname(fd1)
	require.NoError(t, err)
	inet4, ok := sa.(*unix.SockaddrInet4)
	require.True(t, ok)
	port := inet4.Port
	require.NotZero(t, port)

	// A second socket bound to the same concrete port must succeed only
	// because SO_REUSEPORT was set on both.
	fd2, err := reuseport.ListenUDP(unix.AF_INET, port)
	require.NoError(t, err)
	defer unix.Close(fd2)
}

func TestListenUDPUnsupportedFamily(t *testing.T) {
	_, err := reuseport.ListenUDP(unix.AF_UNIX, 0)
	assert.Error(t, err)
}

func TestSetV6Only(t *testing.T) {
	// IPV6_V6ONLY must be set before bind: the kernel returns EINVAL once
	// inet_num is set by bind(2), so this exercises Socket (unbound) rather
	// than ListenUDP.
	fd, err := reuseport.Socket(unix.AF_INET6)
	require.NoError(t, err)
	defer unix.Close(fd)

	assert.NoError(t, reuseport.SetV6Only(fd, false))
	assert.NoError(t, reuseport.SetV6Only(fd, true))
}

func TestSetV6OnlyAfterBindFails(t *testing.T) {
	// Documents the kernel constraint that motivates Socket/Bind being
	// separate calls: clearing V6ONLY after bind is rejected.
	fd, err := reuseport.ListenUDP(unix.AF_INET6, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	assert.Error(t, reuseport.SetV6Only(fd, false))
}

func TestBindAfterSocket(t *testing.T) {
	fd, err := reuseport.Socket(unix.AF_INET6)
	require.NoError(t, err)
	defer unix.Close(fd)

	require.NoError(t, reuseport.SetV6Only(fd, false))
	require.NoError(t, reuseport.Bind(fd, unix.AF_INET6, 0))

	sa, err := unix.Getsockname(fd)
	require.NoError(t, err)
	inet6, ok := sa.(*unix.SockaddrInet6)
	require.True(t, ok)
	require.NotZero(t, inet6.Port)
}

func TestSetBufferSizes(t *testing.T) {
	fd, err := reuseport.ListenUDP(unix.AF_INET, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	assert.NoError(t, reuseport.SetRecvBuffer(fd, 1<<20))
	assert.NoError(t, reuseport.SetSendBuffer(fd, 1<<20))
}
