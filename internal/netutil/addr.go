//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Copyright (c) 2019 Andy Pan
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package netutil provides address and socket conversion helpers for the
// UDP-only datapath: no TCP, no unix sockets.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package netutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SockaddrSize is the size of a raw kernel sockaddr, sized for IPv6 since
// that is longer than IPv4. I/O contexts reserve exactly this many bytes at
// the front of their buffer for the kernel-filled peer address.
const SockaddrSize = unix.SizeofSockaddrInet6

// SockaddrSliceToUDPAddr converts a raw kernel sockaddr (as filled in by
// recvmmsg) into a net.UDPAddr, for logging purposes only; the datapath
// itself never needs this conversion because it re-sends the raw bytes
// verbatim.
func SockaddrSliceToUDPAddr(sockaddr []byte) (net.Addr, error) {
	if len(sockaddr) != SockaddrSize {
		return nil, errors.New("invalid sockaddr")
	}
	addr := &net.UDPAddr{}
	familyData := sockaddr[:2]
	family := (*uint16)(unsafe.Pointer((*reflect.SliceHeader)(unsafe.Pointer(&familyData)).Data))
	switch *family {
	case unix.AF_INET:
		sockaddrInet4 := (*unix.RawSockaddrInet4)(unsafe.Pointer((*reflect.SliceHeader)(unsafe.Pointer(&sockaddr)).Data))
		addr.IP = sockaddrInet4.Addr[:]
		addr.Port = int(bigToLittleEndian(sockaddrInet4.Port))
	case unix.AF_INET6:
		sockaddrInet6 := (*unix.RawSockaddrInet6)(unsafe.Pointer((*reflect.SliceHeader)(unsafe.Pointer(&sockaddr)).Data))
		addr.IP = sockaddrInet6.Addr[:]
		addr.Port = int(bigToLittleEndian(sockaddrInet6.Port))
		addr.Zone = IP6ZoneToString(int(sockaddrInet6.Scope_id))
	default:
		return nil, fmt.Errorf("unknown address family %d", *family)
	}
	return addr, nil
}

// IP6ZoneToString converts an IPv6 zone id to a net string. Returns "" if
// zone is 0.
func IP6ZoneToString(zone int) string {
	if zone == 0 {
		return ""
	}
	if ifi, err := net.InterfaceByIndex(zone); err == nil {
		return ifi.Name
	}
	return strconv.Itoa(zone)
}

// StringToZoneID converts an IPv6 zone string to a zone id. Returns 0 if
// zone is "".
func StringToZoneID(zone string) (uint32, error) {
	if zone == "" {
		return 0, nil
	}
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index), nil
	}
	n, err := strconv.Atoi(zone)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func bigToLittleEndian(i uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, i)
	return binary.LittleEndian.Uint16(b)
}

// TestableNetwork checks whether the network is testable in this
// environment; only used by unit tests.
func TestableNetwork(network string) bool {
	switch network {
	case "udp4":
		return hasIPv4Addr()
	case "udp6":
		return hasIPv6Addr()
	case "udp":
		return hasIPv6Addr() || hasIPv4Addr()
	default:
		return false
	}
}

func hasIPv4Addr() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		ip, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip.IP.To4() != nil {
			return true
		}
	}
	return false
}

func hasIPv6Addr() bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		ip, ok := addr.(*net.IPNet)
		if !ok || ip.IP.To4() != nil {
			continue
		}
		return true
	}
	return false
}
