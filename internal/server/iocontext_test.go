//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOContextLayout(t *testing.T) {
	ctx := newIOContext(128)
	assert.Equal(t, 28, len(ctx.sockaddr()))
	assert.Equal(t, 128, len(ctx.payload()))

	copy(ctx.payload(), []byte("hello"))
	ctx.n = 5
	assert.Equal(t, "hello", string(ctx.data()))
}

func TestSendFreeListLIFO(t *testing.T) {
	a, b, c := newIOContext(8), newIOContext(8), newIOContext(8)
	f := newSendFreeList([]*ioContext{a, b, c})
	assert.Equal(t, 3, f.len())

	assert.Same(t, c, f.pop())
	assert.Same(t, b, f.pop())
	f.push(b)
	assert.Same(t, b, f.pop())
	assert.Same(t, a, f.pop())
	assert.Nil(t, f.pop())
	assert.Equal(t, 0, f.len())
}
