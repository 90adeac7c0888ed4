package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedOperations(t *testing.T) {
	SetInterruptsEnabled(true)

	var g Guarded[uint8]
	g.Store(0xf0)
	assert.Equal(t, uint8(0xf0), g.Load())

	assert.Equal(t, uint8(0xf0), g.Swap(0x0f))
	assert.False(t, g.CompareAndSwap(0xf0, 1))
	assert.True(t, g.CompareAndSwap(0x0f, 0x10))
	assert.Equal(t, uint8(0x12), g.Add(2))
	assert.Equal(t, uint8(0x12), g.Or(0x01))
	assert.Equal(t, uint8(0x13), g.And(0xf0))
	assert.Equal(t, uint8(0x10), g.Load())

	// wraps like the hardware type
	g.Store(0xff)
	assert.Equal(t, uint8(0), g.Add(1))

	require.True(t, InterruptsEnabled(), "every operation must restore PRIMASK")
}

func TestGuardedWidths(t *testing.T) {
	var w16 Guarded[uint16]
	var w64 Guarded[uint64]

	w16.Store(0xffff)
	assert.Equal(t, uint16(1), w16.Add(2))

	w64.Store(1 << 40)
	assert.True(t, w64.CompareAndSwap(1<<40, 1<<63))
	assert.Equal(t, uint64(1<<63), w64.Load())
}

func TestGuardedBool(t *testing.T) {
	var b GuardedBool
	assert.False(t, b.Load())
	assert.True(t, b.CompareAndSwap(false, true))
	assert.False(t, b.CompareAndSwap(false, true), "second claim must fail")
	assert.True(t, b.Swap(false))
	assert.False(t, b.Load())
}

func TestGuardedKeepsMaskedState(t *testing.T) {
	SetInterruptsEnabled(false)
	defer SetInterruptsEnabled(true)

	var g Guarded[uint32]
	g.Add(1)
	require.False(t, InterruptsEnabled())
}
