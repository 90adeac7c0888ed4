//go:build !tinygo

package core

import "sync/atomic"

// On the host, tests drive queues and engines from real goroutines, so the
// driver-facing atomic types are the runtime's own.
type (
	Uint32 = atomic.Uint32
	Uint64 = atomic.Uint64
	Bool   = atomic.Bool
)
