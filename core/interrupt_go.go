//go:build !tinygo

package core

import "sync/atomic"

// irqState mirrors PRIMASK on the host: 0 means interrupts enabled
type irqState uint32

var (
	// primask simulates the Cortex-M interrupt mask for host tests
	primask atomic.Uint32

	// masks counts every disableInterrupts call
	masks atomic.Uint32
)

func disableInterrupts() irqState {
	masks.Add(1)
	return irqState(primask.Swap(1))
}

func restoreInterrupts(state irqState) {
	primask.Store(uint32(state))
}

// InterruptsEnabled reports the simulated PRIMASK.
func InterruptsEnabled() bool {
	return primask.Load() == 0
}

// SetInterruptsEnabled forces the simulated PRIMASK (for testing).
func SetInterruptsEnabled(enabled bool) {
	if enabled {
		primask.Store(0)
	} else {
		primask.Store(1)
	}
}

// WaitForInterrupt is a no-op on regular Go
func WaitForInterrupt() {}
