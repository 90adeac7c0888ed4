//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// disableInterrupts masks interrupts and returns the previous PRIMASK
func disableInterrupts() irqState {
	return interrupt.Disable()
}

// restoreInterrupts puts PRIMASK back to the recorded state
func restoreInterrupts(state irqState) {
	interrupt.Restore(state)
}

// InterruptsEnabled reports whether PRIMASK currently allows interrupts.
func InterruptsEnabled() bool {
	state := interrupt.Disable()
	interrupt.Restore(state)
	return state == 0
}

// WaitForInterrupt sleeps the core until the next interrupt.
func WaitForInterrupt() {
	waitForInterrupt()
}
