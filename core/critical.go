package core

// CriticalSection records the interrupt state seen on entry. Exiting
// restores that state, so sections nest: an inner section entered with
// interrupts already masked leaves them masked on exit.
type CriticalSection struct {
	state irqState
}

// Enter masks interrupts if they were enabled.
func Enter() CriticalSection {
	return CriticalSection{state: disableInterrupts()}
}

// Exit restores the interrupt state captured by Enter.
func (c CriticalSection) Exit() {
	restoreInterrupts(c.state)
}

// Critical runs fn with interrupts masked.
func Critical(fn func()) {
	cs := Enter()
	defer cs.Exit()
	fn()
}
