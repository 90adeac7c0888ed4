// Package timer drives the four LPC11xx counter/timers, each with one
// callback slot run from its interrupt handler.
package timer

import (
	"lpcbsp/core"
	"lpcbsp/syscon"
)

// Reg is a register offset within a counter/timer block.
type Reg uint8

const (
	IR  Reg = 0x00
	TCR Reg = 0x04
	TC  Reg = 0x08
	PR  Reg = 0x0c
	PC  Reg = 0x10
	MCR Reg = 0x14
	MR0 Reg = 0x18
	MR1 Reg = 0x1c
	MR2 Reg = 0x20
	MR3 Reg = 0x24
)

const (
	tcrEnable = 1 << 0
	tcrReset  = 1 << 1

	mcrMR0Interrupt = 1 << 0
	mcrMR0Reset     = 1 << 1

	irMR0 = 1 << 0
)

// Registers is one counter/timer register block.
type Registers interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// Timer selects a counter/timer.
type Timer uint8

const (
	CT16B0 Timer = iota
	CT16B1
	CT32B0
	CT32B1
)

// Callback runs in interrupt context.
type Callback func()

var (
	banks     [4]Registers
	callbacks [4]Callback
)

// SetRegisters is called by target-specific code to register a block.
func SetRegisters(t Timer, r Registers) {
	banks[t] = r
}

func (t Timer) regs() Registers {
	if banks[t] == nil {
		panic("timer registers not configured")
	}
	return banks[t]
}

func (t Timer) Block() syscon.Block {
	return [...]syscon.Block{syscon.CT16B0, syscon.CT16B1, syscon.CT32B0, syscon.CT32B1}[t]
}

func (t Timer) IRQ() core.IRQ {
	return [...]core.IRQ{core.IRQCT16B0, core.IRQCT16B1, core.IRQCT32B0, core.IRQCT32B1}[t]
}

// Configure installs the callback and clocks the block.
func (t Timer) Configure(cb Callback) {
	callbacks[t] = cb
	t.Block().Clock(true)
}

// Cancel stops the block's clock and drops the callback.
func (t Timer) Cancel() {
	t.Block().Clock(false)
	callbacks[t] = nil
}

// Start runs the counter at PCLK/(prescale+1) and interrupts every period
// counts.
func (t Timer) Start(prescale, period uint32) {
	r := t.regs()
	r.Store(TCR, tcrReset)
	r.Store(PR, prescale)
	r.Store(MR0, period)
	r.Store(MCR, mcrMR0Interrupt|mcrMR0Reset)
	r.Store(IR, irMR0)
	r.Store(TCR, tcrEnable)
	t.IRQ().Enable()
}

// StartFreeRunning runs the counter at PCLK/(prescale+1) with no interrupts.
func (t Timer) StartFreeRunning(prescale uint32) {
	r := t.regs()
	r.Store(TCR, tcrReset)
	r.Store(PR, prescale)
	r.Store(MCR, 0)
	r.Store(TCR, tcrEnable)
}

func (t Timer) Stop() {
	t.IRQ().Disable()
	t.regs().Store(TCR, 0)
}

// Ticks reads the counter. The 32-bit timers serve as a core.TickSource.
func (t Timer) Ticks() uint32 {
	return t.regs().Load(TC)
}

// HandleInterrupt is the body of the timer's interrupt handler. A timer
// that fires with no callback is cancelled.
func (t Timer) HandleInterrupt() {
	t.regs().Store(IR, t.regs().Load(IR))
	if cb := callbacks[t]; cb != nil {
		cb()
		return
	}
	core.RecordEvent(core.EvtTimerIdle, uint32(t), 0)
	t.IRQ().Disable()
	t.Cancel()
}
