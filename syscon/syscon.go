// Package syscon drives the LPC11xx system control block: the main clock,
// peripheral clock gates, block resets and peripheral clock dividers.
package syscon

import "lpcbsp/core"

// PCLK is the core and peripheral clock after Init48MHz.
const PCLK = 48000000

// Reg is a register offset from the SYSCON base.
type Reg uint16

const (
	PRESETCTRL    Reg = 0x004
	SYSPLLCTRL    Reg = 0x008
	SYSPLLSTAT    Reg = 0x00c
	SYSPLLCLKSEL  Reg = 0x040
	SYSPLLCLKUEN  Reg = 0x044
	MAINCLKSEL    Reg = 0x070
	MAINCLKUEN    Reg = 0x074
	SYSAHBCLKDIV  Reg = 0x078
	SYSAHBCLKCTRL Reg = 0x080
	SSP0CLKDIV    Reg = 0x094
	UARTCLKDIV    Reg = 0x098
	SSP1CLKDIV    Reg = 0x09c
	PDRUNCFG      Reg = 0x238
)

const (
	pdrunSysOsc  = 0x20
	pdrunSysPLL  = 0x80
	pllLock      = 0x01
	clkUpdate    = 0x01
	clkSelIRC    = 0
	clkSelPLLOut = 3
	pllMSel4     = 3      // M-1
	pllPSel2     = 1 << 5 // P=2
	ahbClockAll  = 0x0007ffff
)

// Registers is the SYSCON register block.
type Registers interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// Block is a peripheral with a clock gate.
type Block uint8

const (
	I2C Block = iota
	GPIO
	CT16B0
	CT16B1
	CT32B0
	CT32B1
	SSP0
	UART
	ADC
	WDT
	IOCON
	CAN
	SSP1
)

var clockBits = [...]uint32{
	I2C:    0x00000020,
	GPIO:   0x00000040,
	CT16B0: 0x00000080,
	CT16B1: 0x00000100,
	CT32B0: 0x00000200,
	CT32B1: 0x00000400,
	SSP0:   0x00000800,
	UART:   0x00001000,
	ADC:    0x00002000,
	WDT:    0x00008000,
	IOCON:  0x00010000,
	CAN:    0x00020000,
	SSP1:   0x00040000,
}

// Only these blocks have a software reset.
var resetBits = [...]uint32{
	SSP0: 0x1,
	I2C:  0x2,
	SSP1: 0x4,
	CAN:  0x8,
}

func (b Block) String() string {
	switch b {
	case I2C:
		return "I2C"
	case GPIO:
		return "GPIO"
	case CT16B0:
		return "CT16B0"
	case CT16B1:
		return "CT16B1"
	case CT32B0:
		return "CT32B0"
	case CT32B1:
		return "CT32B1"
	case SSP0:
		return "SSP0"
	case UART:
		return "UART"
	case ADC:
		return "ADC"
	case WDT:
		return "WDT"
	case IOCON:
		return "IOCON"
	case CAN:
		return "CAN"
	case SSP1:
		return "SSP1"
	}
	return "?"
}

// Global registers, installed by the target.
var regs Registers

// SetRegisters is called by target-specific code to register the block.
func SetRegisters(r Registers) {
	regs = r
}

// MustRegisters returns the registered block or panics if missing.
func MustRegisters() Registers {
	if regs == nil {
		panic("SYSCON registers not configured")
	}
	return regs
}

func modify(r Reg, clear, set uint32) {
	rr := MustRegisters()
	core.Critical(func() {
		rr.Store(r, rr.Load(r)&^clear|set)
	})
}

// Clock gates the block's clock.
func (b Block) Clock(on bool) {
	if on {
		modify(SYSAHBCLKCTRL, 0, clockBits[b])
	} else {
		modify(SYSAHBCLKCTRL, clockBits[b], 0)
	}
}

// Clocked reports whether the block's clock is running.
func (b Block) Clocked() bool {
	return MustRegisters().Load(SYSAHBCLKCTRL)&clockBits[b] != 0
}

// Reset pulses the block's reset line. Blocks without one are left alone.
func (b Block) Reset() {
	if int(b) >= len(resetBits) || resetBits[b] == 0 {
		return
	}
	bit := resetBits[b]
	modify(PRESETCTRL, bit, 0)
	modify(PRESETCTRL, 0, bit)
}

// Divider is a peripheral clock divider.
type Divider Reg

const (
	DivSSP0 = Divider(SSP0CLKDIV)
	DivUART = Divider(UARTCLKDIV)
	DivSSP1 = Divider(SSP1CLKDIV)
)

// SetDivider sets a peripheral clock divider; 0 stops the clock.
func SetDivider(d Divider, div uint8) {
	MustRegisters().Store(Reg(d), uint32(div))
}

// Init48MHz runs the core from the PLL at 48 MHz off the internal RC
// oscillator, with every peripheral clock on.
func Init48MHz() {
	r := MustRegisters()
	r.Store(SYSAHBCLKCTRL, r.Load(SYSAHBCLKCTRL)|ahbClockAll)

	r.Store(PDRUNCFG, r.Load(PDRUNCFG)&^pdrunSysOsc)
	r.Store(MAINCLKSEL, clkSelIRC)
	update(r, MAINCLKUEN)

	r.Store(SYSPLLCLKSEL, clkSelIRC)
	update(r, SYSPLLCLKUEN)

	r.Store(PDRUNCFG, r.Load(PDRUNCFG)|pdrunSysPLL)
	r.Store(SYSPLLCTRL, pllMSel4|pllPSel2)
	r.Store(PDRUNCFG, r.Load(PDRUNCFG)&^pdrunSysPLL)
	for r.Load(SYSPLLSTAT)&pllLock == 0 {
	}

	r.Store(MAINCLKSEL, clkSelPLLOut)
	update(r, MAINCLKUEN)

	r.Store(SYSAHBCLKDIV, 1)
}

// update latches a clock source selection.
func update(r Registers, uen Reg) {
	r.Store(uen, clkUpdate)
	r.Store(uen, 0)
	r.Store(uen, clkUpdate)
	for r.Load(uen)&clkUpdate == 0 {
	}
}
