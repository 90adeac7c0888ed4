// Package pin configures LPC11xx pins through the IOCON block and drives
// GPIO through the masked-access data registers.
package pin

import "lpcbsp/core"

// Modifier is a set of IOCON bits or'd into a pin's function value.
type Modifier uint32

const (
	NoPull   Modifier = 0 << 3
	PullDown Modifier = 1 << 3
	PullUp   Modifier = 2 << 3
	Repeater Modifier = 3 << 3

	Hysteresis Modifier = 1 << 5

	Analog  Modifier = 0 << 7
	Digital Modifier = 1 << 7

	I2CStandard Modifier = 0 << 8
	I2CNone     Modifier = 1 << 8
	I2CFastPlus Modifier = 2 << 8

	PushPull  Modifier = 0 << 10
	OpenDrain Modifier = 1 << 10
)

// Hardware is the pin hardware that configuration and GPIO use.
// Platform-specific implementations map it onto the register blocks.
type Hardware interface {
	// StoreIOCON writes the IOCON register at offset
	StoreIOCON(offset uint16, value uint32)

	// Port returns the GPIO block for port 0..3
	Port(n uint8) Port
}

// Port is one GPIO block.
type Port interface {
	// Load reads MASKED_ACCESS[mask]: the data bits selected by mask
	Load(mask uint32) uint32

	// Store writes MASKED_ACCESS[mask]: only bits in mask change
	Store(mask, value uint32)

	Dir() uint32
	SetDir(dir uint32)
}

// Global singleton used by pin code.
var hw Hardware

// SetHardware is called by target-specific code to register its hardware.
func SetHardware(h Hardware) {
	hw = h
}

// MustHardware returns the configured hardware or panics if missing.
func MustHardware() Hardware {
	if hw == nil {
		panic("pin hardware not configured")
	}
	return hw
}

// Pin is a pin function: an IOCON register and the value selecting the
// function, plus an optional location register for functions that can be
// routed to more than one pin.
type Pin struct {
	iocon  uint16
	fn     uint32
	loc    uint16
	locVal uint32
}

// Configure selects the pin function with the given modifiers.
func (p Pin) Configure(mod Modifier) Pin {
	h := MustHardware()
	if p.loc != 0 {
		h.StoreIOCON(p.loc, p.locVal)
	}
	h.StoreIOCON(p.iocon, p.fn|uint32(mod))
	return p
}

// Direction of a GPIO.
type Direction uint8

const (
	Input Direction = iota
	Output
)

// Gpio is a pin in its GPIO function.
type Gpio struct {
	Pin
	port uint8
	num  uint8
}

func (g Gpio) mask() uint32 { return 1 << g.num }

// Configure sets the direction and selects the GPIO function.
func (g Gpio) Configure(dir Direction, mod Modifier) Gpio {
	port := MustHardware().Port(g.port)
	m := g.mask()
	core.Critical(func() {
		if dir == Output {
			port.SetDir(port.Dir() | m)
		} else {
			port.SetDir(port.Dir() &^ m)
		}
	})
	g.Pin.Configure(mod)
	return g
}

func (g Gpio) Get() bool {
	return MustHardware().Port(g.port).Load(g.mask()) != 0
}

func (g Gpio) Set(value bool) {
	if value {
		g.High()
	} else {
		g.Low()
	}
}

func (g Gpio) High() {
	MustHardware().Port(g.port).Store(g.mask(), g.mask())
}

func (g Gpio) Low() {
	MustHardware().Port(g.port).Store(g.mask(), 0)
}

// Toggle inverts an output. The masked access touches no other pin.
func (g Gpio) Toggle() {
	port := MustHardware().Port(g.port)
	m := g.mask()
	port.Store(m, port.Load(m)^m)
}

// Port and number, for diagnostics.
func (g Gpio) Port() uint8   { return g.port }
func (g Gpio) Number() uint8 { return g.num }
