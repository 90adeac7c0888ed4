package sim

import (
	"tinygo.org/x/drivers/tester"

	"lpcbsp/core"
	"lpcbsp/i2c"
)

// I2C models the LPC11xx I2C block in master mode with slaves attached.
// Slaves are tester devices with 8-bit auto-incrementing registers: the
// first byte of a write sets the register pointer, reads continue from it.
//
// The block reacts to control writes the way the hardware does: setting STA
// on an idle bus raises SI with status 0x08, and clearing SI performs the
// action selected by STO, STA, DAT and AA and raises the next status.
type I2C struct {
	irq     *IRQController
	line    core.IRQ
	handler func()

	devices  []tester.I2CDevice
	nackData map[uint8]bool
	inject   []i2c.Status

	conset     i2c.Control
	stat       i2c.Status
	dat        byte
	sclh, scll uint16
	clock      bool
	inHandler  bool

	// bus transaction
	active  bool
	target  tester.I2CDevice
	written []byte
	ptr     uint8

	// NoStart keeps START from ever being acknowledged.
	NoStart bool

	Accesses int          // register and platform calls
	Stops    int          // CONSET writes that include STO
	Resets   int          // block resets
	Steps    int          // interrupts delivered
	Trace    []i2c.Status // status of each delivered interrupt
}

func NewI2C(irq *IRQController, line core.IRQ) *I2C {
	return &I2C{
		irq:      irq,
		line:     line,
		stat:     i2c.StatusNoInfo,
		nackData: make(map[uint8]bool),
	}
}

// Attach sets the interrupt handler.
func (b *I2C) Attach(handler func()) {
	b.handler = handler
}

// AddDevice attaches a slave. A tester.I2CDevice8 with Err set NACKs its
// address.
func (b *I2C) AddDevice(d tester.I2CDevice) {
	b.devices = append(b.devices, d)
}

// NACKData makes the slave at addr reject written data bytes.
func (b *I2C) NACKData(addr uint8) {
	b.nackData[addr] = true
}

// Inject replaces the next raised status codes, in order.
func (b *I2C) Inject(status ...i2c.Status) {
	b.inject = append(b.inject, status...)
}

// Step delivers the I2C interrupt if SI is set and the line is enabled.
func (b *I2C) Step() {
	if b.inHandler || b.handler == nil || b.conset&i2c.SI == 0 || !b.irq.Enabled(b.line) {
		return
	}
	b.Steps++
	b.Trace = append(b.Trace, b.stat)
	b.inHandler = true
	defer func() { b.inHandler = false }()
	b.handler()
}

func (b *I2C) Clocked() bool { return b.clock }
func (b *I2C) Duty() (h, l uint16) { return b.sclh, b.scll }

// Registers

func (b *I2C) Status() i2c.Status {
	b.Accesses++
	return b.stat
}

func (b *I2C) Data() byte {
	b.Accesses++
	return b.dat
}

func (b *I2C) SetData(v byte) {
	b.Accesses++
	b.dat = v
}

func (b *I2C) Control() i2c.Control {
	b.Accesses++
	return b.conset
}

func (b *I2C) SetDutyCycle(high, low uint16) {
	b.Accesses++
	b.sclh, b.scll = high, low
}

func (b *I2C) Set(bits i2c.Control) {
	b.Accesses++
	if bits&i2c.STO != 0 {
		b.Stops++
	}
	b.conset |= bits
	if bits&i2c.STA != 0 && !b.active && b.conset&i2c.SI == 0 && b.conset&i2c.I2EN != 0 && !b.NoStart {
		b.active = true
		b.raise(i2c.StatusStart)
	}
}

func (b *I2C) Clear(bits i2c.Control) {
	b.Accesses++
	hadSI := b.conset&i2c.SI != 0
	b.conset &^= bits
	if bits&i2c.SI == 0 {
		return
	}
	if b.conset&i2c.STO != 0 {
		b.stop()
		return
	}
	if hadSI {
		b.advance()
	}
}

// Platform

func (b *I2C) Reset() {
	b.Accesses++
	b.Resets++
	b.conset = 0
	b.stat = i2c.StatusNoInfo
	b.active = false
	b.target = nil
	b.written = b.written[:0]
}

func (b *I2C) Clock(on bool) {
	b.Accesses++
	b.clock = on
}

func (b *I2C) ConfigurePins() {
	b.Accesses++
}

func (b *I2C) raise(s i2c.Status) {
	if len(b.inject) > 0 {
		s = b.inject[0]
		b.inject = b.inject[1:]
	}
	b.stat = s
	b.conset |= i2c.SI
}

func (b *I2C) stop() {
	b.flush()
	b.conset &^= i2c.STO
	b.active = false
	b.target = nil
	b.stat = i2c.StatusNoInfo
}

// flush completes a write phase on the addressed slave.
func (b *I2C) flush() {
	if b.target == nil || len(b.written) == 0 {
		return
	}
	b.ptr = b.written[0]
	if len(b.written) > 1 {
		b.target.Tx(b.written, nil)
		b.ptr += uint8(len(b.written) - 1)
	}
	b.written = b.written[:0]
}

func (b *I2C) advance() {
	if b.conset&i2c.STA != 0 {
		b.flush()
		b.raise(i2c.StatusRepeatedStart)
		return
	}
	switch b.stat {
	case i2c.StatusStart, i2c.StatusRepeatedStart:
		addr, read := b.dat>>1, b.dat&1 != 0
		b.target = b.find(addr)
		switch {
		case b.target == nil && read:
			b.raise(i2c.StatusAddrReadNACK)
		case b.target == nil:
			b.raise(i2c.StatusAddrWriteNACK)
		case read:
			b.raise(i2c.StatusAddrReadACK)
		default:
			b.written = b.written[:0]
			b.raise(i2c.StatusAddrWriteACK)
		}
	case i2c.StatusAddrWriteACK, i2c.StatusDataWriteACK:
		if b.nackData[b.target.Addr()] {
			b.raise(i2c.StatusDataWriteNACK)
			return
		}
		b.written = append(b.written, b.dat)
		b.raise(i2c.StatusDataWriteACK)
	case i2c.StatusAddrReadACK, i2c.StatusDataReadACK:
		var v [1]byte
		if err := b.target.Tx([]byte{b.ptr}, v[:]); err != nil {
			v[0] = 0xff
		}
		b.ptr++
		b.dat = v[0]
		if b.conset&i2c.AA != 0 {
			b.raise(i2c.StatusDataReadACK)
		} else {
			b.raise(i2c.StatusDataReadNACK)
		}
	default:
		// master must STOP; nothing more happens on the bus
		b.stat = i2c.StatusNoInfo
	}
}

func (b *I2C) find(addr uint8) tester.I2CDevice {
	for _, d := range b.devices {
		if d.Addr() != addr {
			continue
		}
		if d8, ok := d.(*tester.I2CDevice8); ok && d8.Err != nil {
			return nil
		}
		return d
	}
	return nil
}
