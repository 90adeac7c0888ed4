//go:build lpc11xx

package main

import (
	"runtime/volatile"
	"unsafe"

	"lpcbsp/i2c"
	"lpcbsp/pin"
	"lpcbsp/syscon"
)

// Peripheral base addresses.
const (
	i2cBase    = 0x40000000
	uartBase   = 0x40008000
	ct16b0Base = 0x4000c000
	ct16b1Base = 0x40010000
	ct32b0Base = 0x40014000
	ct32b1Base = 0x40018000
	ssp0Base   = 0x40040000
	ioconBase  = 0x40044000
	sysconBase = 0x40048000
	ssp1Base   = 0x40058000
	gpioBase   = 0x50000000
	gpioStride = 0x10000
	gpioDir    = 0x8000
)

func reg32(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// mmio is a register block addressed by offsets of type R.
type mmio[R ~uint8 | ~uint16] uintptr

func (b mmio[R]) Load(r R) uint32 {
	return reg32(uintptr(b) + uintptr(r)).Get()
}

func (b mmio[R]) Store(r R, v uint32) {
	reg32(uintptr(b) + uintptr(r)).Set(v)
}

// I2C register offsets.
const (
	i2cCONSET = 0x00
	i2cSTAT   = 0x04
	i2cDAT    = 0x08
	i2cSCLH   = 0x10
	i2cSCLL   = 0x14
	i2cCONCLR = 0x18
)

type i2cRegs struct{}

func (i2cRegs) Status() i2c.Status     { return i2c.Status(reg32(i2cBase + i2cSTAT).Get()) }
func (i2cRegs) Data() byte             { return byte(reg32(i2cBase + i2cDAT).Get()) }
func (i2cRegs) SetData(b byte)         { reg32(i2cBase + i2cDAT).Set(uint32(b)) }
func (i2cRegs) Set(bits i2c.Control)   { reg32(i2cBase + i2cCONSET).Set(uint32(bits)) }
func (i2cRegs) Clear(bits i2c.Control) { reg32(i2cBase + i2cCONCLR).Set(uint32(bits)) }
func (i2cRegs) Control() i2c.Control   { return i2c.Control(reg32(i2cBase + i2cCONSET).Get()) }

func (i2cRegs) SetDutyCycle(high, low uint16) {
	reg32(i2cBase + i2cSCLH).Set(uint32(high))
	reg32(i2cBase + i2cSCLL).Set(uint32(low))
}

// i2cPlatform clocks, resets and pins out the I2C block for the engine.
type i2cPlatform struct{}

func (i2cPlatform) Reset()        { syscon.I2C.Reset() }
func (i2cPlatform) Clock(on bool) { syscon.I2C.Clock(on) }

func (i2cPlatform) ConfigurePins() {
	pin.P0_4_SCL.Configure(pin.I2CStandard)
	pin.P0_5_SDA.Configure(pin.I2CStandard)
}

// pins maps IOCON and the GPIO ports.
type pins struct{}

func (pins) StoreIOCON(offset uint16, value uint32) {
	reg32(ioconBase + uintptr(offset)).Set(value)
}

func (pins) Port(n uint8) pin.Port {
	return gpioPort(gpioBase + uintptr(n)*gpioStride)
}

// gpioPort uses the MASKED_ACCESS window: address bits 13:2 select the
// data bits a read or write touches.
type gpioPort uintptr

func (p gpioPort) Load(mask uint32) uint32 {
	return reg32(uintptr(p) + uintptr(mask&0xfff)<<2).Get()
}

func (p gpioPort) Store(mask, value uint32) {
	reg32(uintptr(p) + uintptr(mask&0xfff)<<2).Set(value)
}

func (p gpioPort) Dir() uint32 {
	return reg32(uintptr(p) + gpioDir).Get()
}

func (p gpioPort) SetDir(dir uint32) {
	reg32(uintptr(p) + gpioDir).Set(dir)
}
