// Package ssp drives the two LPC11xx SSP blocks as polled SPI masters.
package ssp

import (
	"errors"

	"tinygo.org/x/drivers"

	"lpcbsp/syscon"
)

// Reg is a register offset within an SSP block.
type Reg uint8

const (
	CR0  Reg = 0x00
	CR1  Reg = 0x04
	DR   Reg = 0x08
	SR   Reg = 0x0c
	CPSR Reg = 0x10
	IMSC Reg = 0x14
	RIS  Reg = 0x18
	MIS  Reg = 0x1c
	ICR  Reg = 0x20
)

const (
	cr0CPOL = 0x40
	cr0CPHA = 0x80

	cr1SSE = 0x02

	srTFE = 0x01
	srTNF = 0x02
	srRNE = 0x04
	srBSY = 0x10

	cpsrDiv2 = 2

	// FIFO depth in frames; the transmitter never runs further ahead of
	// the receiver than this so the receive FIFO cannot overrun.
	fifoDepth = 8
)

var (
	ErrRate   = errors.New("ssp: rate out of range")
	ErrBits   = errors.New("ssp: frame size must be 4..16 bits")
	ErrMode   = errors.New("ssp: mode must be 0..3")
	ErrLength = errors.New("ssp: tx and rx lengths differ")
	ErrWidth  = errors.New("ssp: frame size over 8 bits, use Transfer16")
)

// Registers is one SSP register block.
type Registers interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// Port selects an SSP block.
type Port uint8

const (
	SSP0 Port = iota
	SSP1
)

var (
	banks [2]Registers
	bits  [2]uint8
)

// SetRegisters is called by target-specific code to register a block.
func SetRegisters(p Port, r Registers) {
	banks[p] = r
}

func (p Port) regs() Registers {
	if banks[p] == nil {
		panic("SSP registers not configured")
	}
	return banks[p]
}

func (p Port) Block() syscon.Block {
	if p == SSP1 {
		return syscon.SSP1
	}
	return syscon.SSP0
}

func (p Port) divider() syscon.Divider {
	if p == SSP1 {
		return syscon.DivSSP1
	}
	return syscon.DivSSP0
}

// Bits returns the configured frame size, or 0 before Configure.
func (p Port) Bits() uint8 {
	return bits[p]
}

// ClockDivider returns the serial clock rate field for rate with the
// prescaler fixed at 2.
func ClockDivider(rate uint32) (uint32, error) {
	if rate == 0 || rate > syscon.PCLK/2 {
		return 0, ErrRate
	}
	scr := syscon.PCLK/(2*rate) - 1
	if scr > 0xff {
		return 0, ErrRate
	}
	return scr, nil
}

// Configure resets the block and enables it as a master with nbits-bit
// frames in SPI mode 0..3.
func (p Port) Configure(rate uint32, nbits uint8, mode uint8) error {
	if nbits < 4 || nbits > 16 {
		return ErrBits
	}
	if mode > 3 {
		return ErrMode
	}
	scr, err := ClockDivider(rate)
	if err != nil {
		return err
	}

	syscon.SetDivider(p.divider(), 1)
	p.Block().Clock(true)
	p.Block().Reset()

	r := p.regs()
	r.Store(CPSR, cpsrDiv2)
	cr0 := uint32(nbits-1) | scr<<8
	if mode&2 != 0 {
		cr0 |= cr0CPOL
	}
	if mode&1 != 0 {
		cr0 |= cr0CPHA
	}
	r.Store(CR0, cr0)
	r.Store(CR1, 0)
	r.Store(CR1, cr1SSE)
	bits[p] = nbits
	return nil
}

type word interface {
	~uint8 | ~uint16
}

// transfer clocks max(len(tx), len(rx)) frames. A nil tx sends zeros; a
// nil rx discards what comes back.
func transfer[T word](r Registers, tx, rx []T) error {
	n := len(tx)
	if tx == nil {
		n = len(rx)
	} else if rx != nil && len(rx) != n {
		return ErrLength
	}
	sent, recvd := 0, 0
	for recvd < n {
		sr := r.Load(SR)
		if sent < n && sent-recvd < fifoDepth && sr&srTNF != 0 {
			var v T
			if tx != nil {
				v = tx[sent]
			}
			r.Store(DR, uint32(v))
			sent++
		}
		if sr&srRNE != 0 {
			v := T(r.Load(DR))
			if rx != nil {
				rx[recvd] = v
			}
			recvd++
		}
	}
	return nil
}

// Transfer exchanges bytes. Frames wider than 8 bits need Transfer16.
func (p Port) Transfer(tx, rx []byte) error {
	if bits[p] > 8 {
		return ErrWidth
	}
	return transfer(p.regs(), tx, rx)
}

// Transfer16 exchanges frames of up to 16 bits.
func (p Port) Transfer16(tx, rx []uint16) error {
	return transfer(p.regs(), tx, rx)
}

// Busy reports whether a frame is still being shifted.
func (p Port) Busy() bool {
	sr := p.regs().Load(SR)
	return sr&srBSY != 0 || sr&srTFE == 0
}

// Device adapts a Port to drivers.SPI.
type Device struct {
	Port Port
}

func (d Device) Tx(w, r []byte) error {
	return d.Port.Transfer(w, r)
}

func (d Device) Transfer(b byte) (byte, error) {
	var in [1]byte
	err := d.Port.Transfer([]byte{b}, in[:])
	return in[0], err
}

var _ drivers.SPI = Device{}
