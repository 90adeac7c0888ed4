// Package uart drives the LPC11xx UART, either polled or interrupt driven
// through a pair of SPSC queues.
package uart

import (
	"lpcbsp/core"
	"lpcbsp/syscon"
)

// Reg is a register offset within the UART block.
type Reg uint8

const (
	RBR Reg = 0x00 // receive buffer (read), THR (write), DLL (DLAB=1)
	THR Reg = 0x00
	DLL Reg = 0x00
	IER Reg = 0x04 // DLM when DLAB=1
	DLM Reg = 0x04
	IIR Reg = 0x08 // FCR on write
	FCR Reg = 0x08
	LCR Reg = 0x0c
	MCR Reg = 0x10
	LSR Reg = 0x14
	ACR Reg = 0x20
	FDR Reg = 0x28
	TER Reg = 0x30
)

const (
	ierRBR  = 0x01
	ierTHRE = 0x02

	iirNoPending = 0x01
	iirIntID     = 0x0e
	iirRLS       = 0x06
	iirRDA       = 0x04
	iirCTI       = 0x0c
	iirTHRE      = 0x02

	fcrEnable  = 0x01
	fcrRxReset = 0x02
	fcrTxReset = 0x04

	lcr8N1  = 0x03
	lcrDLAB = 0x80

	lsrRDR  = 0x01
	lsrTHRE = 0x20
	lsrTEMT = 0x40

	terTXEN = 0x80

	txFIFODepth = 16
)

// Registers is the UART register block.
type Registers interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// Config for a UART. Zero queue sizes select the defaults.
type Config struct {
	Registers Registers
	IRQ       core.IRQ
	Polled    bool
	RxSize    int
	TxSize    int
	// Idle is called while waiting for the transmitter or for queue space.
	// It is nil on hardware.
	Idle func()
}

const (
	DefaultRxSize = 64
	DefaultTxSize = 64
)

// UART is the serial port. In interrupt mode the receive queue is filled by
// the interrupt handler and drained by foreground code, and the transmit
// queue the other way round.
type UART struct {
	regs   Registers
	irq    core.IRQ
	polled bool
	idle   func()

	rx      *core.Queue[byte]
	tx      *core.Queue[byte]
	txBusy  core.Bool
	dropped core.Uint32
}

// New binds a UART to its registers; Configure sets the rate and starts it.
func New(cfg Config) *UART {
	u := &UART{
		regs:   cfg.Registers,
		irq:    cfg.IRQ,
		polled: cfg.Polled,
		idle:   cfg.Idle,
	}
	if !u.polled {
		if cfg.RxSize == 0 {
			cfg.RxSize = DefaultRxSize
		}
		if cfg.TxSize == 0 {
			cfg.TxSize = DefaultTxSize
		}
		u.rx = core.NewQueue[byte](cfg.RxSize)
		u.tx = core.NewQueue[byte](cfg.TxSize)
	}
	return u
}

// Divisors returns the divisor latch and FDR values for rate at pclk.
func Divisors(pclk, rate uint32) (dl uint16, fdr uint8) {
	rate16 := 16 * rate
	dval := pclk % rate16
	var mval uint32
	if dval > 0 {
		// fractional part as 1/mval, dropped when mval needs more than 4 bits
		mval = rate16 / dval
		dval = 1
		if mval > 12 {
			dval = 0
		}
	}
	dval &= 0xf
	mval &= 0xf
	if mval == 0 {
		return uint16(pclk / rate16), 1 << 4
	}
	return uint16(pclk / (rate16 + rate16*dval/mval)), uint8(mval<<4 | dval)
}

// Configure sets up 8N1 at rate with FIFOs enabled.
func (u *UART) Configure(rate uint32) {
	syscon.UART.Clock(true)
	syscon.SetDivider(syscon.DivUART, 1)

	r := u.regs
	r.Store(IER, 0)
	r.Store(FCR, fcrEnable|fcrRxReset|fcrTxReset)
	r.Store(MCR, 0)
	r.Store(LCR, lcr8N1)

	dl, fdr := Divisors(syscon.PCLK, rate)
	r.Store(LCR, r.Load(LCR)|lcrDLAB)
	r.Store(DLL, uint32(dl&0xff))
	r.Store(DLM, uint32(dl>>8))
	r.Store(LCR, r.Load(LCR)&^lcrDLAB)
	r.Store(FDR, uint32(fdr))

	r.Store(ACR, 0)
	r.Store(TER, terTXEN)

	if !u.polled {
		u.rx.Clear()
		u.tx.Clear()
		u.txBusy.Store(false)
		r.Store(IER, ierRBR|ierTHRE)
		u.irq.Enable()
	}
}

func (u *UART) spin() {
	if u.idle != nil {
		u.idle()
	}
}

// Send queues or transmits one byte. In interrupt mode it waits for queue
// space; in polled mode it waits for the transmitter to empty.
func (u *UART) Send(b byte) {
	if u.polled {
		for u.regs.Load(LSR)&lsrTEMT == 0 {
			u.spin()
		}
		u.regs.Store(THR, uint32(b))
		return
	}
	u.tx.PushWait(b, u.spin)
	u.kick()
}

// kick starts the transmitter if it is idle. The interrupt handler keeps it
// going until the queue is empty.
func (u *UART) kick() {
	core.Critical(func() {
		if u.txBusy.Load() {
			return
		}
		if b, ok := u.tx.Pop(); ok {
			u.txBusy.Store(true)
			u.regs.Store(THR, uint32(b))
		}
	})
}

// WriteByte implements io.ByteWriter.
func (u *UART) WriteByte(b byte) error {
	u.Send(b)
	return nil
}

// Write implements io.Writer.
func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.Send(b)
	}
	return len(p), nil
}

func (u *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		u.Send(s[i])
	}
	return len(s), nil
}

// Recv returns the next received byte, if any.
func (u *UART) Recv() (byte, bool) {
	if u.polled {
		if u.regs.Load(LSR)&lsrRDR == 0 {
			return 0, false
		}
		return byte(u.regs.Load(RBR)), true
	}
	return u.rx.Pop()
}

// Read implements io.Reader without blocking: it returns what has arrived.
func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, ok := u.Recv()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (u *UART) RecvAvailable() bool {
	if u.polled {
		return u.regs.Load(LSR)&lsrRDR != 0
	}
	return !u.rx.Empty()
}

func (u *UART) SendSpace() bool {
	if u.polled {
		return u.regs.Load(LSR)&lsrTHRE != 0
	}
	return !u.tx.Full()
}

// Dropped returns the number of received bytes lost to a full queue.
func (u *UART) Dropped() uint32 {
	return u.dropped.Load()
}

// HandleInterrupt is the UART interrupt handler body.
func (u *UART) HandleInterrupt() {
	if u.polled {
		u.regs.Store(IER, 0)
		return
	}
	for {
		iir := u.regs.Load(IIR)
		if iir&iirNoPending != 0 {
			return
		}
		switch iir & iirIntID {
		case iirRDA, iirCTI:
			u.drainRx()
		case iirTHRE:
			u.fillTx()
		case iirRLS:
			u.regs.Load(LSR)
		default:
			return
		}
	}
}

func (u *UART) drainRx() {
	for u.regs.Load(LSR)&lsrRDR != 0 {
		b := byte(u.regs.Load(RBR))
		if !u.rx.Push(b) {
			n := u.dropped.Add(1)
			core.RecordEvent(core.EvtUARTDrop, n, uint32(b))
		}
	}
}

func (u *UART) fillTx() {
	for i := 0; i < txFIFODepth; i++ {
		b, ok := u.tx.Pop()
		if !ok {
			if i == 0 {
				u.txBusy.Store(false)
			}
			return
		}
		u.regs.Store(THR, uint32(b))
	}
}
