package sim

import (
	"lpcbsp/core"
	"lpcbsp/uart"
)

// UART is a UART block that transmits instantly. Bytes written to THR are
// appended to Output; bytes passed to Inject arrive in the receive FIFO.
type UART struct {
	irq  *IRQController
	line core.IRQ

	ier, lcr, dll, dlm uint32
	regs               map[uart.Reg]uint32
	rx                 []byte
	threPending        bool

	// Loopback feeds every transmitted byte back into the receiver.
	Loopback bool
	Output   []byte
}

func NewUART(irq *IRQController, line core.IRQ) *UART {
	return &UART{irq: irq, line: line, regs: make(map[uart.Reg]uint32)}
}

// Inject delivers bytes to the receive FIFO.
func (s *UART) Inject(data ...byte) {
	s.rx = append(s.rx, data...)
	s.irq.Raise(s.line)
}

// Divisor returns the programmed divisor latch and FDR.
func (s *UART) Divisor() (uint16, uint32) {
	return uint16(s.dlm<<8 | s.dll), s.regs[uart.FDR]
}

func (s *UART) dlab() bool { return s.lcr&0x80 != 0 }

func (s *UART) Load(r uart.Reg) uint32 {
	switch r {
	case uart.RBR:
		if s.dlab() {
			return s.dll
		}
		if len(s.rx) == 0 {
			return 0
		}
		b := s.rx[0]
		s.rx = s.rx[1:]
		return uint32(b)
	case uart.IER:
		if s.dlab() {
			return s.dlm
		}
		return s.ier
	case uart.IIR:
		switch {
		case s.ier&0x01 != 0 && len(s.rx) > 0:
			return 0x04
		case s.ier&0x02 != 0 && s.threPending:
			s.threPending = false
			return 0x02
		}
		return 0x01
	case uart.LCR:
		return s.lcr
	case uart.LSR:
		lsr := uint32(0x60)
		if len(s.rx) > 0 {
			lsr |= 0x01
		}
		return lsr
	}
	return s.regs[r]
}

func (s *UART) Store(r uart.Reg, v uint32) {
	switch r {
	case uart.THR:
		if s.dlab() {
			s.dll = v
			return
		}
		s.Output = append(s.Output, byte(v))
		if s.Loopback {
			s.rx = append(s.rx, byte(v))
		}
		s.threPending = true
		s.irq.Raise(s.line)
	case uart.IER:
		if s.dlab() {
			s.dlm = v
			return
		}
		s.ier = v
	case uart.FCR:
		if v&0x02 != 0 {
			s.rx = s.rx[:0]
		}
		s.regs[r] = v
	case uart.LCR:
		s.lcr = v
	default:
		s.regs[r] = v
	}
}
