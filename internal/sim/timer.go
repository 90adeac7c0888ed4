package sim

import (
	"lpcbsp/core"
	"lpcbsp/timer"
)

// Timer is a counter/timer block advanced by Tick.
type Timer struct {
	irq  *IRQController
	line core.IRQ
	regs map[timer.Reg]uint32
}

func NewTimer(irq *IRQController, line core.IRQ) *Timer {
	return &Timer{irq: irq, line: line, regs: make(map[timer.Reg]uint32)}
}

func (s *Timer) Load(r timer.Reg) uint32 {
	return s.regs[r]
}

func (s *Timer) Store(r timer.Reg, v uint32) {
	switch r {
	case timer.IR:
		s.regs[r] &^= v
	case timer.TCR:
		if v&2 != 0 {
			s.regs[timer.TC] = 0
			s.regs[timer.PC] = 0
		}
		s.regs[r] = v
	default:
		s.regs[r] = v
	}
}

// Tick advances the block by n PCLK cycles.
func (s *Timer) Tick(n int) {
	for ; n > 0; n-- {
		if s.regs[timer.TCR]&1 == 0 || s.regs[timer.TCR]&2 != 0 {
			return
		}
		if s.regs[timer.PC] < s.regs[timer.PR] {
			s.regs[timer.PC]++
			continue
		}
		s.regs[timer.PC] = 0
		s.regs[timer.TC]++
		mcr := s.regs[timer.MCR]
		if s.regs[timer.TC] != s.regs[timer.MR0] {
			continue
		}
		if mcr&1 != 0 {
			s.regs[timer.IR] |= 1
			s.irq.Raise(s.line)
		}
		if mcr&2 != 0 {
			s.regs[timer.TC] = 0
		}
	}
}
