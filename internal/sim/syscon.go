package sim

import "lpcbsp/syscon"

// Syscon is a SYSCON register file. The PLL locks as soon as it is powered
// and clock source updates latch immediately.
type Syscon struct {
	regs   map[syscon.Reg]uint32
	Writes []SysconWrite
}

type SysconWrite struct {
	Reg   syscon.Reg
	Value uint32
}

func NewSyscon() *Syscon {
	return &Syscon{regs: map[syscon.Reg]uint32{
		// reset values
		syscon.SYSAHBCLKCTRL: 0x0000485f,
		syscon.PDRUNCFG:      0x0000edf0,
	}}
}

func (s *Syscon) Load(r syscon.Reg) uint32 {
	if r == syscon.SYSPLLSTAT {
		if s.regs[syscon.PDRUNCFG]&0x80 == 0 {
			return 1
		}
		return 0
	}
	return s.regs[r]
}

func (s *Syscon) Store(r syscon.Reg, v uint32) {
	s.Writes = append(s.Writes, SysconWrite{r, v})
	s.regs[r] = v
}
