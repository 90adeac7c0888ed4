package sim

import "lpcbsp/ssp"

// SSP is an SSP block that shifts each frame the moment it is written.
// The reply to every frame comes from Slave, or is the frame itself when
// Slave is nil.
type SSP struct {
	regs map[ssp.Reg]uint32
	rx   []uint16

	Slave    func(uint16) uint16
	Sent     []uint16
	Overruns int
	Ignored  int
}

func NewSSP() *SSP {
	return &SSP{regs: make(map[ssp.Reg]uint32)}
}

func (s *SSP) mask() uint16 {
	return uint16(1<<(s.regs[ssp.CR0]&0xf+1) - 1)
}

func (s *SSP) Load(r ssp.Reg) uint32 {
	switch r {
	case ssp.DR:
		if len(s.rx) == 0 {
			return 0
		}
		v := s.rx[0]
		s.rx = s.rx[1:]
		return uint32(v)
	case ssp.SR:
		sr := uint32(0x03) // TFE, TNF
		if len(s.rx) > 0 {
			sr |= 0x04
		}
		if len(s.rx) == 8 {
			sr |= 0x08
		}
		return sr
	}
	return s.regs[r]
}

func (s *SSP) Store(r ssp.Reg, v uint32) {
	if r != ssp.DR {
		s.regs[r] = v
		return
	}
	if s.regs[ssp.CR1]&0x02 == 0 {
		s.Ignored++
		return
	}
	out := uint16(v) & s.mask()
	s.Sent = append(s.Sent, out)
	in := out
	if s.Slave != nil {
		in = s.Slave(out) & s.mask()
	}
	if len(s.rx) == 8 {
		s.Overruns++
		return
	}
	s.rx = append(s.rx, in)
}
