package sim

import (
	"lpcbsp/can"
	"lpcbsp/core"
)

// CANROM models the boot ROM C_CAN driver. Frames handed to Transmit are
// recorded in Sent and complete on the next ISR. Frames passed to Inject
// are matched against the configured receive objects, lowest object first.
type CANROM struct {
	irq  *IRQController
	line core.IRQ

	cb     *can.Callbacks
	objs   [33]*can.MsgObj
	slots  [33]can.MsgObj
	rx     []can.MsgObj
	errs   []uint32
	txDone bool

	// Hold keeps transmissions in flight until Complete is called.
	Hold bool

	Inits     [][2]uint32
	ISREnable bool
	Sent      []can.MsgObj
	Unmatched int
}

func NewCANROM(irq *IRQController, line core.IRQ) *CANROM {
	return &CANROM{irq: irq, line: line}
}

func (s *CANROM) InitCAN(timing [2]uint32, isrEnable bool) {
	s.Inits = append(s.Inits, timing)
	s.ISREnable = isrEnable
	s.txDone = false
}

func (s *CANROM) ConfigCallbacks(cb *can.Callbacks) {
	s.cb = cb
}

func (s *CANROM) ConfigRxMsgObj(o *can.MsgObj) {
	c := *o
	s.objs[o.Obj] = &c
}

// Object returns the configuration of receive object n, or nil.
func (s *CANROM) Object(n uint8) *can.MsgObj {
	return s.objs[n]
}

func (s *CANROM) Receive(o *can.MsgObj) {
	*o = s.slots[o.Obj]
}

func (s *CANROM) Transmit(o *can.MsgObj) {
	s.Sent = append(s.Sent, *o)
	s.txDone = true
	if !s.Hold {
		s.irq.Raise(s.line)
	}
}

// Complete releases a held transmission.
func (s *CANROM) Complete() {
	s.Hold = false
	if s.txDone {
		s.irq.Raise(s.line)
	}
}

// Inject queues a frame on the bus.
func (s *CANROM) Inject(modeID uint32, data ...byte) {
	o := can.MsgObj{ModeID: modeID, DLC: uint8(len(data))}
	copy(o.Data[:], data)
	s.rx = append(s.rx, o)
	s.irq.Raise(s.line)
}

// InjectError reports error bits through the error callback.
func (s *CANROM) InjectError(info uint32) {
	s.errs = append(s.errs, info)
	s.irq.Raise(s.line)
}

func (s *CANROM) match(frame uint32) uint8 {
	for n := 1; n < len(s.objs); n++ {
		o := s.objs[n]
		if o != nil && (frame^o.ModeID)&o.Mask == 0 {
			return uint8(n)
		}
	}
	return 0
}

func (s *CANROM) ISR() {
	if s.cb == nil {
		return
	}
	for len(s.errs) > 0 {
		info := s.errs[0]
		s.errs = s.errs[1:]
		s.cb.Error(info)
	}
	for len(s.rx) > 0 {
		f := s.rx[0]
		s.rx = s.rx[1:]
		n := s.match(f.ModeID)
		if n == 0 {
			s.Unmatched++
			continue
		}
		f.Obj = n
		s.slots[n] = f
		s.cb.Rx(n)
	}
	if s.txDone && !s.Hold {
		s.txDone = false
		s.cb.Tx(0)
	}
}
