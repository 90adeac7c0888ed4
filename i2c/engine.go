package i2c

import (
	"errors"

	"lpcbsp/core"
)

var (
	ErrBusy = errors.New("i2c: engine busy")
	ErrNACK = errors.New("i2c: slave did not acknowledge")
	ErrBus  = errors.New("i2c: bus error")

	ErrAddress = errors.New("i2c: address out of 7-bit range")
)

const (
	DefaultStartBudget = 0x1000000
	DefaultPCLK        = 48000000
	DefaultFrequency   = 100000

	MaxAddress = 0x7f
)

// Registers is the I2C register block.
type Registers interface {
	Status() Status
	Data() byte
	SetData(b byte)
	Set(bits Control)   // CONSET
	Clear(bits Control) // CONCLR
	Control() Control
	SetDutyCycle(high, low uint16) // SCLH, SCLL
}

// Platform is the board support the engine needs around the register block.
type Platform interface {
	Reset()
	Clock(on bool)
	ConfigurePins()
}

// Config for an Engine. Zero values select the defaults.
type Config struct {
	Registers   Registers
	Platform    Platform
	IRQ         core.IRQ
	PCLK        uint32
	Frequency   uint32
	StartBudget uint32
	// Idle is called on every iteration of the foreground spin loops.
	// It is nil on hardware.
	Idle func()
}

// Stats counts transfer outcomes.
type Stats struct {
	Transfers uint32
	NACKs     uint32
	Errors    uint32
	Busy      uint32
}

// Engine is an interrupt-driven I2C master. One transfer runs at a time;
// a caller that finds the engine owned gets Error back immediately.
type Engine struct {
	regs   Registers
	plat   Platform
	irq    core.IRQ
	half   uint16
	budget uint32
	idle   func()

	busy  core.Bool
	state core.Uint32
	cur   Cursor
	rbuf  []byte

	transfers core.Uint32
	nacks     core.Uint32
	errs      core.Uint32
	rejected  core.Uint32
}

// New returns an idle engine; zero Config fields take their defaults.
func New(cfg Config) *Engine {
	if cfg.PCLK == 0 {
		cfg.PCLK = DefaultPCLK
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.StartBudget == 0 {
		cfg.StartBudget = DefaultStartBudget
	}
	return &Engine{
		regs:   cfg.Registers,
		plat:   cfg.Platform,
		irq:    cfg.IRQ,
		half:   uint16(cfg.PCLK / (2 * cfg.Frequency)),
		budget: cfg.StartBudget,
		idle:   cfg.Idle,
	}
}

// State returns the state of the current or last transfer.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(uint32(s))
}

// Busy reports whether a transfer owns the engine.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

func (e *Engine) Stats() Stats {
	return Stats{
		Transfers: e.transfers.Load(),
		NACKs:     e.nacks.Load(),
		Errors:    e.errs.Load(),
		Busy:      e.rejected.Load(),
	}
}

// owner is held for the duration of a transfer. Release powers the block
// down and hands the engine back.
type owner struct {
	e *Engine
}

func (e *Engine) acquire() (owner, bool) {
	if !e.busy.CompareAndSwap(false, true) {
		return owner{}, false
	}
	return owner{e}, true
}

func (o owner) Release() {
	o.e.plat.Clock(false)
	o.e.irq.Disable()
	o.e.busy.Store(false)
}

// Transfer writes w to the slave at the 7-bit address, then reads len(r)
// bytes after a repeated START. Either buffer may be empty, not both.
func (e *Engine) Transfer(slave uint8, w, r []byte) State {
	s, _ := e.transfer(slave, w, r)
	return s
}

// WriteRegister writes one register of an 8-bit register device.
func (e *Engine) WriteRegister(slave, reg, value uint8) State {
	return e.Transfer(slave, []byte{reg, value}, nil)
}

// ReadRegister reads one register of an 8-bit register device.
func (e *Engine) ReadRegister(slave, reg uint8) (uint8, State) {
	var b [1]byte
	s := e.Transfer(slave, []byte{reg}, b[:])
	return b[0], s
}

// Tx implements drivers.I2C.
func (e *Engine) Tx(addr uint16, w, r []byte) error {
	if addr > MaxAddress {
		return ErrAddress
	}
	s, err := e.transfer(uint8(addr), w, r)
	if err != nil {
		return err
	}
	switch s {
	case ACK:
		return nil
	case NACK:
		return ErrNACK
	}
	return ErrBus
}

func (e *Engine) transfer(slave uint8, w, r []byte) (State, error) {
	if len(w)+len(r) == 0 || slave > MaxAddress {
		return Error, nil
	}
	g, ok := e.acquire()
	if !ok {
		e.rejected.Add(1)
		core.RecordEvent(core.EvtI2CBusy, uint32(slave), 0)
		return Error, ErrBusy
	}
	defer g.Release()

	e.cur = Cursor{Slave: slave, Write: w, ReadLen: len(r)}
	e.rbuf = r
	e.setState(Idle)

	e.plat.Reset()
	e.plat.Clock(true)
	e.plat.ConfigurePins()
	e.regs.Clear(AA | SI | STA | I2EN)
	e.regs.SetDutyCycle(e.half, e.half)
	e.irq.Enable()
	e.regs.Set(I2EN)

	if e.start() {
		for !e.State().Terminal() {
			e.spin()
		}
	} else {
		e.stop()
	}

	s := e.State()
	e.transfers.Add(1)
	switch s {
	case NACK:
		e.nacks.Add(1)
	case Error:
		e.errs.Add(1)
	}
	core.RecordEvent(core.EvtI2CDone, uint32(slave), uint32(s))
	return s, nil
}

func (e *Engine) spin() {
	if e.idle != nil {
		e.idle()
	}
}

// start issues START and waits for the interrupt handler to pick it up.
func (e *Engine) start() bool {
	e.regs.Set(STA)
	for left := e.budget; e.State() == Idle; left-- {
		if left == 0 {
			e.setState(Error)
			return false
		}
		e.spin()
	}
	return true
}

func (e *Engine) stop() bool {
	e.regs.Set(STO)
	e.regs.Clear(SI)
	for left := e.budget; e.regs.Control()&STO != 0; left-- {
		if left == 0 {
			e.setState(Error)
			return false
		}
		e.spin()
	}
	return true
}

// HandleInterrupt is the I2C interrupt handler body.
func (e *Engine) HandleInterrupt() {
	if !e.busy.Load() {
		e.irq.Disable()
		core.RecordEvent(core.EvtI2CSpurious, 0, 0)
		return
	}
	status := e.regs.Status()
	next, eff := Next(status, e.cur, e.State())
	if eff.Capture && e.cur.Read < len(e.rbuf) {
		e.rbuf[e.cur.Read] = e.regs.Data()
	}
	if eff.Load {
		e.regs.SetData(eff.Data)
	}
	if eff.Set != 0 {
		e.regs.Set(eff.Set)
	}
	if eff.Clear != 0 {
		e.regs.Clear(eff.Clear)
	}
	e.cur = next
	e.setState(eff.State)
}
