// Package can drives the LPC11C2x C_CAN controller through the boot ROM
// driver.
//
// Message object 0 transmits; objects 1 and 2 are wildcard receivers for
// standard and extended frames. Sending applies backpressure: Send waits
// for queue space. Receiving never waits: frames that arrive while the
// receive queue is full are dropped and counted.
package can

import (
	"lpcbsp/core"
	"lpcbsp/syscon"
)

const (
	txObj    = 0
	rxStdObj = 1
	rxExtObj = 2

	DefaultRxSize = 16
	DefaultTxSize = 16
)

// Config for a Controller. Zero queue sizes select the defaults.
type Config struct {
	ROM    ROM
	IRQ    core.IRQ
	RxSize int
	TxSize int
	// Idle is called while Send waits for queue space. It is nil on
	// hardware.
	Idle func()
}

// Stats are the controller's counters.
type Stats struct {
	Dropped   uint32 // received frames lost to a full queue
	Errors    uint32 // error callbacks
	LastError uint32 // bits from the most recent error callback
	Reinits   uint32 // bus-off recoveries
}

// Controller is the CAN interface.
type Controller struct {
	rom  ROM
	irq  core.IRQ
	idle func()
	cb   Callbacks

	rx         *core.Queue[Message]
	tx         *core.Queue[Message]
	txBusy     core.Bool
	needReinit core.Bool
	bitrate    Bitrate

	dropped   core.Uint32
	errs      core.Uint32
	lastError core.Uint32
	reinits   core.Uint32
}

// New allocates the queues; Init starts the controller.
func New(cfg Config) *Controller {
	if cfg.RxSize == 0 {
		cfg.RxSize = DefaultRxSize
	}
	if cfg.TxSize == 0 {
		cfg.TxSize = DefaultTxSize
	}
	c := &Controller{
		rom:  cfg.ROM,
		irq:  cfg.IRQ,
		idle: cfg.Idle,
		rx:   core.NewQueue[Message](cfg.RxSize),
		tx:   core.NewQueue[Message](cfg.TxSize),
	}
	c.cb = Callbacks{Rx: c.onRx, Tx: c.onTx, Error: c.onError}
	return c
}

// Init clocks the controller, programs the bitrate, installs the ROM
// callbacks and the two wildcard receive objects, and enables the
// interrupt.
func (c *Controller) Init(rate Bitrate) error {
	if int(rate) >= len(timing) {
		return ErrInvalidBitrate
	}
	syscon.CAN.Clock(true)

	c.bitrate = rate
	c.reinit()

	c.rom.ConfigCallbacks(&c.cb)

	c.rom.ConfigRxMsgObj(&MsgObj{ModeID: 0, Mask: ModeEXT, Obj: rxStdObj})
	c.rom.ConfigRxMsgObj(&MsgObj{ModeID: ModeEXT, Mask: ModeEXT, Obj: rxExtObj})

	c.irq.Enable()
	return nil
}

// reinit drops anything queued for transmission and restarts the
// controller. A frame being sent when the bus went off is lost.
func (c *Controller) reinit() {
	c.txBusy.Store(false)
	c.tx.Clear()
	c.needReinit.Store(false)
	c.rom.InitCAN(c.bitrate.Timing(), true)
}

// Bitrate returns the configured bitrate.
func (c *Controller) Bitrate() Bitrate {
	return c.bitrate
}

// Send queues a frame, waiting for space if the queue is full, and starts
// the transmitter if it is idle.
func (c *Controller) Send(m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.tx.PushWait(m, c.idle)
	core.Critical(func() {
		if !c.txBusy.Load() {
			c.onTx(txObj)
		}
	})
	return nil
}

// Recv returns the next received frame, if any.
func (c *Controller) Recv() (Message, bool) {
	return c.rx.Pop()
}

func (c *Controller) RecvAvailable() bool {
	return !c.rx.Empty()
}

func (c *Controller) SendSpace() bool {
	return !c.tx.Full()
}

// SetFilter configures receive object index (2..32) to accept frames whose
// mode/id bits match id under mask.
func (c *Controller) SetFilter(index uint8, id, mask uint32) bool {
	if index < 2 || index > 32 {
		return false
	}
	c.rom.ConfigRxMsgObj(&MsgObj{ModeID: id, Mask: mask, Obj: index})
	return true
}

// Poll performs recovery deferred from interrupt context. It reports
// whether the controller was reinitialised.
func (c *Controller) Poll() bool {
	if !c.needReinit.Load() {
		return false
	}
	c.reinit()
	n := c.reinits.Add(1)
	core.RecordEvent(core.EvtCANReinit, n, 0)
	return true
}

func (c *Controller) Stats() Stats {
	return Stats{
		Dropped:   c.dropped.Load(),
		Errors:    c.errs.Load(),
		LastError: c.lastError.Load(),
		Reinits:   c.reinits.Load(),
	}
}

// HandleInterrupt is the CAN interrupt handler body.
func (c *Controller) HandleInterrupt() {
	c.rom.ISR()
}

func (c *Controller) onRx(obj uint8) {
	if obj != rxStdObj && obj != rxExtObj {
		return
	}
	o := MsgObj{Obj: obj}
	c.rom.Receive(&o)
	if !c.rx.Push(fromMsgObj(&o)) {
		n := c.dropped.Add(1)
		core.RecordEvent(core.EvtCANDrop, n, o.ModeID)
	}
}

func (c *Controller) onTx(obj uint8) {
	if obj != txObj {
		return
	}
	m, ok := c.tx.Pop()
	if !ok {
		c.txBusy.Store(false)
		return
	}
	o := toMsgObj(&m, txObj)
	c.rom.Transmit(&o)
	c.txBusy.Store(true)
}

func (c *Controller) onError(info uint32) {
	c.errs.Add(1)
	c.lastError.Store(info)
	core.RecordEvent(core.EvtCANError, info, 0)
	if info&ErrorBOFF != 0 {
		c.needReinit.Store(true)
	}
}
