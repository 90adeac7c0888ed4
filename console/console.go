// Package console is the board's command interface: a registry of named
// commands reached through protocol frames, and handlers that exercise the
// peripheral drivers on the host's behalf.
package console

import (
	"tinygo.org/x/drivers"

	"lpcbsp/can"
	"lpcbsp/core"
	"lpcbsp/i2c"
	"lpcbsp/protocol"
)

// Limits that keep every reply inside one frame.
const (
	MaxChunk  = 40
	MaxData   = 32
	MaxEvents = 16
)

// StatusBadArgs is reported in place of a driver status when a request
// cannot be carried out as asked.
const StatusBadArgs = 0xff

// CAN message flags.
const (
	FlagExtended = 1 << 0
	FlagRTR      = 1 << 1
	FlagNone     = 1 << 7 // can_message: receive queue empty
)

// I2C is the part of i2c.Engine the console uses.
type I2C interface {
	Transfer(slave uint8, w, r []byte) i2c.State
}

// Serial is the part of uart.UART the console reports on.
type Serial interface {
	Dropped() uint32
}

// CAN is the part of can.Controller the console uses.
type CAN interface {
	Send(m can.Message) error
	Recv() (can.Message, bool)
	Stats() can.Stats
}

// Config selects the peripherals to expose. Commands for nil peripherals
// are left out of the dictionary.
type Config struct {
	Version string
	Clock   *core.Timebase
	I2C     I2C
	UART    Serial
	CAN     CAN
	SPI     drivers.SPI
}

type responses struct {
	identify  uint16
	uptime    uint16
	version   uint16
	events    uint16
	event     uint16
	i2cResult uint16
	uartStats uint16
	canStatus uint16
	canMsg    uint16
	canStats  uint16
	spiResult uint16
}

// Console owns the board end of the link.
type Console struct {
	cfg  Config
	reg  *Registry
	t    *protocol.Transport
	resp responses
	buf  [MaxData]byte
}

func New(out protocol.OutputBuffer, cfg Config) *Console {
	c := &Console{cfg: cfg, reg: NewRegistry()}
	c.t = protocol.NewTransport(out, c.reg.Dispatch)
	c.register()
	return c
}

func (c *Console) Registry() *Registry { return c.reg }

func (c *Console) Transport() *protocol.Transport { return c.t }

// Receive processes whatever the host has sent so far.
func (c *Console) Receive(in protocol.InputBuffer) {
	c.t.Receive(in)
}

func (c *Console) register() {
	r := c.reg
	// identify_response and identify keep ids 0 and 1 so a host can fetch
	// the dictionary before it has read it.
	c.resp.identify = r.Response("identify_response", "offset=%u data=%.*s")
	r.Register("identify", "offset=%u count=%c", c.identify)

	c.resp.uptime = r.Response("uptime", "high=%u clock=%u")
	r.Register("get_uptime", "", c.getUptime)
	c.resp.version = r.Response("version", "version=%s")
	r.Register("get_version", "", c.getVersion)
	c.resp.events = r.Response("events", "count=%c")
	c.resp.event = r.Response("event", "kind=%c clock=%u v1=%u v2=%u")
	r.Register("get_events", "", c.getEvents)

	if c.cfg.I2C != nil {
		c.resp.i2cResult = r.Response("i2c_result", "addr=%c status=%c data=%*s")
		r.Register("i2c_transfer", "addr=%c write=%*s read=%c", c.i2cTransfer)
		r.Register("i2c_write_reg", "addr=%c reg=%c val=%c", c.i2cWriteReg)
		r.Register("i2c_read_reg", "addr=%c reg=%c count=%c", c.i2cReadReg)
	}
	if c.cfg.UART != nil {
		c.resp.uartStats = r.Response("uart_stats_result", "dropped=%u")
		r.Register("uart_stats", "", c.uartStats)
	}
	if c.cfg.CAN != nil {
		c.resp.canStatus = r.Response("can_status", "status=%c")
		c.resp.canMsg = r.Response("can_message", "id=%u flags=%c data=%*s")
		c.resp.canStats = r.Response("can_stats_result", "dropped=%u errors=%u last_error=%u reinits=%u")
		r.Register("can_send", "id=%u flags=%c data=%*s", c.canSend)
		r.Register("can_recv", "", c.canRecv)
		r.Register("can_stats", "", c.canStats)
	}
	if c.cfg.SPI != nil {
		c.resp.spiResult = r.Response("spi_result", "status=%c data=%*s")
		r.Register("spi_transfer", "data=%*s", c.spiTransfer)
	}
}

func (c *Console) reply(id uint16, args func(out protocol.OutputBuffer)) {
	c.t.SendCommand(id, args)
}

func decodeArgs(args *[]byte, dst ...*uint32) error {
	for _, d := range dst {
		v, err := protocol.DecodeVLQUint(args)
		if err != nil {
			return err
		}
		*d = v
	}
	return nil
}

func (c *Console) identify(args *[]byte) error {
	var offset, count uint32
	if err := decodeArgs(args, &offset, &count); err != nil {
		return err
	}
	if count > MaxChunk {
		count = MaxChunk
	}
	chunk := c.reg.Chunk(offset, uint8(count))
	c.reply(c.resp.identify, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, offset)
		protocol.EncodeVLQBytes(out, chunk)
	})
	return nil
}

func (c *Console) getUptime(*[]byte) error {
	var now uint64
	if c.cfg.Clock != nil {
		now = c.cfg.Clock.Now()
	}
	c.reply(c.resp.uptime, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(now>>32))
		protocol.EncodeVLQUint(out, uint32(now))
	})
	return nil
}

func (c *Console) getVersion(*[]byte) error {
	c.reply(c.resp.version, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQString(out, c.cfg.Version)
	})
	return nil
}

func (c *Console) getEvents(*[]byte) error {
	var ev [core.EventRingSize]core.Event
	recent := ev[:core.Events(ev[:])]
	if len(recent) > MaxEvents {
		recent = recent[len(recent)-MaxEvents:]
	}
	c.reply(c.resp.events, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(len(recent)))
	})
	for _, e := range recent {
		c.reply(c.resp.event, func(out protocol.OutputBuffer) {
			protocol.EncodeVLQUint(out, uint32(e.Kind))
			protocol.EncodeVLQUint(out, e.Clock)
			protocol.EncodeVLQUint(out, e.Value1)
			protocol.EncodeVLQUint(out, e.Value2)
		})
	}
	return nil
}

func (c *Console) i2cResult(addr uint8, status uint8, data []byte) {
	c.reply(c.resp.i2cResult, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(addr))
		protocol.EncodeVLQUint(out, uint32(status))
		protocol.EncodeVLQBytes(out, data)
	})
}

func (c *Console) i2cTransfer(args *[]byte) error {
	var addr, n uint32
	if err := decodeArgs(args, &addr); err != nil {
		return err
	}
	w, err := protocol.DecodeVLQBytes(args)
	if err != nil {
		return err
	}
	if err := decodeArgs(args, &n); err != nil {
		return err
	}
	if n > MaxData || addr > i2c.MaxAddress {
		c.i2cResult(uint8(addr), StatusBadArgs, nil)
		return nil
	}
	r := c.buf[:n]
	s := c.cfg.I2C.Transfer(uint8(addr), w, r)
	if s != i2c.ACK {
		r = nil
	}
	c.i2cResult(uint8(addr), uint8(s), r)
	return nil
}

func (c *Console) i2cWriteReg(args *[]byte) error {
	var addr, reg, val uint32
	if err := decodeArgs(args, &addr, &reg, &val); err != nil {
		return err
	}
	if addr > i2c.MaxAddress {
		c.i2cResult(uint8(addr), StatusBadArgs, nil)
		return nil
	}
	s := c.cfg.I2C.Transfer(uint8(addr), []byte{uint8(reg), uint8(val)}, nil)
	c.i2cResult(uint8(addr), uint8(s), nil)
	return nil
}

func (c *Console) i2cReadReg(args *[]byte) error {
	var addr, reg, n uint32
	if err := decodeArgs(args, &addr, &reg, &n); err != nil {
		return err
	}
	if n == 0 || n > MaxData || addr > i2c.MaxAddress {
		c.i2cResult(uint8(addr), StatusBadArgs, nil)
		return nil
	}
	r := c.buf[:n]
	s := c.cfg.I2C.Transfer(uint8(addr), []byte{uint8(reg)}, r)
	if s != i2c.ACK {
		r = nil
	}
	c.i2cResult(uint8(addr), uint8(s), r)
	return nil
}

func (c *Console) uartStats(*[]byte) error {
	d := c.cfg.UART.Dropped()
	c.reply(c.resp.uartStats, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, d)
	})
	return nil
}

func (c *Console) canSend(args *[]byte) error {
	var id, flags uint32
	if err := decodeArgs(args, &id, &flags); err != nil {
		return err
	}
	data, err := protocol.DecodeVLQBytes(args)
	if err != nil {
		return err
	}
	var status uint8
	if len(data) > 8 {
		status = StatusBadArgs
	} else {
		m := can.Message{
			ID:       id,
			Extended: flags&FlagExtended != 0,
			RTR:      flags&FlagRTR != 0,
			DLC:      uint8(len(data)),
		}
		copy(m.Data[:], data)
		if c.cfg.CAN.Send(m) != nil {
			status = StatusBadArgs
		}
	}
	c.reply(c.resp.canStatus, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(status))
	})
	return nil
}

func (c *Console) canRecv(*[]byte) error {
	m, ok := c.cfg.CAN.Recv()
	var flags uint32
	if !ok {
		flags = FlagNone
	}
	if m.Extended {
		flags |= FlagExtended
	}
	if m.RTR {
		flags |= FlagRTR
	}
	c.reply(c.resp.canMsg, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, m.ID)
		protocol.EncodeVLQUint(out, flags)
		protocol.EncodeVLQBytes(out, m.Payload())
	})
	return nil
}

func (c *Console) canStats(*[]byte) error {
	st := c.cfg.CAN.Stats()
	c.reply(c.resp.canStats, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, st.Dropped)
		protocol.EncodeVLQUint(out, st.Errors)
		protocol.EncodeVLQUint(out, st.LastError)
		protocol.EncodeVLQUint(out, st.Reinits)
	})
	return nil
}

func (c *Console) spiTransfer(args *[]byte) error {
	w, err := protocol.DecodeVLQBytes(args)
	if err != nil {
		return err
	}
	var status uint8
	var r []byte
	if len(w) > MaxData {
		status = StatusBadArgs
	} else {
		r = c.buf[:len(w)]
		if c.cfg.SPI.Tx(w, r) != nil {
			status = StatusBadArgs
			r = nil
		}
	}
	c.reply(c.resp.spiResult, func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, uint32(status))
		protocol.EncodeVLQBytes(out, r)
	})
	return nil
}
