package board

import (
	"fmt"

	"lpcbsp/can"
	"lpcbsp/i2c"
)

const statusBadArgs = 0xff

// Uptime returns the board's 64-bit tick count.
func (c *Client) Uptime() (uint64, error) {
	m, err := c.Call("get_uptime", "uptime")
	if err != nil {
		return 0, err
	}
	return uint64(m.Uint("high"))<<32 | uint64(m.Uint("clock")), nil
}

func (c *Client) Version() (string, error) {
	m, err := c.Call("get_version", "version")
	if err != nil {
		return "", err
	}
	return m.Text("version"), nil
}

// Event is one entry of the board's event ring.
type Event struct {
	Kind   uint8
	Clock  uint32
	Value1 uint32
	Value2 uint32
}

// Events returns the board's most recent events, oldest first.
func (c *Client) Events() ([]Event, error) {
	m, err := c.Call("get_events", "events")
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, m.Uint("count"))
	for i := uint32(0); i < m.Uint("count"); i++ {
		e, err := c.Wait("event")
		if err != nil {
			return out, err
		}
		out = append(out, Event{
			Kind:   uint8(e.Uint("kind")),
			Clock:  e.Uint("clock"),
			Value1: e.Uint("v1"),
			Value2: e.Uint("v2"),
		})
	}
	return out, nil
}

func i2cResult(m Message) ([]byte, error) {
	s := m.Uint("status")
	if s == statusBadArgs {
		return nil, fmt.Errorf("i2c %#02x: request rejected", m.Uint("addr"))
	}
	if st := i2c.State(s); st != i2c.ACK {
		return nil, fmt.Errorf("i2c %#02x: %s", m.Uint("addr"), st)
	}
	return m.Bytes("data"), nil
}

// I2CTransfer writes w then reads n bytes from the 7-bit address addr.
func (c *Client) I2CTransfer(addr uint8, w []byte, n int) ([]byte, error) {
	m, err := c.Call("i2c_transfer", "i2c_result", addr, w, n)
	if err != nil {
		return nil, err
	}
	return i2cResult(m)
}

func (c *Client) I2CWriteReg(addr, reg, val uint8) error {
	m, err := c.Call("i2c_write_reg", "i2c_result", addr, reg, val)
	if err != nil {
		return err
	}
	_, err = i2cResult(m)
	return err
}

func (c *Client) I2CReadReg(addr, reg uint8, n int) ([]byte, error) {
	m, err := c.Call("i2c_read_reg", "i2c_result", addr, reg, n)
	if err != nil {
		return nil, err
	}
	return i2cResult(m)
}

// UARTDropped returns the count of bytes the board's UART lost.
func (c *Client) UARTDropped() (uint32, error) {
	m, err := c.Call("uart_stats", "uart_stats_result")
	if err != nil {
		return 0, err
	}
	return m.Uint("dropped"), nil
}

const (
	flagExtended = 1 << 0
	flagRTR      = 1 << 1
	flagNone     = 1 << 7
)

func (c *Client) CANSend(msg can.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	var flags uint8
	if msg.Extended {
		flags |= flagExtended
	}
	if msg.RTR {
		flags |= flagRTR
	}
	m, err := c.Call("can_send", "can_status", msg.ID, flags, msg.Payload())
	if err != nil {
		return err
	}
	if m.Uint("status") != 0 {
		return fmt.Errorf("can_send %s: rejected", msg)
	}
	return nil
}

// CANRecv pops one frame from the board's receive queue.
func (c *Client) CANRecv() (can.Message, bool, error) {
	m, err := c.Call("can_recv", "can_message")
	if err != nil {
		return can.Message{}, false, err
	}
	flags := m.Uint("flags")
	if flags&flagNone != 0 {
		return can.Message{}, false, nil
	}
	msg := can.Message{
		ID:       m.Uint("id"),
		Extended: flags&flagExtended != 0,
		RTR:      flags&flagRTR != 0,
	}
	msg.DLC = uint8(copy(msg.Data[:], m.Bytes("data")))
	return msg, true, nil
}

func (c *Client) CANStats() (can.Stats, error) {
	m, err := c.Call("can_stats", "can_stats_result")
	if err != nil {
		return can.Stats{}, err
	}
	return can.Stats{
		Dropped:   m.Uint("dropped"),
		Errors:    m.Uint("errors"),
		LastError: m.Uint("last_error"),
		Reinits:   m.Uint("reinits"),
	}, nil
}

// SPITransfer clocks w out of the board's SPI port and returns what came
// back.
func (c *Client) SPITransfer(w []byte) ([]byte, error) {
	m, err := c.Call("spi_transfer", "spi_result", w)
	if err != nil {
		return nil, err
	}
	if m.Uint("status") != 0 {
		return nil, fmt.Errorf("spi_transfer: rejected")
	}
	return m.Bytes("data"), nil
}
