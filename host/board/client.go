// Package board is the host's client for the board console: it fetches the
// command dictionary over the link and calls commands by name.
package board

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"lpcbsp/host/serial"
	"lpcbsp/protocol"
)

var ErrNoDictionary = errors.New("board: dictionary not loaded")

const (
	chunkSize     = 40
	maxChunks     = 1000
	replyTimeout  = time.Second
	settleTimeout = 100 * time.Millisecond
)

// Client talks to one board.
type Client struct {
	t       *protocol.HostTransport
	dict    *Dictionary
	timeout time.Duration
	pending []Message
}

// New wraps an open port. The dictionary must be fetched with Identify
// before commands other than identify can be sent.
func New(port io.ReadWriteCloser) *Client {
	boot, err := ParseDictionary([]byte(bootstrap))
	if err != nil {
		panic(err)
	}
	return &Client{
		t:       protocol.NewHostTransport(port),
		dict:    boot,
		timeout: replyTimeout,
	}
}

// Open opens the serial port described by cfg and fetches the dictionary.
func Open(cfg *serial.Config) (*Client, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", cfg.Device, err)
	}
	c := New(port)
	// the board may still be printing its banner
	time.Sleep(settleTimeout)
	c.t.Drain()
	if err := c.Identify(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
	c.t.SetTimeout(d)
}

func (c *Client) Dictionary() *Dictionary { return c.dict }

// Identify fetches the dictionary in chunks and replaces the bootstrap
// entries with it.
func (c *Client) Identify() error {
	var buf bytes.Buffer
	for i := 0; i < maxChunks; i++ {
		off := uint32(buf.Len())
		m, err := c.Call("identify", "identify_response", off, chunkSize)
		if err != nil {
			return fmt.Errorf("identify at %d: %w", off, err)
		}
		if got := m.Uint("offset"); got != off {
			return fmt.Errorf("identify: asked for offset %d, got %d", off, got)
		}
		data := m.Bytes("data")
		if len(data) == 0 {
			break
		}
		buf.Write(data)
	}
	glog.V(1).Infof("dictionary: %d bytes", buf.Len())

	d, err := ParseDictionary(buf.Bytes())
	if err != nil {
		return err
	}
	for _, name := range []string{"identify_response", "identify"} {
		want, _ := c.dict.Lookup(name)
		got, ok := d.Lookup(name)
		if !ok || got.ID != want.ID {
			return fmt.Errorf("identify: board dictionary moved %s", name)
		}
	}
	c.dict = d
	return nil
}

// Send encodes and sends one command without waiting for a reply.
func (c *Client) Send(name string, args ...any) error {
	e, ok := c.dict.Lookup(name)
	if !ok {
		if len(c.dict.Entries()) <= 2 {
			return fmt.Errorf("%s: %w", name, ErrNoDictionary)
		}
		return fmt.Errorf("unknown command %s", name)
	}
	s := protocol.NewScratch()
	if err := e.Encode(s, args...); err != nil {
		return err
	}
	glog.V(1).Infof("send %s %v", name, args)
	return c.t.SendPayload(s.Bytes())
}

// Call sends name and waits for the reply called reply.
func (c *Client) Call(name, reply string, args ...any) (Message, error) {
	if err := c.Send(name, args...); err != nil {
		return Message{}, err
	}
	return c.Wait(reply)
}

// Wait returns the next message called name. Other messages that arrive
// in the meantime are kept for later calls.
func (c *Client) Wait(name string) (Message, error) {
	for i, m := range c.pending {
		if m.Name == name {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return m, nil
		}
	}
	deadline := time.Now().Add(c.timeout)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return Message{}, fmt.Errorf("waiting for %s: %w", name, protocol.ErrTimeout)
		}
		f, err := c.t.ReceiveResponse(left)
		if err != nil {
			return Message{}, fmt.Errorf("waiting for %s: %w", name, err)
		}
		msgs, err := c.decode(f.Payload)
		if err != nil {
			glog.Warningf("decode reply: %v", err)
		}
		var found *Message
		for i := range msgs {
			if found == nil && msgs[i].Name == name {
				found = &msgs[i]
				continue
			}
			c.pending = append(c.pending, msgs[i])
		}
		if found != nil {
			return *found, nil
		}
	}
}

// Pending returns and clears the messages nobody has waited for yet.
func (c *Client) Pending() []Message {
	p := c.pending
	c.pending = nil
	return p
}

func (c *Client) decode(payload []byte) ([]Message, error) {
	var out []Message
	for len(payload) > 0 {
		id, err := protocol.DecodeVLQUint(&payload)
		if err != nil {
			return out, err
		}
		e, ok := c.dict.Entry(uint16(id))
		if !ok {
			return out, fmt.Errorf("unknown reply id %d", id)
		}
		m, err := e.Decode(&payload)
		if err != nil {
			return out, err
		}
		glog.V(2).Infof("recv %s %v", m.Name, m.Params)
		out = append(out, m)
	}
	return out, nil
}

func (c *Client) Close() error {
	return c.t.Close()
}
