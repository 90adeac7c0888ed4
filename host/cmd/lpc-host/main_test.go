package main

import (
	"bytes"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcbsp/console"
	"lpcbsp/host/board"
	"lpcbsp/protocol"
)

type uart struct{}

func (uart) Dropped() uint32 { return 9 }

func newClient(t *testing.T) *board.Client {
	t.Helper()
	out := protocol.NewScratch()
	con := console.New(out, console.Config{Version: "lpc-host-test", UART: uart{}})
	hostEnd, boardEnd := net.Pipe()
	go func() {
		in := protocol.NewRing(256)
		buf := make([]byte, 64)
		for {
			n, err := boardEnd.Read(buf)
			if err != nil {
				return
			}
			in.Write(buf[:n])
			out.Reset()
			con.Receive(in)
			if len(out.Bytes()) == 0 {
				continue
			}
			if _, err := boardEnd.Write(out.Bytes()); err != nil {
				return
			}
		}
	}()
	c := board.New(hostEnd)
	t.Cleanup(func() {
		c.Close()
		boardEnd.Close()
	})
	require.NoError(t, c.Identify())
	return c
}

func TestREPL(t *testing.T) {
	c := newClient(t)
	in := strings.NewReader("dict\nversion\nuart\n'bogus cmd'\ni2c get 0x20\nquit\nversion\n")
	var out bytes.Buffer
	require.NoError(t, repl(c, in, &out))

	s := out.String()
	assert.Contains(t, s, "[1] identify offset=%u count=%u")
	assert.Contains(t, s, "lpc-host-test")
	assert.Contains(t, s, "dropped: 9")
	assert.Contains(t, s, "unknown command bogus cmd")
	assert.Contains(t, s, "usage: i2c get")
	assert.Equal(t, 1, strings.Count(s, "lpc-host-test\n"), "nothing runs after quit")
}

func TestParseBytes(t *testing.T) {
	b, err := parseBytes([]string{"0x20", "17", "0377"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 17, 0xff}, b)

	_, err = parseBytes([]string{"256"})
	assert.Error(t, err)
}
