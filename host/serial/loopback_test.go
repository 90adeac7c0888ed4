package serial

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo plays the board: it returns every byte it receives, up to limit.
func echo(t *testing.T, limit int, flip bool) net.Conn {
	t.Helper()
	host, board := net.Pipe()
	go func() {
		buf := make([]byte, 64)
		total := 0
		for {
			n, err := board.Read(buf)
			if err != nil {
				return
			}
			if total+n > limit {
				n = limit - total
			}
			total += n
			if n == 0 {
				continue
			}
			out := append([]byte(nil), buf[:n]...)
			if flip && len(out) > 0 {
				out[0] ^= 0xff
			}
			if _, err := board.Write(out); err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() {
		host.Close()
		board.Close()
	})
	return host
}

func TestLoopbackComplete(t *testing.T) {
	res, err := Loopback(echo(t, 1000, false), 1000, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Sent)
	assert.Equal(t, 1000, res.Received)
	assert.Zero(t, res.Mismatch)
}

func TestLoopbackShortEcho(t *testing.T) {
	res, err := Loopback(echo(t, 300, false), 1000, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 300, res.Received)
}

func TestLoopbackCorruption(t *testing.T) {
	res, err := Loopback(echo(t, 100, true), 100, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Received)
	assert.Positive(t, res.Mismatch)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	assert.Equal(t, BoardBaud, cfg.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)

	_, err := Open(&Config{Device: "/dev/null", Baud: 0})
	assert.Error(t, err)
	_, err = Open(nil)
	assert.Error(t, err)
}
