// Package serial opens the host end of the board's UART link.
package serial

import (
	"fmt"
	"io"
	"time"
)

// BoardBaud is the rate the firmware programs into its UART.
const BoardBaud = 115200

// Port is an open serial line. Flush discards anything the driver has
// buffered in either direction.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

type Config struct {
	Device string // e.g. /dev/ttyUSB0 or COM3
	Baud   int

	// ReadTimeout bounds a single Read; a timed-out Read returns io.EOF
	// with no data. Zero blocks.
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the board firmware expects on device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        BoardBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("serial: nil config")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("serial %s: invalid baud rate %d", c.Device, c.Baud)
	}
	return nil
}
