package can

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidID      = errors.New("can: identifier out of range")
	ErrInvalidDLC     = errors.New("can: data length over 8")
	ErrInvalidBitrate = errors.New("can: unsupported bitrate")
)

const (
	MaxStandardID = 0x7ff
	MaxExtendedID = 0x1fffffff
)

// Message is a CAN 2.0 frame.
type Message struct {
	ID       uint32
	Extended bool
	RTR      bool
	DLC      uint8
	Data     [8]byte
}

// Validate checks the identifier width and data length.
func (m Message) Validate() error {
	if m.Extended && m.ID > MaxExtendedID || !m.Extended && m.ID > MaxStandardID {
		return ErrInvalidID
	}
	if m.DLC > 8 {
		return ErrInvalidDLC
	}
	return nil
}

// Payload returns the data bytes covered by DLC.
func (m *Message) Payload() []byte {
	return m.Data[:m.DLC]
}

func (m Message) String() string {
	s := "0x" + strconv.FormatUint(uint64(m.ID), 16)
	if m.Extended {
		s += "x"
	}
	if m.RTR {
		return s + " rtr"
	}
	s += " ["
	for i := uint8(0); i < m.DLC && i < 8; i++ {
		if i > 0 {
			s += " "
		}
		if m.Data[i] < 0x10 {
			s += "0"
		}
		s += strconv.FormatUint(uint64(m.Data[i]), 16)
	}
	return s + "]"
}

// Bitrate is one of the supported bus speeds.
type Bitrate uint8

const (
	Rate100k Bitrate = iota
	Rate125k
	Rate250k
	Rate500k
	Rate1M
)

// timing holds CANCLKDIV and CAN_BTR for each bitrate at 48 MHz.
var timing = [...][2]uint32{
	Rate100k: {0x0, 0x1c1d},
	Rate125k: {0x0, 0x1c17},
	Rate250k: {0x0, 0x1c0b},
	Rate500k: {0x0, 0x1c05},
	Rate1M:   {0x0, 0x1c02},
}

var bitsPerSecond = [...]uint32{
	Rate100k: 100000,
	Rate125k: 125000,
	Rate250k: 250000,
	Rate500k: 500000,
	Rate1M:   1000000,
}

// ParseBitrate maps bits per second to a Bitrate.
func ParseBitrate(bps uint32) (Bitrate, error) {
	for i, v := range bitsPerSecond {
		if v == bps {
			return Bitrate(i), nil
		}
	}
	return 0, ErrInvalidBitrate
}

func (b Bitrate) BitsPerSecond() uint32 {
	if int(b) >= len(bitsPerSecond) {
		return 0
	}
	return bitsPerSecond[b]
}

// Timing returns the ROM init_can configuration words.
func (b Bitrate) Timing() [2]uint32 {
	return timing[b]
}
