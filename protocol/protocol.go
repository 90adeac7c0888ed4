// Package protocol frames console traffic between the board and a host.
//
// A frame is [len][seq][payload][crc hi][crc lo][0x7e]. len counts the
// whole frame, 5..64 bytes. seq is 0x10|n with n advancing mod 16; the
// receiver answers every frame with an empty frame carrying the sequence it
// expects next. Payloads are a run of VLQ command ids, each followed by its
// arguments.
package protocol

import "errors"

const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64
	PayloadMax  = FrameMax - FrameMin

	Sync    = 0x7e
	Dest    = 0x10
	SeqMask = 0x0f

	posLen = 0
	posSeq = 1

	// OutputMax bounds one pass of board output.
	OutputMax = 512
)

var (
	ErrFrameTooLong = errors.New("protocol: frame over 64 bytes")
	ErrBadFrame     = errors.New("protocol: bad frame")
)

// NextSeq returns the sequence that follows seq.
func NextSeq(seq uint8) uint8 {
	return (seq+1)&SeqMask | Dest
}

// Frame is a received frame with its envelope stripped.
type Frame struct {
	Seq     uint8
	Payload []byte
}

type scanResult uint8

const (
	scanShort scanResult = iota // need more bytes
	scanOK
	scanBad // lost sync
)

// scan checks the frame at the front of data, which must not start with
// Sync. On scanOK, n is the frame's length and f.Payload aliases data.
func scan(data []byte) (f Frame, n int, res scanResult) {
	if len(data) < FrameMin {
		return f, 0, scanShort
	}
	n = int(data[posLen])
	if n < FrameMin || n > FrameMax {
		return f, 0, scanBad
	}
	seq := data[posSeq]
	if seq&^SeqMask != Dest {
		return f, 0, scanBad
	}
	if len(data) < n {
		return f, 0, scanShort
	}
	if data[n-1] != Sync {
		return f, 0, scanBad
	}
	crc := uint16(data[n-3])<<8 | uint16(data[n-2])
	if crc != CRC16(data[:n-TrailerSize]) {
		return f, 0, scanBad
	}
	return Frame{Seq: seq, Payload: data[HeaderSize : n-TrailerSize]}, n, scanOK
}

// AppendFrame appends a complete frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	n := FrameMin + len(payload)
	if n > FrameMax {
		return dst, ErrFrameTooLong
	}
	start := len(dst)
	dst = append(dst, byte(n), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), Sync), nil
}
