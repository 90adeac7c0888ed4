package protocol

import "lpcbsp/core"

// CommandHandler runs one decoded command. args starts just past the
// command id; the handler consumes its own arguments.
type CommandHandler func(cmd uint16, args *[]byte) error

// TransportStats counts receive-side framing events.
type TransportStats struct {
	Frames  uint32 // frames accepted in sequence
	Retries uint32 // valid frames with an unexpected sequence
	Bad     uint32 // length, sequence byte, sync or CRC failures
	Resets  uint32 // host restarted its sequence at 0x10
}

// Transport is the board side of the link. It is driven from the console
// loop, never from interrupt context.
type Transport struct {
	synced  core.Bool
	next    core.Uint32
	output  OutputBuffer
	handler CommandHandler
	onReset func()
	onFlush func()

	frames  core.Uint32
	retries core.Uint32
	bad     core.Uint32
	resets  core.Uint32
}

func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	t := &Transport{output: output, handler: handler}
	t.synced.Store(true)
	t.next.Store(Dest)
	return t
}

// Receive frames and dispatches what input holds, then pops the bytes it
// consumed. A partial frame is left for the next call.
func (t *Transport) Receive(input InputBuffer) {
	data := input.Data()
	for len(data) > 0 {
		if !t.synced.Load() {
			i := 0
			for i < len(data) && data[i] != Sync {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			t.synced.Store(true)
			t.ackNak()
			continue
		}
		if data[0] == Sync {
			data = data[1:]
			continue
		}
		f, n, res := scan(data)
		if res == scanShort {
			break
		}
		if res == scanBad {
			t.bad.Add(1)
			t.synced.Store(false)
			continue
		}
		data = data[n:]
		t.accept(f)
	}
	if used := input.Available() - len(data); used > 0 {
		input.Pop(used)
	}
}

func (t *Transport) accept(f Frame) {
	want := uint8(t.next.Load())
	if f.Seq == Dest && want != Dest {
		t.next.Store(Dest)
		want = Dest
		t.resets.Add(1)
		if t.onReset != nil {
			t.onReset()
		}
	}
	if f.Seq == want {
		t.next.Store(uint32(NextSeq(want)))
		t.frames.Add(1)
		t.dispatch(f.Payload)
	} else {
		t.retries.Add(1)
	}
	// Answered either way; for an out-of-sequence frame this is the NAK.
	t.ackNak()
}

func (t *Transport) dispatch(payload []byte) {
	for len(payload) > 0 {
		cmd, err := DecodeVLQUint(&payload)
		if err != nil {
			t.synced.Store(false)
			return
		}
		if t.handler == nil {
			return
		}
		if err := t.handler(uint16(cmd), &payload); err != nil {
			return
		}
	}
}

func (t *Transport) ackNak() {
	seq := uint8(t.next.Load())
	crc := CRC16([]byte{FrameMin, seq})
	t.output.Output([]byte{FrameMin, seq, byte(crc >> 8), byte(crc), Sync})
	if t.onFlush != nil {
		t.onFlush()
	}
}

// EncodeFrame writes one frame whose payload is produced by body. Replies
// carry the sequence the board expects next.
func (t *Transport) EncodeFrame(body func(out OutputBuffer)) {
	start := t.output.CurPosition()
	t.output.Output([]byte{0, uint8(t.next.Load())})
	body(t.output)
	n := len(t.output.DataSince(start)) + TrailerSize
	t.output.Update(start, uint8(n))
	crc := CRC16(t.output.DataSince(start))
	t.output.Output([]byte{byte(crc >> 8), byte(crc), Sync})
}

// SendCommand writes a frame holding a single command.
func (t *Transport) SendCommand(cmd uint16, args func(out OutputBuffer)) {
	t.EncodeFrame(func(out OutputBuffer) {
		EncodeVLQUint(out, uint32(cmd))
		if args != nil {
			args(out)
		}
	})
}

// Reset returns the link to its power-on state.
func (t *Transport) Reset() {
	t.synced.Store(true)
	t.next.Store(Dest)
	if t.onReset != nil {
		t.onReset()
	}
}

// SetResetCallback runs cb whenever the host restarts the sequence.
func (t *Transport) SetResetCallback(cb func()) {
	t.onReset = cb
}

// SetFlushCallback runs cb after every ACK/NAK is written.
func (t *Transport) SetFlushCallback(cb func()) {
	t.onFlush = cb
}

func (t *Transport) Synced() bool { return t.synced.Load() }

func (t *Transport) Stats() TransportStats {
	return TransportStats{
		Frames:  t.frames.Load(),
		Retries: t.retries.Load(),
		Bad:     t.bad.Load(),
		Resets:  t.resets.Load(),
	}
}
