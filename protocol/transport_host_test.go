package protocol

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// peer is a scripted board on the far end of a pipe. reply returns the
// bytes to send back for each frame received.
type peer struct {
	conn  net.Conn
	reply func(f Frame, n int) []byte

	mu   sync.Mutex
	seen []Frame
}

func newPeer(t *testing.T, reply func(f Frame, n int) []byte) (*HostTransport, *peer) {
	t.Helper()
	hostEnd, boardEnd := net.Pipe()
	p := &peer{conn: boardEnd, reply: reply}
	go p.run()
	h := NewHostTransport(hostEnd)
	t.Cleanup(func() {
		h.Close()
		boardEnd.Close()
	})
	return h, p
}

func (p *peer) run() {
	var pending []byte
	buf := make([]byte, 128)
	for {
		n, err := p.conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)
		for {
			f, size, res := scan(pending)
			if res != scanOK {
				break
			}
			f.Payload = append([]byte(nil), f.Payload...)
			pending = pending[size:]

			p.mu.Lock()
			p.seen = append(p.seen, f)
			count := len(p.seen)
			p.mu.Unlock()

			if out := p.reply(f, count); len(out) > 0 {
				if _, err := p.conn.Write(out); err != nil {
					return
				}
			}
		}
	}
}

func (p *peer) frames() []Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Frame(nil), p.seen...)
}

func ack(seq uint8) []byte {
	f, _ := AppendFrame(nil, seq, nil)
	return f
}

func TestHostSendAdvancesSequence(t *testing.T) {
	h, p := newPeer(t, func(f Frame, _ int) []byte { return ack(NextSeq(f.Seq)) })

	for i := 0; i < 3; i++ {
		if err := h.Send(uint16(i), nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if got := h.Sequence(); got != Dest|3 {
		t.Errorf("Sequence() = %#x", got)
	}
	fs := p.frames()
	if len(fs) != 3 {
		t.Fatalf("peer saw %d frames", len(fs))
	}
	for i, f := range fs {
		if f.Seq != Dest|uint8(i) {
			t.Errorf("frame %d seq %#x", i, f.Seq)
		}
	}
}

func TestHostRetransmitsOnNak(t *testing.T) {
	h, p := newPeer(t, func(f Frame, n int) []byte {
		if n == 1 {
			return ack(f.Seq) // still expecting the same frame
		}
		return ack(NextSeq(f.Seq))
	})

	if err := h.Send(1, func(out OutputBuffer) { EncodeVLQUint(out, 5) }); err != nil {
		t.Fatal(err)
	}
	fs := p.frames()
	if len(fs) != 2 || fs[0].Seq != fs[1].Seq || string(fs[0].Payload) != string(fs[1].Payload) {
		t.Errorf("frames = %+v", fs)
	}
}

func TestHostGivesUpAfterRepeatedNaks(t *testing.T) {
	h, p := newPeer(t, func(f Frame, _ int) []byte { return ack(f.Seq) })
	if err := h.Send(1, nil); err == nil {
		t.Fatal("send succeeded without an ack")
	}
	if len(p.frames()) != sendAttempts {
		t.Errorf("attempts = %d", len(p.frames()))
	}
}

func TestHostResponse(t *testing.T) {
	h, _ := newPeer(t, func(f Frame, _ int) []byte {
		s := NewScratch()
		EncodeVLQUint(s, 77)
		EncodeVLQUint(s, 4242)
		resp, _ := AppendFrame(nil, NextSeq(f.Seq), s.Bytes())
		return append(resp, ack(NextSeq(f.Seq))...)
	})
	var handled []uint16
	var mu sync.Mutex
	h.SetResponseHandler(func(cmd uint16, args *[]byte) error {
		mu.Lock()
		handled = append(handled, cmd)
		mu.Unlock()
		_, err := DecodeVLQUint(args)
		return err
	})

	if err := h.Send(3, nil); err != nil {
		t.Fatal(err)
	}
	f, err := h.ReceiveResponse(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	p := f.Payload
	cmd, _ := DecodeVLQUint(&p)
	v, _ := DecodeVLQUint(&p)
	if cmd != 77 || v != 4242 {
		t.Errorf("response %d %d", cmd, v)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 1 || handled[0] != 77 {
		t.Errorf("handler saw %v", handled)
	}
}

func TestHostResyncsOnGarbage(t *testing.T) {
	h, _ := newPeer(t, func(f Frame, _ int) []byte {
		return append([]byte{0x03, 0x99, 0x00, 0x01, Sync}, ack(NextSeq(f.Seq))...)
	})
	if err := h.Send(1, nil); err != nil {
		t.Fatal(err)
	}
}

func TestHostAckTimeout(t *testing.T) {
	h, _ := newPeer(t, func(Frame, int) []byte { return nil })
	h.SetTimeout(20 * time.Millisecond)
	if err := h.Send(1, nil); !errors.Is(err, ErrTimeout) {
		t.Errorf("Send() = %v, want timeout", err)
	}
	if _, err := h.ReceiveResponse(10 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("ReceiveResponse() = %v, want timeout", err)
	}
}

func TestHostClose(t *testing.T) {
	h, _ := newPeer(t, func(Frame, int) []byte { return nil })
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.ReceiveResponse(time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("ReceiveResponse after Close = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
