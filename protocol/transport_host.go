package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

var (
	ErrTimeout = errors.New("protocol: timed out")
	ErrClosed  = errors.New("protocol: transport closed")
)

const (
	DefaultTimeout = 2 * time.Second
	sendAttempts   = 3
)

// ResponseHandler sees every non-empty frame from the board, one command
// at a time, before it is queued for ReceiveResponse.
type ResponseHandler func(cmd uint16, args *[]byte) error

// HostTransport is the host side of the link: it numbers outgoing frames,
// waits for each ACK and collects the board's replies.
type HostTransport struct {
	port io.ReadWriteCloser

	mu      sync.Mutex // serialises Send and owns seq
	seq     uint8
	timeout time.Duration

	acks      chan uint8
	responses chan Frame
	handler   ResponseHandler

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewHostTransport starts reading from port.
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:      port,
		seq:       Dest,
		timeout:   DefaultTimeout,
		acks:      make(chan uint8, 4),
		responses: make(chan Frame, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *HostTransport) SetTimeout(d time.Duration) {
	t.mu.Lock()
	t.timeout = d
	t.mu.Unlock()
}

// SetResponseHandler must be called before the board starts replying.
func (t *HostTransport) SetResponseHandler(h ResponseHandler) {
	t.handler = h
}

// Send frames one command and waits for the board to acknowledge it,
// retransmitting on a NAK.
func (t *HostTransport) Send(cmd uint16, args func(out OutputBuffer)) error {
	s := NewScratch()
	EncodeVLQUint(s, uint32(cmd))
	if args != nil {
		args(s)
	}
	return t.SendPayload(s.Bytes())
}

// SendPayload is Send for a payload that is already encoded.
func (t *HostTransport) SendPayload(payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 1; ; attempt++ {
		msg, err := AppendFrame(nil, t.seq, payload)
		if err != nil {
			return err
		}
		if glog.V(2) {
			glog.Infof("tx seq=%#02x % x", t.seq, msg)
		}
		if _, err := t.port.Write(msg); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}

		ack, err := t.waitAck()
		if err != nil {
			return err
		}
		if ack == NextSeq(t.seq) {
			t.seq = ack
			return nil
		}
		glog.V(1).Infof("nak: sent %#02x, board expects %#02x (attempt %d)", t.seq, ack, attempt)
		// Take the board's sequence; after a board reset it wants 0x10.
		t.seq = ack
		if attempt == sendAttempts {
			return fmt.Errorf("frame not accepted after %d attempts", attempt)
		}
	}
}

func (t *HostTransport) waitAck() (uint8, error) {
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case ack := <-t.acks:
		return ack, nil
	case <-timer.C:
		return 0, fmt.Errorf("ack: %w", ErrTimeout)
	case <-t.stop:
		return 0, ErrClosed
	}
}

// ReceiveResponse returns the next reply frame from the board.
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (Frame, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-t.responses:
		return f, nil
	case <-timer.C:
		return Frame{}, fmt.Errorf("response: %w", ErrTimeout)
	case <-t.stop:
		return Frame{}, ErrClosed
	}
}

// Drain discards replies that nobody collected.
func (t *HostTransport) Drain() {
	for {
		select {
		case <-t.responses:
		default:
			return
		}
	}
}

// Sequence returns the sequence the next frame will carry.
func (t *HostTransport) Sequence() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

func (t *HostTransport) readLoop() {
	defer close(t.done)

	var pending []byte
	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			pending = t.process(append(pending, buf[:n]...))
		}
		if err == nil {
			continue
		}
		select {
		case <-t.stop:
			return
		default:
		}
		if errors.Is(err, io.EOF) {
			// serial ports report a read timeout as EOF
			time.Sleep(time.Millisecond)
			continue
		}
		glog.Warningf("read: %v", err)
		return
	}
}

// process frames what it can from data and returns the unconsumed tail.
func (t *HostTransport) process(data []byte) []byte {
	for len(data) > 0 {
		if data[0] == Sync {
			data = data[1:]
			continue
		}
		f, n, res := scan(data)
		if res == scanShort {
			break
		}
		if res == scanBad {
			i := 1
			for i < len(data) && data[i] != Sync {
				i++
			}
			glog.V(1).Infof("resync: dropped %d bytes", i)
			data = data[i:]
			continue
		}
		payload := make([]byte, len(f.Payload))
		copy(payload, f.Payload)
		f.Payload = payload
		data = data[n:]
		t.dispatch(f)
	}
	return append([]byte(nil), data...)
}

func (t *HostTransport) dispatch(f Frame) {
	if len(f.Payload) == 0 {
		glog.V(2).Infof("ack seq=%#02x", f.Seq)
		select {
		case t.acks <- f.Seq:
		default:
			glog.Warningf("ack %#02x dropped", f.Seq)
		}
		return
	}
	glog.V(2).Infof("rx seq=%#02x % x", f.Seq, f.Payload)
	if t.handler != nil {
		args := f.Payload
		for len(args) > 0 {
			cmd, err := DecodeVLQUint(&args)
			if err != nil || t.handler(uint16(cmd), &args) != nil {
				break
			}
		}
	}
	select {
	case t.responses <- f:
	default:
		glog.Warningf("response queue full, dropping oldest")
		select {
		case <-t.responses:
		default:
		}
		t.responses <- f
	}
}

// Close stops the reader and closes the port.
func (t *HostTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.stop)
		err = t.port.Close()
		<-t.done
	})
	return err
}
