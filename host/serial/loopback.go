package serial

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// LoopbackResult reports one echo run.
type LoopbackResult struct {
	Sent     int
	Received int
	Mismatch int // echoed bytes that differ from what was sent
	Elapsed  time.Duration
}

// Loopback writes n spaces to a board running the UART echo firmware and
// counts what comes back. It returns once all n bytes are echoed or nothing
// has arrived for idle.
func Loopback(p io.ReadWriter, n int, idle time.Duration) (LoopbackResult, error) {
	sent := bytes.Repeat([]byte{' '}, n)
	res := LoopbackResult{Sent: n}

	chunks := make(chan []byte, 64)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		buf := make([]byte, 256)
		for {
			k, err := p.Read(buf)
			if k > 0 {
				select {
				case chunks <- append([]byte(nil), buf[:k]...):
				case <-done:
					return
				}
			}
			switch {
			case err == io.EOF:
				// read timeout
				select {
				case <-done:
					return
				case <-time.After(time.Millisecond):
				}
			case err != nil:
				readErr <- err
				return
			}
		}
	}()

	start := time.Now()
	if _, err := p.Write(sent); err != nil {
		return res, fmt.Errorf("loopback write: %w", err)
	}

	timer := time.NewTimer(idle)
	defer timer.Stop()
	for res.Received < n {
		select {
		case c := <-chunks:
			for _, b := range c {
				if res.Received < n && b != sent[res.Received] {
					res.Mismatch++
				}
				res.Received++
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(idle)
		case err := <-readErr:
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf("loopback read: %w", err)
		case <-timer.C:
			res.Elapsed = time.Since(start)
			return res, nil
		}
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
