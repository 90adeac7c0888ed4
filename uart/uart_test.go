package uart_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpcbsp/core"
	"lpcbsp/internal/sim"
	"lpcbsp/syscon"
	"lpcbsp/uart"
)

func TestDivisors(t *testing.T) {
	tests := []struct {
		rate uint32
		dl   uint16
		fdr  uint8
	}{
		{115200, 26, 0x80},
		{9600, 208, 0x21},
		{500000, 6, 0x10}, // exact divisor, no fractional part
	}
	for _, tt := range tests {
		dl, fdr := uart.Divisors(48000000, tt.rate)
		assert.Equal(t, tt.dl, dl, "rate %d", tt.rate)
		assert.Equal(t, tt.fdr, fdr, "rate %d", tt.rate)
	}
}

type rig struct {
	irq  *sim.IRQController
	regs *sim.UART
	u    *uart.UART
}

func newRig(t *testing.T, cfg uart.Config) *rig {
	t.Helper()
	r := &rig{irq: sim.Install()}
	syscon.SetRegisters(sim.NewSyscon())
	r.regs = sim.NewUART(r.irq, core.IRQUART)
	cfg.Registers = r.regs
	cfg.IRQ = core.IRQUART
	if cfg.Idle == nil {
		cfg.Idle = func() { r.irq.Deliver() }
	}
	r.u = uart.New(cfg)
	r.irq.Attach(core.IRQUART, r.u.HandleInterrupt)
	return r
}

func (r *rig) settle() {
	for r.irq.Deliver() > 0 {
	}
}

func TestConfigure(t *testing.T) {
	r := newRig(t, uart.Config{})
	r.u.Configure(115200)

	dl, fdr := r.regs.Divisor()
	assert.Equal(t, uint16(26), dl)
	assert.Equal(t, uint32(0x80), fdr)
	assert.Equal(t, uint32(0x03), r.regs.Load(uart.LCR), "8N1 with DLAB cleared")
	assert.Equal(t, uint32(0x80), r.regs.Load(uart.TER))
	assert.Equal(t, uint32(0x03), r.regs.Load(uart.IER))
	assert.True(t, r.irq.Enabled(core.IRQUART))
	assert.True(t, syscon.UART.Clocked())
}

func TestInterruptEcho(t *testing.T) {
	r := newRig(t, uart.Config{})
	r.u.Configure(115200)

	r.regs.Inject([]byte("hello")...)
	r.settle()
	require.True(t, r.u.RecvAvailable())

	for {
		b, ok := r.u.Recv()
		if !ok {
			break
		}
		r.u.Send(b)
	}
	r.settle()
	assert.Equal(t, "hello", string(r.regs.Output))
	assert.False(t, r.u.RecvAvailable())
}

func TestReceiveOverflowDrops(t *testing.T) {
	r := newRig(t, uart.Config{RxSize: 4})
	r.u.Configure(115200)
	core.ClearEvents()

	r.regs.Inject([]byte("0123456789")...)
	r.settle()

	buf := make([]byte, 16)
	n, err := r.u.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(buf[:n]), "oldest bytes are kept")
	assert.Equal(t, uint32(6), r.u.Dropped())

	var ev [core.EventRingSize]core.Event
	require.Equal(t, 6, core.Events(ev[:]))
	assert.Equal(t, uint32(6), ev[5].Value1)
}

func TestTransmitBackpressure(t *testing.T) {
	r := newRig(t, uart.Config{TxSize: 2})
	r.u.Configure(115200)

	msg := bytes.Repeat([]byte("abcdefghij"), 4)
	n, err := r.u.Write(msg)
	require.NoError(t, err)
	require.Equal(t, len(msg), n)
	r.settle()

	assert.Equal(t, msg, r.regs.Output, "every byte sent, in order")
	assert.True(t, r.u.SendSpace())
}

func TestWriteString(t *testing.T) {
	r := newRig(t, uart.Config{})
	r.u.Configure(9600)

	_, err := r.u.WriteString("count=1000\r\n")
	require.NoError(t, err)
	require.NoError(t, r.u.WriteByte('!'))
	r.settle()
	assert.Equal(t, "count=1000\r\n!", string(r.regs.Output))
}

func TestPolled(t *testing.T) {
	r := newRig(t, uart.Config{Polled: true})
	r.u.Configure(115200)
	assert.False(t, r.irq.Enabled(core.IRQUART), "polled mode leaves the interrupt off")
	assert.Equal(t, uint32(0), r.regs.Load(uart.IER))

	r.u.Send('x')
	assert.Equal(t, []byte("x"), r.regs.Output)

	r.regs.Inject('y')
	require.True(t, r.u.RecvAvailable())
	b, ok := r.u.Recv()
	require.True(t, ok)
	assert.Equal(t, byte('y'), b)
	_, ok = r.u.Recv()
	assert.False(t, ok)
}

// The board echo test: every received byte goes straight back out.
func TestLoopbackEchoCount(t *testing.T) {
	r := newRig(t, uart.Config{})
	r.u.Configure(115200)

	count := 0
	for i := 0; i < 1000; i++ {
		r.regs.Inject(byte(i))
		r.settle()
		for {
			b, ok := r.u.Recv()
			if !ok {
				break
			}
			r.u.Send(b)
			count++
		}
	}
	r.settle()
	assert.Equal(t, 1000, count)
	assert.Len(t, r.regs.Output, 1000)
	assert.Equal(t, uint32(0), r.u.Dropped())
}
