package board_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/tester"

	"lpcbsp/can"
	"lpcbsp/console"
	"lpcbsp/core"
	"lpcbsp/host/board"
	"lpcbsp/i2c"
	"lpcbsp/internal/sim"
	"lpcbsp/protocol"
	"lpcbsp/syscon"
)

type serial struct{}

func (serial) Dropped() uint32 { return 3 }

type fixture struct {
	client *board.Client
	dev    *tester.I2CDevice8
	rom    *sim.CANROM
	irq    *sim.IRQController
}

// serve runs the board end of the link the way the firmware main loop
// does: bytes in, console, bytes out.
func serve(conn net.Conn, c *console.Console, out *protocol.Scratch) {
	in := protocol.NewRing(256)
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		in.Write(buf[:n])
		out.Reset()
		c.Receive(in)
		if len(out.Bytes()) > 0 {
			if _, err := conn.Write(out.Bytes()); err != nil {
				return
			}
		}
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{irq: sim.Install()}
	syscon.SetRegisters(sim.NewSyscon())

	bus := sim.NewI2C(f.irq, core.IRQI2C)
	eng := i2c.New(i2c.Config{
		Registers:   bus,
		Platform:    bus,
		IRQ:         core.IRQI2C,
		StartBudget: 64,
		Idle:        bus.Step,
	})
	bus.Attach(eng.HandleInterrupt)
	f.dev = tester.NewI2CDevice8(t, 0x20)
	bus.AddDevice(f.dev)

	f.rom = sim.NewCANROM(f.irq, core.IRQCAN)
	ctl := can.New(can.Config{ROM: f.rom, IRQ: core.IRQCAN, Idle: func() { f.irq.Deliver() }})
	f.irq.Attach(core.IRQCAN, ctl.HandleInterrupt)
	require.NoError(t, ctl.Init(can.Rate125k))

	out := protocol.NewScratch()
	con := console.New(out, console.Config{
		Version: "test-1",
		I2C:     eng,
		UART:    serial{},
		CAN:     ctl,
	})

	hostEnd, boardEnd := net.Pipe()
	go serve(boardEnd, con, out)

	f.client = board.New(hostEnd)
	f.client.SetTimeout(time.Second)
	t.Cleanup(func() {
		f.client.Close()
		boardEnd.Close()
	})
	require.NoError(t, f.client.Identify())
	return f
}

func TestIdentifyFetchesWholeDictionary(t *testing.T) {
	f := newFixture(t)
	d := f.client.Dictionary()

	e, ok := d.Lookup("i2c_read_reg")
	require.True(t, ok)
	assert.Equal(t, "i2c_read_reg addr=%u reg=%u count=%u", e.Format())

	_, ok = d.Lookup("spi_transfer")
	assert.False(t, ok, "board has no SPI configured")

	v, err := f.client.Version()
	require.NoError(t, err)
	assert.Equal(t, "test-1", v)
}

func TestSendBeforeIdentify(t *testing.T) {
	host, boardEnd := net.Pipe()
	defer boardEnd.Close()
	c := board.New(host)
	defer c.Close()

	err := c.Send("get_uptime")
	assert.ErrorIs(t, err, board.ErrNoDictionary)
}

func TestI2CRoundTrip(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.client.I2CWriteReg(0x20, 0x01, 0x42))
	assert.Equal(t, uint8(0x42), f.dev.Registers[0x01])

	f.dev.Registers[0x02] = 0x99
	data, err := f.client.I2CReadReg(0x20, 0x01, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 0x99}, data)

	data, err = f.client.I2CTransfer(0x20, []byte{0x02}, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x99}, data)

	_, err = f.client.I2CReadReg(0x30, 0x00, 1)
	assert.ErrorContains(t, err, "NACK")

	_, err = f.client.I2CReadReg(0x20, 0x00, 100)
	assert.ErrorContains(t, err, "rejected")
}

func TestCANRoundTrip(t *testing.T) {
	f := newFixture(t)

	m := can.Message{ID: 0x123, DLC: 2, Data: [8]byte{0xde, 0xad}}
	require.NoError(t, f.client.CANSend(m))
	require.Len(t, f.rom.Sent, 1)
	assert.Equal(t, uint32(0x123), f.rom.Sent[0].ModeID)

	_, ok, err := f.client.CANRecv()
	require.NoError(t, err)
	assert.False(t, ok)

	f.rom.Inject(0x1000|can.ModeEXT, 7)
	f.irq.Deliver()
	got, ok, err := f.client.CANRecv()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0x1000), got.ID)
	assert.True(t, got.Extended)
	assert.Equal(t, []byte{7}, got.Payload())

	st, err := f.client.CANStats()
	require.NoError(t, err)
	assert.Zero(t, st.Dropped)
}

func TestUARTAndUptime(t *testing.T) {
	f := newFixture(t)

	n, err := f.client.UARTDropped()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)

	up, err := f.client.Uptime()
	require.NoError(t, err)
	assert.Zero(t, up, "no clock configured")
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	core.ClearEvents()
	require.NoError(t, f.client.I2CWriteReg(0x20, 0x00, 0x01))

	evs, err := f.client.Events()
	require.NoError(t, err)
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, uint8(core.EvtI2CDone), last.Kind)
	assert.Equal(t, uint32(0x20), last.Value1)
	assert.Equal(t, uint32(i2c.ACK), last.Value2)
}

func TestParseDictionary(t *testing.T) {
	d, err := board.ParseDictionary([]byte("a\nb x=%i y=%s\n"))
	require.NoError(t, err)
	require.Len(t, d.Entries(), 2)
	e, ok := d.Entry(1)
	require.True(t, ok)
	assert.Equal(t, []board.Param{{Name: "x", Kind: board.KindInt}, {Name: "y", Kind: board.KindString}}, e.Params)

	s := protocol.NewScratch()
	require.NoError(t, e.Encode(s, -5, "hi"))
	args := append([]byte(nil), s.Bytes()...)
	id, err := protocol.DecodeVLQUint(&args)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
	m, err := e.Decode(&args)
	require.NoError(t, err)
	assert.Equal(t, int32(-5), m.Int("x"))
	assert.Equal(t, "hi", m.Text("y"))

	assert.Error(t, e.Encode(s, 1))
	assert.Error(t, e.Encode(s, "no", "hi"))

	for _, bad := range []string{"a x\n", "a x=%f\n", "a\na\n", "a\n\nb\n"} {
		_, err := board.ParseDictionary([]byte(bad))
		assert.Error(t, err, bad)
	}
}
