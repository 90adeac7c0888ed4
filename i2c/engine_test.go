package i2c_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers/mcp23017"
	"tinygo.org/x/drivers/tester"

	"lpcbsp/core"
	"lpcbsp/i2c"
	"lpcbsp/internal/sim"
)

type rig struct {
	irq  *sim.IRQController
	bus  *sim.I2C
	eng  *i2c.Engine
	idle func()
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{irq: sim.Install()}
	r.bus = sim.NewI2C(r.irq, core.IRQI2C)
	r.eng = i2c.New(i2c.Config{
		Registers:   r.bus,
		Platform:    r.bus,
		IRQ:         core.IRQI2C,
		StartBudget: 64,
		Idle: func() {
			if r.idle != nil {
				r.idle()
			}
			r.bus.Step()
		},
	})
	r.bus.Attach(r.eng.HandleInterrupt)
	return r
}

func (r *rig) assertReleased(t *testing.T) {
	t.Helper()
	assert.False(t, r.eng.Busy(), "busy flag must be released")
	assert.False(t, r.bus.Clocked(), "clock must be gated off")
	assert.False(t, r.irq.Enabled(core.IRQI2C), "interrupt line must be disabled")
}

func TestWriteTwoBytes(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	r.bus.AddDevice(dev)

	s := r.eng.Transfer(0x22, []byte{0x01, 0x01}, nil)
	require.Equal(t, i2c.ACK, s)
	assert.Equal(t, []i2c.Status{
		i2c.StatusStart,
		i2c.StatusAddrWriteACK,
		i2c.StatusDataWriteACK,
		i2c.StatusDataWriteACK,
	}, r.bus.Trace)
	assert.Equal(t, 1, r.bus.Stops)
	assert.Equal(t, uint8(0x01), dev.Registers[0x01])

	h, l := r.bus.Duty()
	assert.Equal(t, uint16(240), h)
	assert.Equal(t, uint16(240), l)
	r.assertReleased(t)
}

func TestWriteThenReadOneByte(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	dev.Registers[0x01] = 0x5a
	r.bus.AddDevice(dev)

	var buf [1]byte
	s := r.eng.Transfer(0x22, []byte{0x01}, buf[:])
	require.Equal(t, i2c.ACK, s)
	assert.Equal(t, byte(0x5a), buf[0])
	assert.Equal(t, []i2c.Status{
		i2c.StatusStart,
		i2c.StatusAddrWriteACK,
		i2c.StatusDataWriteACK,
		i2c.StatusRepeatedStart,
		i2c.StatusAddrReadACK,
		i2c.StatusDataReadNACK,
	}, r.bus.Trace)
	assert.Equal(t, 1, r.bus.Stops)
	r.assertReleased(t)
}

func TestReadSeveralBytes(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x48)
	copy(dev.Registers[0x10:], []byte{1, 2, 3, 4})
	r.bus.AddDevice(dev)

	buf := make([]byte, 4)
	require.Equal(t, i2c.ACK, r.eng.Transfer(0x48, []byte{0x10}, buf))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	assert.Equal(t, []i2c.Status{
		i2c.StatusDataReadACK,
		i2c.StatusDataReadACK,
		i2c.StatusDataReadACK,
		i2c.StatusDataReadNACK,
	}, r.bus.Trace[5:])
}

func TestReadOnlyTransfer(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	dev.Registers[0], dev.Registers[1] = 0xaa, 0xbb
	r.bus.AddDevice(dev)

	buf := make([]byte, 2)
	require.Equal(t, i2c.ACK, r.eng.Transfer(0x22, nil, buf))
	assert.Equal(t, []byte{0xaa, 0xbb}, buf)
	assert.Equal(t, i2c.StatusAddrReadACK, r.bus.Trace[1])
}

func TestAddressNACK(t *testing.T) {
	r := newRig(t)

	s := r.eng.Transfer(0x30, []byte{0x01}, nil)
	require.Equal(t, i2c.NACK, s)
	assert.LessOrEqual(t, r.bus.Steps, 4)
	assert.Equal(t, 1, r.bus.Stops)
	assert.Equal(t, []i2c.Status{i2c.StatusStart, i2c.StatusAddrWriteNACK}, r.bus.Trace)
	r.assertReleased(t)
}

func TestAddressNACKOnRead(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	dev.Err = i2c.ErrNACK
	r.bus.AddDevice(dev)

	require.Equal(t, i2c.NACK, r.eng.Transfer(0x22, nil, make([]byte, 1)))
	assert.Equal(t, i2c.StatusAddrReadNACK, r.bus.Trace[1])
	assert.Equal(t, 1, r.bus.Stops)
}

func TestDataNACK(t *testing.T) {
	r := newRig(t)
	r.bus.AddDevice(tester.NewI2CDevice8(t, 0x22))
	r.bus.NACKData(0x22)

	require.Equal(t, i2c.NACK, r.eng.Transfer(0x22, []byte{1, 2, 3}, nil))
	assert.Equal(t, i2c.StatusDataWriteNACK, r.bus.Trace[len(r.bus.Trace)-1])
	assert.Equal(t, 1, r.bus.Stops)
}

func TestArbitrationLost(t *testing.T) {
	r := newRig(t)
	r.bus.AddDevice(tester.NewI2CDevice8(t, 0x22))
	r.bus.Inject(i2c.StatusArbitrationLost)

	require.Equal(t, i2c.Error, r.eng.Transfer(0x22, []byte{1}, nil))
	assert.Equal(t, 0, r.bus.Stops)
	r.assertReleased(t)
}

func TestBusErrorStatus(t *testing.T) {
	r := newRig(t)
	r.bus.AddDevice(tester.NewI2CDevice8(t, 0x22))
	r.bus.Inject(i2c.StatusStart, i2c.StatusBusError)

	require.Equal(t, i2c.Error, r.eng.Transfer(0x22, []byte{1}, nil))
	assert.Equal(t, []i2c.Status{i2c.StatusStart, i2c.StatusBusError}, r.bus.Trace)
}

func TestStartTimeout(t *testing.T) {
	r := newRig(t)
	r.bus.NoStart = true

	require.Equal(t, i2c.Error, r.eng.Transfer(0x22, []byte{1}, nil))
	assert.Equal(t, 0, r.bus.Steps)
	assert.Equal(t, 1, r.bus.Stops, "STOP is issued after the start timeout")
	r.assertReleased(t)
}

func TestBusyRejection(t *testing.T) {
	r := newRig(t)
	r.bus.AddDevice(tester.NewI2CDevice8(t, 0x22))

	var nested i2c.State
	var nestedErr error
	touched := -1
	r.idle = func() {
		if touched >= 0 {
			return
		}
		before := r.bus.Accesses
		nested = r.eng.Transfer(0x22, []byte{0x05, 0x06}, nil)
		nestedErr = r.eng.Tx(0x22, []byte{0x05, 0x06}, nil)
		touched = r.bus.Accesses - before
	}

	require.Equal(t, i2c.ACK, r.eng.Transfer(0x22, []byte{0x01, 0x02}, nil))
	assert.Equal(t, i2c.Error, nested)
	assert.ErrorIs(t, nestedErr, i2c.ErrBusy)
	assert.Equal(t, 0, touched, "a rejected transfer must not touch hardware")
	assert.Equal(t, uint32(2), r.eng.Stats().Busy)
	assert.Equal(t, uint32(1), r.eng.Stats().Transfers)
}

func TestEmptyTransferRejected(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, i2c.Error, r.eng.Transfer(0x22, nil, nil))
	assert.Equal(t, 0, r.bus.Accesses)
}

func TestSpuriousInterruptDisablesLine(t *testing.T) {
	r := newRig(t)
	core.IRQI2C.Enable()
	r.eng.HandleInterrupt()
	assert.False(t, r.irq.Enabled(core.IRQI2C))
	assert.Equal(t, 0, r.bus.Accesses)
}

func TestEngineReusable(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	r.bus.AddDevice(dev)

	require.Equal(t, i2c.NACK, r.eng.Transfer(0x23, []byte{1}, nil))
	require.Equal(t, i2c.ACK, r.eng.WriteRegister(0x22, 0x07, 0x99))
	v, s := r.eng.ReadRegister(0x22, 0x07)
	require.Equal(t, i2c.ACK, s)
	assert.Equal(t, uint8(0x99), v)

	st := r.eng.Stats()
	assert.Equal(t, uint32(3), st.Transfers)
	assert.Equal(t, uint32(1), st.NACKs)
	assert.Equal(t, uint32(0), st.Errors)
	assert.Equal(t, 3, r.bus.Resets, "block is reset for every transfer")
}

func TestTxErrors(t *testing.T) {
	r := newRig(t)
	r.bus.AddDevice(tester.NewI2CDevice8(t, 0x22))

	assert.NoError(t, r.eng.Tx(0x22, []byte{1, 2}, nil))
	assert.ErrorIs(t, r.eng.Tx(0x40, []byte{1, 2}, nil), i2c.ErrNACK)

	r.bus.Inject(i2c.StatusArbitrationLost)
	assert.ErrorIs(t, r.eng.Tx(0x22, []byte{1, 2}, nil), i2c.ErrBus)
}

func TestTxRejectsWideAddress(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x22)
	r.bus.AddDevice(dev)

	assert.ErrorIs(t, r.eng.Tx(0x122, []byte{0x05, 0x77}, nil), i2c.ErrAddress)
	assert.ErrorIs(t, r.eng.Tx(0x80, []byte{0x05, 0x77}, nil), i2c.ErrAddress)
	assert.Zero(t, dev.Registers[0x05], "low byte of the address must not be addressed")
	assert.Zero(t, r.bus.Resets, "hardware untouched")
}

func TestMCP23017OverEngine(t *testing.T) {
	r := newRig(t)
	dev := tester.NewI2CDevice8(t, 0x20)
	dev.Registers[0x12] = 0x34
	dev.Registers[0x13] = 0x12
	r.bus.AddDevice(dev)

	expander, err := mcp23017.NewI2C(r.eng, 0x20)
	require.NoError(t, err)

	pins, err := expander.GetPins()
	require.NoError(t, err)
	assert.Equal(t, mcp23017.Pins(0x1234), pins)

	require.NoError(t, expander.SetPins(0xbeef, 0xffff))
	assert.Equal(t, uint8(0xef), dev.Registers[0x12])
	assert.Equal(t, uint8(0xbe), dev.Registers[0x13])

	_, err = mcp23017.NewI2C(r.eng, 0x21)
	assert.ErrorContains(t, err, i2c.ErrNACK.Error())
}
