package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicks struct{ now uint32 }

func (f *fakeTicks) Ticks() uint32 { return f.now }

func TestTimebaseExtendsCounter(t *testing.T) {
	src := &fakeTicks{now: 0xfffffff0}
	tb := NewTimebase(src, 1000000)

	assert.Equal(t, uint64(0xfffffff0), tb.Now())
	src.now = 0x10
	assert.Equal(t, uint64(1)<<32|0x10, tb.Now(), "wrap must carry into the high word")
	assert.Equal(t, uint64(1)<<32|0x10, tb.Micros())
}

func TestTimebaseConversions(t *testing.T) {
	tb := NewTimebase(&fakeTicks{}, 48000000)
	assert.Equal(t, uint32(48000), tb.FromMicros(1000))
	assert.Equal(t, uint32(1000), tb.ToMicros(48000))
}

func TestSchedulerOrderAndReschedule(t *testing.T) {
	src := &fakeTicks{now: 100}
	s := NewScheduler(NewTimebase(src, 1000000))

	var order []string
	mk := func(name string, wake uint32) *Timer {
		return &Timer{WakeTime: wake, Handler: func(*Timer) uint8 {
			order = append(order, name)
			return SF_DONE
		}}
	}
	s.Add(mk("c", 300))
	s.Add(mk("a", 110))
	s.Add(mk("b", 200))

	periodic := &Timer{WakeTime: 150}
	periodic.Handler = func(t *Timer) uint8 {
		order = append(order, "p")
		t.WakeTime += 1000
		return SF_RESCHEDULE
	}
	s.Add(periodic)
	require.Equal(t, 4, s.Pending())

	assert.Equal(t, 0, s.Dispatch())

	src.now = 250
	assert.Equal(t, 3, s.Dispatch())
	assert.Equal(t, []string{"a", "p", "b"}, order)
	assert.Equal(t, 2, s.Pending())

	assert.True(t, s.Cancel(periodic))
	assert.False(t, s.Cancel(periodic))
	src.now = 2000
	s.Dispatch()
	assert.Equal(t, []string{"a", "p", "b", "c"}, order)
}

func TestSchedulerAcrossWrap(t *testing.T) {
	src := &fakeTicks{now: 0xffffff00}
	s := NewScheduler(NewTimebase(src, 1000000))

	fired := false
	s.Add(&Timer{WakeTime: 0x10, Handler: func(*Timer) uint8 {
		fired = true
		return SF_DONE
	}})
	s.Dispatch()
	assert.False(t, fired, "a wake time just past the wrap is in the future")

	src.now = 0x20
	s.Dispatch()
	assert.True(t, fired)
}

func TestEventRing(t *testing.T) {
	ClearEvents()
	SetEventClock(NewTimebase(&fakeTicks{now: 42}, 1000000))
	defer SetEventClock(nil)

	for i := 0; i < EventRingSize+3; i++ {
		RecordEvent(EvtUARTDrop, uint32(i), 0)
	}
	var events [EventRingSize]Event
	n := Events(events[:])
	require.Equal(t, EventRingSize, n)
	assert.Equal(t, uint32(3), events[0].Value1, "oldest surviving event first")
	assert.Equal(t, uint32(42), events[0].Clock)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	DumpEvents()
	assert.Len(t, lines, EventRingSize+2)
	assert.Equal(t, "[EVENTS] UART_DROP clock=42 v1=0x3 v2=0x0", lines[1])
}

func TestStrutil(t *testing.T) {
	assert.Equal(t, "0", Itoa(0))
	assert.Equal(t, "-42", Itoa(-42))
	assert.Equal(t, "4294967295", Utoa(0xffffffff))
	assert.Equal(t, "0x1c1d", hex32(0x1c1d))
	assert.Equal(t, "0a", Hex8(0x0a))
}
