package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a driver event for post-mortem analysis
type Event struct {
	Kind   uint8  // Event kind code
	Clock  uint32 // Timebase ticks at event
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event kind codes
const (
	EvtI2CDone     = 1 // transfer finished: v1=slave, v2=state
	EvtI2CBusy     = 2 // transfer rejected, engine owned: v1=slave
	EvtI2CSpurious = 3 // I2C interrupt while idle
	EvtUARTDrop    = 4 // rx byte dropped: v1=total drops
	EvtCANDrop     = 5 // rx frame dropped: v1=total drops
	EvtCANError    = 6 // ROM error callback: v1=error bits
	EvtCANReinit   = 7 // controller reinitialised after bus-off
	EvtTimerIdle   = 8 // counter/timer interrupt with no callback: v1=index
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by board code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventClock    *Timebase
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventClock selects the timebase used to stamp events.
func SetEventClock(tb *Timebase) {
	eventClock = tb
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent stores an event in the ring. Safe to call from interrupt
// handlers; it never blocks.
func RecordEvent(kind uint8, value1, value2 uint32) {
	var clock uint32
	if eventClock != nil {
		clock = eventClock.Ticks()
	}
	cs := Enter()
	idx := eventRingHead
	eventRing[idx] = Event{Kind: kind, Clock: clock, Value1: value1, Value2: value2}
	eventRingHead = (idx + 1) % EventRingSize
	cs.Exit()
}

// Events copies the recorded events, oldest first, into dst and returns
// the number copied.
func Events(dst []Event) int {
	cs := Enter()
	defer cs.Exit()
	n := 0
	for i := uint8(0); i < EventRingSize && n < len(dst); i++ {
		evt := eventRing[(eventRingHead+i)%EventRingSize]
		if evt.Kind == 0 {
			continue
		}
		dst[n] = evt
		n++
	}
	return n
}

func eventName(kind uint8) string {
	switch kind {
	case EvtI2CDone:
		return "I2C_DONE"
	case EvtI2CBusy:
		return "I2C_BUSY"
	case EvtI2CSpurious:
		return "I2C_SPURIOUS"
	case EvtUARTDrop:
		return "UART_DROP"
	case EvtCANDrop:
		return "CAN_DROP"
	case EvtCANError:
		return "CAN_ERROR"
	case EvtCANReinit:
		return "CAN_REINIT"
	case EvtTimerIdle:
		return "TIMER_IDLE"
	}
	return "UNKNOWN"
}

// DumpEvents writes the event ring through the debug writer.
func DumpEvents() {
	if debugPrintln == nil {
		return
	}
	var events [EventRingSize]Event
	n := Events(events[:])

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range events[:n] {
		debugPrintln("[EVENTS] " + eventName(evt.Kind) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + hex32(evt.Value1) +
			" v2=" + hex32(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// ClearEvents empties the event ring
func ClearEvents() {
	cs := Enter()
	defer cs.Exit()
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
