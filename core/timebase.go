package core

// TickSource is a free-running 32-bit hardware counter.
type TickSource interface {
	Ticks() uint32
}

// Timebase extends a 32-bit counter to 64 bits. Now must be called at least
// once per counter wrap; the board does this from the counter's match
// interrupt.
type Timebase struct {
	src  TickSource
	freq uint32
	last uint32
	high uint32
}

// NewTimebase returns a timebase over src counting at freq Hz.
func NewTimebase(src TickSource, freq uint32) *Timebase {
	return &Timebase{src: src, freq: freq, last: src.Ticks()}
}

// Now returns the 64-bit tick count.
func (t *Timebase) Now() uint64 {
	cs := Enter()
	defer cs.Exit()
	ticks := t.src.Ticks()
	if ticks < t.last {
		t.high++
	}
	t.last = ticks
	return uint64(t.high)<<32 | uint64(ticks)
}

// Ticks returns the low 32 bits, as used by the scheduler.
func (t *Timebase) Ticks() uint32 {
	return uint32(t.Now())
}

// Micros returns the time since boot in microseconds.
func (t *Timebase) Micros() uint64 {
	now := t.Now()
	if t.freq == 1000000 {
		return now
	}
	f := uint64(t.freq)
	return now/f*1000000 + now%f*1000000/f
}

// Freq returns the tick frequency in Hz.
func (t *Timebase) Freq() uint32 {
	return t.freq
}

// FromMicros converts microseconds to ticks.
func (t *Timebase) FromMicros(us uint32) uint32 {
	return uint32(uint64(us) * uint64(t.freq) / 1000000)
}

// ToMicros converts ticks to microseconds.
func (t *Timebase) ToMicros(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / uint64(t.freq))
}
