package i2c

// Cursor is the progress of a transfer through its buffers. Only the
// interrupt handler advances it once the transfer has started.
type Cursor struct {
	Slave   uint8  // 7-bit address
	Write   []byte // bytes to send
	Written int    // bytes of Write already loaded into DAT
	ReadLen int    // bytes to receive
	Read    int    // bytes received so far
}

func (c Cursor) writeDone() bool { return c.Written >= len(c.Write) }
func (c Cursor) readDone() bool  { return c.Read >= c.ReadLen }

// Effect is the set of register writes for one bus event. The engine applies
// them in field order: capture DAT, load DAT, CONSET, CONCLR.
type Effect struct {
	Capture bool    // store DAT into the read buffer at the cursor
	Load    bool    // write Data to DAT
	Data    byte    // value for DAT
	Set     Control // CONSET bits
	Clear   Control // CONCLR bits
	State   State   // state after the event
}

type transition func(c Cursor, s State) (Cursor, Effect)

// transitions is indexed by status>>3.
var transitions = [32]transition{
	StatusStart >> 3:           onStart,
	StatusRepeatedStart >> 3:   onRepeatedStart,
	StatusAddrWriteACK >> 3:    onWriteACK,
	StatusAddrWriteNACK >> 3:   onStopNACK,
	StatusDataWriteACK >> 3:    onWriteACK,
	StatusDataWriteNACK >> 3:   onStopNACK,
	StatusArbitrationLost >> 3: onArbitrationLost,
	StatusAddrReadACK >> 3:     onReadAddrACK,
	StatusAddrReadNACK >> 3:    onStopNACK,
	StatusDataReadACK >> 3:     onDataACK,
	StatusDataReadNACK >> 3:    onDataNACK,
}

// Next returns the cursor and register effect for a status code. It has no
// side effects; unknown codes end the transfer with Error.
func Next(status Status, c Cursor, s State) (Cursor, Effect) {
	if status&0x07 == 0 {
		if fn := transitions[status>>3]; fn != nil {
			return fn(c, s)
		}
	}
	return c, Effect{Clear: SI, State: Error}
}

func sla(c Cursor, read bool) byte {
	if read {
		return c.Slave<<1 | 1
	}
	return c.Slave << 1
}

// A read-only transfer addresses the slave for reading from the first START.
func onStart(c Cursor, s State) (Cursor, Effect) {
	return c, Effect{
		Load:  true,
		Data:  sla(c, len(c.Write) == 0),
		Clear: SI | STA,
		State: Pending,
	}
}

func onRepeatedStart(c Cursor, s State) (Cursor, Effect) {
	return c, Effect{Load: true, Data: sla(c, true), Clear: SI | STA, State: s}
}

// onWriteACK loads the next write byte, or turns the bus around for the read
// phase, or finishes a write-only transfer.
func onWriteACK(c Cursor, s State) (Cursor, Effect) {
	switch {
	case !c.writeDone():
		b := c.Write[c.Written]
		c.Written++
		return c, Effect{Load: true, Data: b, Clear: SI, State: s}
	case !c.readDone():
		return c, Effect{Set: STA, Clear: SI, State: s}
	}
	return c, Effect{Set: STO, Clear: SI, State: ACK}
}

func onStopNACK(c Cursor, s State) (Cursor, Effect) {
	return c, Effect{Set: STO, Clear: SI, State: NACK}
}

func onArbitrationLost(c Cursor, s State) (Cursor, Effect) {
	return c, Effect{Clear: SI, State: Error}
}

// The last byte of a read is answered with NOT ACK.
func onReadAddrACK(c Cursor, s State) (Cursor, Effect) {
	if c.ReadLen-c.Read == 1 {
		return c, Effect{Clear: SI | AA, State: s}
	}
	return c, Effect{Set: AA, Clear: SI, State: s}
}

func onDataACK(c Cursor, s State) (Cursor, Effect) {
	e := Effect{Clear: SI, State: s}
	if !c.readDone() {
		e.Capture = true
		c.Read++
	}
	if c.ReadLen-c.Read > 1 {
		e.Set = AA
	} else {
		e.Clear |= AA
	}
	return c, e
}

func onDataNACK(c Cursor, s State) (Cursor, Effect) {
	e := Effect{Set: STO, Clear: SI, State: ACK}
	if !c.readDone() {
		e.Capture = true
		c.Read++
	}
	return c, e
}
