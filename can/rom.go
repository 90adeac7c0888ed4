package can

// ROMTable is the address of the C_CAN driver table in the LPC11C2x boot ROM.
const ROMTable = 0x1fff334c

// Message object mode bits.
const (
	ModeEXT = 0x20000000
	ModeRTR = 0x40000000
)

// Error bits reported to the error callback.
const (
	ErrorPass = 0x001
	ErrorWarn = 0x002
	ErrorBOFF = 0x004
	ErrorStuf = 0x008
	ErrorForm = 0x010
	ErrorACK  = 0x020
	ErrorBit1 = 0x040
	ErrorBit0 = 0x080
	ErrorCRC  = 0x100
)

// MsgObj mirrors the ROM's CAN_MSG_OBJ.
type MsgObj struct {
	ModeID uint32
	Mask   uint32
	Data   [8]byte
	DLC    uint8
	Obj    uint8
}

// Callbacks are invoked by the ROM from inside ISR.
type Callbacks struct {
	Rx    func(obj uint8)
	Tx    func(obj uint8)
	Error func(info uint32)
}

// ROM is the on-chip C_CAN driver.
type ROM interface {
	InitCAN(timing [2]uint32, isrEnable bool)
	ISR()
	ConfigRxMsgObj(o *MsgObj)
	Receive(o *MsgObj)
	Transmit(o *MsgObj)
	ConfigCallbacks(cb *Callbacks)
}

func toMsgObj(m *Message, obj uint8) MsgObj {
	o := MsgObj{ModeID: m.ID, Data: m.Data, DLC: m.DLC, Obj: obj}
	if m.Extended {
		o.ModeID |= ModeEXT
	}
	if m.RTR {
		o.ModeID |= ModeRTR
	}
	return o
}

func fromMsgObj(o *MsgObj) Message {
	m := Message{
		Extended: o.ModeID&ModeEXT != 0,
		RTR:      o.ModeID&ModeRTR != 0,
		DLC:      o.DLC,
		Data:     o.Data,
	}
	if m.Extended {
		m.ID = o.ModeID & MaxExtendedID
	} else {
		m.ID = o.ModeID & MaxStandardID
	}
	return m
}
