// Package i2c implements the interrupt-driven I2C master for the LPC11xx.
//
// A transfer is started from foreground code and advanced one bus event at a
// time by the I2C interrupt handler. Each event is translated into register
// writes by a pure transition table (see Next), so the protocol logic can be
// exercised without hardware.
package i2c

// State is the progress of the current transfer.
type State uint8

const (
	Idle    State = iota // no bus activity yet
	Pending              // START acknowledged, transfer underway
	ACK                  // completed successfully
	NACK                 // slave rejected the address or a data byte
	Error                // contention, arbitration loss, bus fault or start timeout
)

// Terminal reports whether the transfer has finished.
func (s State) Terminal() bool {
	return s >= ACK
}

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Pending:
		return "PENDING"
	case ACK:
		return "ACK"
	case NACK:
		return "NACK"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Status is the value of the STAT register while SI is set.
type Status uint8

const (
	StatusBusError        Status = 0x00
	StatusStart           Status = 0x08 // START transmitted
	StatusRepeatedStart   Status = 0x10 // repeated START transmitted
	StatusAddrWriteACK    Status = 0x18 // SLA+W transmitted, ACK received
	StatusAddrWriteNACK   Status = 0x20 // SLA+W transmitted, NOT ACK received
	StatusDataWriteACK    Status = 0x28 // data transmitted, ACK received
	StatusDataWriteNACK   Status = 0x30 // data transmitted, NOT ACK received
	StatusArbitrationLost Status = 0x38
	StatusAddrReadACK     Status = 0x40 // SLA+R transmitted, ACK received
	StatusAddrReadNACK    Status = 0x48 // SLA+R transmitted, NOT ACK received
	StatusDataReadACK     Status = 0x50 // data received, ACK returned
	StatusDataReadNACK    Status = 0x58 // data received, NOT ACK returned
	StatusNoInfo          Status = 0xf8 // SI not set
)

// Control is a set of CONSET / CONCLR bits.
type Control uint8

const (
	AA   Control = 0x04 // assert acknowledge
	SI   Control = 0x08 // interrupt flag
	STO  Control = 0x10 // STOP
	STA  Control = 0x20 // START
	I2EN Control = 0x40 // interface enable
)
