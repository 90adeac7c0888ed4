package sim

import "lpcbsp/pin"

// Pins is the IOCON block and the four GPIO ports.
type Pins struct {
	IOCON map[uint16]uint32
	Ports [4]*GPIOPort
}

func NewPins() *Pins {
	p := &Pins{IOCON: make(map[uint16]uint32)}
	for i := range p.Ports {
		p.Ports[i] = &GPIOPort{}
	}
	return p
}

func (p *Pins) StoreIOCON(offset uint16, value uint32) {
	p.IOCON[offset] = value
}

func (p *Pins) Port(n uint8) pin.Port {
	return p.Ports[n]
}

// GPIOPort holds the pin levels in Data. Input pins read whatever the test
// puts there.
type GPIOPort struct {
	Data      uint32
	Direction uint32
}

func (g *GPIOPort) Load(mask uint32) uint32 {
	return g.Data & mask
}

func (g *GPIOPort) Store(mask, value uint32) {
	g.Data = g.Data&^mask | value&mask
}

func (g *GPIOPort) Dir() uint32 {
	return g.Direction
}

func (g *GPIOPort) SetDir(dir uint32) {
	g.Direction = dir
}
