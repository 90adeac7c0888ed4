package core

// IRQ is an NVIC interrupt line number.
type IRQ uint8

// LPC111x / LPC11Cxx peripheral interrupt lines.
const (
	IRQCAN    IRQ = 13
	IRQSSP1   IRQ = 14
	IRQI2C    IRQ = 15
	IRQCT16B0 IRQ = 16
	IRQCT16B1 IRQ = 17
	IRQCT32B0 IRQ = 18
	IRQCT32B1 IRQ = 19
	IRQSSP0   IRQ = 20
	IRQUART   IRQ = 21
	IRQADC    IRQ = 24
	IRQWDT    IRQ = 25
	IRQBOD    IRQ = 26
)

// IRQController is the interrupt controller abstraction that drivers use.
type IRQController interface {
	Enable(irq IRQ)
	Disable(irq IRQ)
	SetPriority(irq IRQ, priority uint8)
	Enabled(irq IRQ) bool
}

// Global singleton used by drivers.
var irqController IRQController

// SetIRQController is called by target-specific code to register its controller.
func SetIRQController(c IRQController) {
	irqController = c
}

// MustIRQ returns the configured controller or panics if missing.
func MustIRQ() IRQController {
	if irqController == nil {
		panic("IRQ controller not configured")
	}
	return irqController
}

func (i IRQ) Enable()                    { MustIRQ().Enable(i) }
func (i IRQ) Disable()                   { MustIRQ().Disable(i) }
func (i IRQ) SetPriority(priority uint8) { MustIRQ().SetPriority(i, priority) }
func (i IRQ) Enabled() bool              { return MustIRQ().Enabled(i) }
