// Package sim models LPC11xx peripherals on the host so drivers can be
// exercised without hardware. Interrupts are delivered synchronously from
// the driver's idle hook or from an explicit call, one context at a time.
package sim

import "lpcbsp/core"

// IRQController is an in-memory NVIC.
type IRQController struct {
	enabled  uint32
	priority [32]uint8
	handlers [32]func()
	pending  uint32

	Enables  int
	Disables int
}

func NewIRQController() *IRQController {
	return &IRQController{}
}

// Install creates a controller and registers it with core.
func Install() *IRQController {
	c := NewIRQController()
	core.SetIRQController(c)
	return c
}

func (c *IRQController) Enable(irq core.IRQ) {
	c.Enables++
	c.enabled |= 1 << irq
}

func (c *IRQController) Disable(irq core.IRQ) {
	c.Disables++
	c.enabled &^= 1 << irq
}

func (c *IRQController) SetPriority(irq core.IRQ, priority uint8) {
	c.priority[irq] = priority
}

func (c *IRQController) Enabled(irq core.IRQ) bool {
	return c.enabled&(1<<irq) != 0
}

func (c *IRQController) Priority(irq core.IRQ) uint8 {
	return c.priority[irq]
}

// Attach sets the handler run when the line is delivered.
func (c *IRQController) Attach(irq core.IRQ, handler func()) {
	c.handlers[irq] = handler
}

// Raise marks the line pending.
func (c *IRQController) Raise(irq core.IRQ) {
	c.pending |= 1 << irq
}

// Deliver runs the handlers of every pending, enabled line in line order
// and returns how many ran. Lines raised while disabled stay pending.
func (c *IRQController) Deliver() int {
	n := 0
	for irq := core.IRQ(0); irq < 32; irq++ {
		bit := uint32(1) << irq
		if c.pending&bit == 0 || c.enabled&bit == 0 {
			continue
		}
		c.pending &^= bit
		if h := c.handlers[irq]; h != nil {
			h()
			n++
		}
	}
	return n
}
