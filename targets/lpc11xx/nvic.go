//go:build lpc11xx

package main

import "lpcbsp/core"

const (
	nvicISER = 0xe000e100
	nvicICER = 0xe000e180
	nvicIPR  = 0xe000e400
)

// nvic is the Cortex-M0 interrupt controller. The M0 implements the top two
// priority bits and only word access to IPR.
type nvic struct{}

func (nvic) Enable(irq core.IRQ) {
	reg32(nvicISER).Set(1 << irq)
}

func (nvic) Disable(irq core.IRQ) {
	reg32(nvicICER).Set(1 << irq)
}

func (nvic) Enabled(irq core.IRQ) bool {
	return reg32(nvicISER).Get()&(1<<irq) != 0
}

func (nvic) SetPriority(irq core.IRQ, priority uint8) {
	ipr := reg32(nvicIPR + uintptr(irq/4)*4)
	shift := uint32(irq%4) * 8
	cs := core.Enter()
	ipr.Set(ipr.Get()&^(0xff<<shift) | uint32(priority&0x3)<<(shift+6))
	cs.Exit()
}
