//go:build tinygo && cortexm

package core

import "device/arm"

func waitForInterrupt() {
	arm.Asm("wfi")
}
