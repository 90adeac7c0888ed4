//go:build tinygo && !cortexm

package core

func waitForInterrupt() {}
