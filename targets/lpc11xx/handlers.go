//go:build lpc11xx

package main

import "lpcbsp/timer"

// Vector table entries. The startup code's table names these symbols.

//export I2C_IRQHandler
func I2C_IRQHandler() {
	i2cEngine.HandleInterrupt()
}

//export UART_IRQHandler
func UART_IRQHandler() {
	serial.HandleInterrupt()
}

//export CAN_IRQHandler
func CAN_IRQHandler() {
	canBus.HandleInterrupt()
}

//export CT16B0_IRQHandler
func CT16B0_IRQHandler() {
	timer.CT16B0.HandleInterrupt()
}

//export CT16B1_IRQHandler
func CT16B1_IRQHandler() {
	timer.CT16B1.HandleInterrupt()
}

//export CT32B0_IRQHandler
func CT32B0_IRQHandler() {
	timer.CT32B0.HandleInterrupt()
}

//export CT32B1_IRQHandler
func CT32B1_IRQHandler() {
	timer.CT32B1.HandleInterrupt()
}
