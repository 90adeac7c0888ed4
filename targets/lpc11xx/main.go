//go:build lpc11xx

package main

import (
	"lpcbsp/can"
	"lpcbsp/console"
	"lpcbsp/core"
	"lpcbsp/examples/expander"
	"lpcbsp/i2c"
	"lpcbsp/pin"
	"lpcbsp/protocol"
	"lpcbsp/ssp"
	"lpcbsp/syscon"
	"lpcbsp/timer"
	"lpcbsp/uart"
)

const (
	version  = "lpcbsp-lpc11c24"
	baudRate = 115200
	spiRate  = 2400000
	tickFreq = 1000000 // CT32B1 at PCLK/48

	wakePeriod  = 10000 // CT16B0 ticks, 10 ms
	blinkPeriod = 500000
	panelPeriod = 100000
)

var (
	led1 = pin.P1_11
	led2 = pin.P1_10

	serial    *uart.UART
	i2cEngine *i2c.Engine
	canBus    *can.Controller
	clock     *core.Timebase
	sched     *core.Scheduler
)

func main() {
	// Register blocks first; every driver below reaches hardware through
	// these.
	core.SetIRQController(nvic{})
	syscon.SetRegisters(mmio[syscon.Reg](sysconBase))
	pin.SetHardware(pins{})
	timer.SetRegisters(timer.CT16B0, mmio[timer.Reg](ct16b0Base))
	timer.SetRegisters(timer.CT16B1, mmio[timer.Reg](ct16b1Base))
	timer.SetRegisters(timer.CT32B0, mmio[timer.Reg](ct32b0Base))
	timer.SetRegisters(timer.CT32B1, mmio[timer.Reg](ct32b1Base))
	ssp.SetRegisters(ssp.SSP0, mmio[ssp.Reg](ssp0Base))
	ssp.SetRegisters(ssp.SSP1, mmio[ssp.Reg](ssp1Base))

	syscon.Init48MHz()

	led1.Configure(pin.Output, pin.PushPull)
	led2.Configure(pin.Output, pin.PushPull)
	led1.High()
	led2.High()

	// 1 MHz timebase; the match at wrap keeps the 64-bit count current.
	timer.CT32B1.Configure(func() { clock.Now() })
	clock = core.NewTimebase(timer.CT32B1, tickFreq)
	timer.CT32B1.Start(syscon.PCLK/tickFreq-1, 0xffffffff)
	core.SetEventClock(clock)
	sched = core.NewScheduler(clock)

	// CT16B0 only wakes the loop so timers get dispatched while idle.
	timer.CT16B0.Configure(func() {})
	timer.CT16B0.Start(syscon.PCLK/tickFreq-1, wakePeriod)

	pin.P1_7_TXD.Configure(0)
	pin.P1_6_RXD.Configure(0)
	serial = uart.New(uart.Config{Registers: mmio[uart.Reg](uartBase), IRQ: core.IRQUART})
	serial.Configure(baudRate)
	core.SetDebugWriter(func(s string) {
		serial.WriteString(s)
		serial.Send('\n')
	})
	core.SetDebugEnabled(true)
	core.DebugPrintln(version + " start")

	i2cEngine = i2c.New(i2c.Config{Registers: i2cRegs{}, Platform: i2cPlatform{}, IRQ: core.IRQI2C})
	panel, err := expander.New(i2cEngine, expander.DefaultAddress)
	if err != nil {
		core.DebugPrintln("panel: " + err.Error())
		panel = nil
	}

	pin.P0_6_SCK0.Configure(0)
	pin.P0_8_MISO0.Configure(0)
	pin.P0_9_MOSI0.Configure(0)
	if err := ssp.SSP0.Configure(spiRate, 8, 0); err != nil {
		core.DebugPrintln("ssp0: " + err.Error())
	}

	canBus = can.New(can.Config{ROM: newCANROM(), IRQ: core.IRQCAN})
	if err := canBus.Init(can.Rate500k); err != nil {
		core.DebugPrintln("can: " + err.Error())
	}

	out := protocol.NewScratch()
	in := protocol.NewRing(256)
	con := console.New(out, console.Config{
		Version: version,
		Clock:   clock,
		I2C:     i2cEngine,
		UART:    serial,
		CAN:     canBus,
		SPI:     ssp.Device{Port: ssp.SSP0},
	})
	con.Transport().SetResetCallback(func() {
		in.Reset()
		core.ClearEvents()
	})

	heartbeat := &core.Timer{WakeTime: clock.Ticks() + blinkPeriod}
	heartbeat.Handler = func(t *core.Timer) uint8 {
		led2.Toggle()
		t.WakeTime += blinkPeriod
		return core.SF_RESCHEDULE
	}
	sched.Add(heartbeat)
	if panel != nil {
		sched.Add(panelTimer(panel))
	}

	for {
		for in.Free() > 0 {
			b, ok := serial.Recv()
			if !ok {
				break
			}
			in.Put(b)
		}
		if !in.Empty() {
			out.Reset()
			con.Receive(in)
			serial.Write(out.Bytes())
			led1.Toggle()
		}
		if canBus.Poll() {
			led1.Toggle()
		}
		sched.Dispatch()
		// A pending interrupt still wakes WFI with PRIMASK set.
		cs := core.Enter()
		if !serial.RecvAvailable() {
			core.WaitForInterrupt()
		}
		cs.Exit()
	}
}

// panelTimer chases the panel LEDs and reports button presses.
func panelTimer(p *expander.Panel) *core.Timer {
	t := &core.Timer{WakeTime: clock.Ticks() + panelPeriod}
	t.Handler = func(t *core.Timer) uint8 {
		t.WakeTime += panelPeriod
		if err := p.Step(); err != nil {
			core.DebugPrintln("panel: " + err.Error())
			return core.SF_RESCHEDULE
		}
		if b, err := p.Pressed(); err == nil && b != 0 {
			core.DebugPrintln("panel: pressed 0x" + core.Hex8(b))
		}
		return core.SF_RESCHEDULE
	}
	return t
}
