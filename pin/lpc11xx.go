package pin

// IOCON register offsets.
const (
	ioconPIO2_6        = 0x000
	ioconPIO2_0        = 0x008
	ioconRESET_PIO0_0  = 0x00c
	ioconPIO0_1        = 0x010
	ioconPIO1_8        = 0x014
	ioconPIO0_2        = 0x01c
	ioconPIO2_7        = 0x020
	ioconPIO2_8        = 0x024
	ioconPIO2_1        = 0x028
	ioconPIO0_3        = 0x02c
	ioconPIO0_4        = 0x030
	ioconPIO0_5        = 0x034
	ioconPIO1_9        = 0x038
	ioconPIO3_4        = 0x03c
	ioconPIO2_4        = 0x040
	ioconPIO2_5        = 0x044
	ioconPIO3_5        = 0x048
	ioconPIO0_6        = 0x04c
	ioconPIO0_7        = 0x050
	ioconPIO2_9        = 0x054
	ioconPIO2_10       = 0x058
	ioconPIO2_2        = 0x05c
	ioconPIO0_8        = 0x060
	ioconPIO0_9        = 0x064
	ioconSWCLK_PIO0_10 = 0x068
	ioconPIO1_10       = 0x06c
	ioconPIO2_11       = 0x070
	ioconR_PIO0_11     = 0x074
	ioconR_PIO1_0      = 0x078
	ioconR_PIO1_1      = 0x07c
	ioconR_PIO1_2      = 0x080
	ioconPIO3_0        = 0x084
	ioconPIO3_1        = 0x088
	ioconPIO2_3        = 0x08c
	ioconSWDIO_PIO1_3  = 0x090
	ioconPIO1_4        = 0x094
	ioconPIO1_11       = 0x098
	ioconPIO3_2        = 0x09c
	ioconPIO1_5        = 0x0a0
	ioconPIO1_6        = 0x0a4
	ioconPIO1_7        = 0x0a8
	ioconPIO3_3        = 0x0ac
	ioconSCK_LOC       = 0x0b0
	ioconDSR_LOC       = 0x0b4
	ioconDCD_LOC       = 0x0b8
	ioconRI_LOC        = 0x0bc
	ioconCT16B0_CAP0   = 0x0c0
	ioconSCK1_LOC      = 0x0c4
	ioconMISO1_LOC     = 0x0c8
	ioconMOSI1_LOC     = 0x0cc
	ioconCT32B0_CAP0   = 0x0d0
	ioconRXD_LOC       = 0x0d4
)

func gpio(port, num uint8, iocon uint16, fn Modifier) Gpio {
	return Gpio{Pin: Pin{iocon: iocon, fn: uint32(fn)}, port: port, num: num}
}

func function(iocon uint16, fn Modifier) Pin {
	return Pin{iocon: iocon, fn: uint32(fn)}
}

func routed(iocon uint16, fn Modifier, loc uint16, locVal uint32) Pin {
	return Pin{iocon: iocon, fn: uint32(fn), loc: loc, locVal: locVal}
}

// Port 0
var (
	P0_0  = gpio(0, 0, ioconRESET_PIO0_0, 1)
	P0_1  = gpio(0, 1, ioconPIO0_1, 0)
	P0_2  = gpio(0, 2, ioconPIO0_2, 0)
	P0_3  = gpio(0, 3, ioconPIO0_3, 0)
	P0_4  = gpio(0, 4, ioconPIO0_4, I2CNone)
	P0_5  = gpio(0, 5, ioconPIO0_5, I2CNone)
	P0_6  = gpio(0, 6, ioconPIO0_6, 0)
	P0_7  = gpio(0, 7, ioconPIO0_7, 0)
	P0_8  = gpio(0, 8, ioconPIO0_8, 0)
	P0_9  = gpio(0, 9, ioconPIO0_9, 0)
	P0_10 = gpio(0, 10, ioconSWCLK_PIO0_10, 1)
	P0_11 = gpio(0, 11, ioconR_PIO0_11, 1|Digital)

	P0_0_nRESET      = function(ioconRESET_PIO0_0, 0|PullUp)
	P0_1_CLKOUT      = function(ioconPIO0_1, 1)
	P0_1_CT32B0_MAT2 = function(ioconPIO0_1, 2)
	P0_2_SSEL0       = function(ioconPIO0_2, 1)
	P0_2_CT16B0_CAP0 = routed(ioconPIO0_2, 2, ioconCT16B0_CAP0, 0)
	P0_4_SCL         = function(ioconPIO0_4, 1)
	P0_5_SDA         = function(ioconPIO0_5, 1)
	P0_6_SCK0        = routed(ioconPIO0_6, 2, ioconSCK_LOC, 2)
	P0_7_nCTS        = function(ioconPIO0_7, 1)
	P0_8_MISO0       = function(ioconPIO0_8, 1)
	P0_8_CT16B0_MAT0 = function(ioconPIO0_8, 2)
	P0_9_MOSI0       = function(ioconPIO0_9, 1)
	P0_9_CT16B0_MAT1 = function(ioconPIO0_9, 2)
	P0_10_SWCLK      = function(ioconSWCLK_PIO0_10, 0)
	P0_10_SCK0       = routed(ioconSWCLK_PIO0_10, 2, ioconSCK_LOC, 0)
	P0_11_AD0        = function(ioconR_PIO0_11, 2|Analog)
)

// Port 1
var (
	P1_0  = gpio(1, 0, ioconR_PIO1_0, 1|Digital)
	P1_1  = gpio(1, 1, ioconR_PIO1_1, 1|Digital)
	P1_2  = gpio(1, 2, ioconR_PIO1_2, 1|Digital)
	P1_3  = gpio(1, 3, ioconSWDIO_PIO1_3, 1|Digital)
	P1_4  = gpio(1, 4, ioconPIO1_4, 0|Digital)
	P1_5  = gpio(1, 5, ioconPIO1_5, 0)
	P1_6  = gpio(1, 6, ioconPIO1_6, 0)
	P1_7  = gpio(1, 7, ioconPIO1_7, 0)
	P1_8  = gpio(1, 8, ioconPIO1_8, 0)
	P1_9  = gpio(1, 9, ioconPIO1_9, 0)
	P1_10 = gpio(1, 10, ioconPIO1_10, 0|Digital)
	P1_11 = gpio(1, 11, ioconPIO1_11, 0|Digital)

	P1_0_AD1         = function(ioconR_PIO1_0, 2|Analog)
	P1_1_AD2         = function(ioconR_PIO1_1, 2|Analog)
	P1_2_AD3         = function(ioconR_PIO1_2, 2|Analog)
	P1_3_SWDIO       = function(ioconSWDIO_PIO1_3, 0|Digital)
	P1_4_AD5         = function(ioconPIO1_4, 1|Analog)
	P1_5_nRTS        = function(ioconPIO1_5, 1)
	P1_5_CT32B0_CAP0 = routed(ioconPIO1_5, 2, ioconCT32B0_CAP0, 0)
	P1_6_RXD         = routed(ioconPIO1_6, 1, ioconRXD_LOC, 0)
	P1_6_CT32B0_MAT0 = function(ioconPIO1_6, 2)
	P1_7_TXD         = function(ioconPIO1_7, 1)
	P1_7_CT32B0_MAT1 = function(ioconPIO1_7, 2)
	P1_8_CT16B1_CAP0 = function(ioconPIO1_8, 1)
	P1_9_CT16B1_MAT0 = function(ioconPIO1_9, 1)
	P1_9_MOSI1       = routed(ioconPIO1_9, 2, ioconMOSI1_LOC, 1)
	P1_10_AD6        = function(ioconPIO1_10, 1|Analog)
	P1_10_MISO1      = routed(ioconPIO1_10, 3|Digital, ioconMISO1_LOC, 1)
	P1_11_AD7        = function(ioconPIO1_11, 1|Analog)
)

// Port 2
var (
	P2_0  = gpio(2, 0, ioconPIO2_0, 0)
	P2_1  = gpio(2, 1, ioconPIO2_1, 0)
	P2_2  = gpio(2, 2, ioconPIO2_2, 0)
	P2_3  = gpio(2, 3, ioconPIO2_3, 0)
	P2_4  = gpio(2, 4, ioconPIO2_4, 0)
	P2_5  = gpio(2, 5, ioconPIO2_5, 0)
	P2_6  = gpio(2, 6, ioconPIO2_6, 0)
	P2_7  = gpio(2, 7, ioconPIO2_7, 0)
	P2_8  = gpio(2, 8, ioconPIO2_8, 0)
	P2_9  = gpio(2, 9, ioconPIO2_9, 0)
	P2_10 = gpio(2, 10, ioconPIO2_10, 0)
	P2_11 = gpio(2, 11, ioconPIO2_11, 0)

	P2_0_SSEL1 = function(ioconPIO2_0, 2)
	P2_1_SCK1  = routed(ioconPIO2_1, 2, ioconSCK1_LOC, 0)
	P2_1_nDSR  = routed(ioconPIO2_1, 1, ioconDSR_LOC, 0)
	P2_2_nDCD  = routed(ioconPIO2_2, 1, ioconDCD_LOC, 0)
	P2_2_MISO1 = routed(ioconPIO2_2, 2, ioconMISO1_LOC, 0)
	P2_3_nRI   = routed(ioconPIO2_3, 1, ioconRI_LOC, 0)
	P2_3_MOSI1 = routed(ioconPIO2_3, 2, ioconMOSI1_LOC, 0)
	P2_7_RXD   = routed(ioconPIO2_7, 2, ioconRXD_LOC, 1)
	P2_8_TXD   = function(ioconPIO2_8, 2)
	P2_11_SCK0 = routed(ioconPIO2_11, 1, ioconSCK_LOC, 1)
)

// Port 3
var (
	P3_0 = gpio(3, 0, ioconPIO3_0, 0)
	P3_1 = gpio(3, 1, ioconPIO3_1, 0)
	P3_2 = gpio(3, 2, ioconPIO3_2, 0)
	P3_3 = gpio(3, 3, ioconPIO3_3, 0)
	P3_4 = gpio(3, 4, ioconPIO3_4, 0)
	P3_5 = gpio(3, 5, ioconPIO3_5, 0)
)
