//go:build lpc11xx

package main

/*
#include <stdint.h>

typedef struct {
	uint32_t mode_id;
	uint32_t mask;
	uint8_t  data[8];
	uint8_t  dlc;
	uint8_t  msgobj;
} can_msg_obj;

typedef struct {
	void (*rx)(uint8_t obj);
	void (*tx)(uint8_t obj);
	void (*error)(uint32_t info);
	void *canopen[5];
} can_callbacks;

typedef struct {
	void (*init_can)(const uint32_t *timing, uint8_t isr_enable);
	void (*isr)(void);
	void (*config_rxmsgobj)(const can_msg_obj *obj);
	uint8_t (*can_receive)(can_msg_obj *obj);
	void (*can_transmit)(const can_msg_obj *obj);
	void (*config_canopen)(void *cfg);
	void (*canopen_handler)(void);
	void (*config_calb)(const can_callbacks *cb);
} can_rom_table;

void canRxCallback(uint8_t obj);
void canTxCallback(uint8_t obj);
void canErrorCallback(uint32_t info);

static const can_callbacks rom_callbacks = {
	canRxCallback, canTxCallback, canErrorCallback, {0},
};

static void rom_init(const can_rom_table *t, const uint32_t *timing, uint8_t isr) { t->init_can(timing, isr); }
static void rom_isr(const can_rom_table *t) { t->isr(); }
static void rom_config_rx(const can_rom_table *t, const can_msg_obj *o) { t->config_rxmsgobj(o); }
static void rom_receive(const can_rom_table *t, can_msg_obj *o) { t->can_receive(o); }
static void rom_transmit(const can_rom_table *t, const can_msg_obj *o) { t->can_transmit(o); }
static void rom_config_callbacks(const can_rom_table *t) { t->config_calb(&rom_callbacks); }
*/
import "C"

import (
	"unsafe"

	"lpcbsp/can"
)

// canROM calls the C_CAN driver in the LPC11C24 boot ROM. can.MsgObj has
// the ROM's CAN_MSG_OBJ layout and is passed through as is.
type canROM struct {
	table *C.can_rom_table
}

// callbacks the ROM's trampolines forward to; set once by ConfigCallbacks.
var canCallbacks *can.Callbacks

func newCANROM() canROM {
	return canROM{table: (*C.can_rom_table)(unsafe.Pointer(uintptr(can.ROMTable)))}
}

func msgObj(o *can.MsgObj) *C.can_msg_obj {
	return (*C.can_msg_obj)(unsafe.Pointer(o))
}

func (r canROM) InitCAN(timing [2]uint32, isrEnable bool) {
	var isr C.uint8_t
	if isrEnable {
		isr = 1
	}
	C.rom_init(r.table, (*C.uint32_t)(unsafe.Pointer(&timing[0])), isr)
}

func (r canROM) ISR()                         { C.rom_isr(r.table) }
func (r canROM) ConfigRxMsgObj(o *can.MsgObj) { C.rom_config_rx(r.table, msgObj(o)) }
func (r canROM) Receive(o *can.MsgObj)        { C.rom_receive(r.table, msgObj(o)) }
func (r canROM) Transmit(o *can.MsgObj)       { C.rom_transmit(r.table, msgObj(o)) }

func (r canROM) ConfigCallbacks(cb *can.Callbacks) {
	canCallbacks = cb
	C.rom_config_callbacks(r.table)
}

//export canRxCallback
func canRxCallback(obj uint8) {
	if cb := canCallbacks; cb != nil && cb.Rx != nil {
		cb.Rx(obj)
	}
}

//export canTxCallback
func canTxCallback(obj uint8) {
	if cb := canCallbacks; cb != nil && cb.Tx != nil {
		cb.Tx(obj)
	}
}

//export canErrorCallback
func canErrorCallback(info uint32) {
	if cb := canCallbacks; cb != nil && cb.Error != nil {
		cb.Error(info)
	}
}
