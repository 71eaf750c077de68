package mappers

import (
	"github.com/gonintendo/gonintendo/nesrom"
	"math"
)

type dummyMapper struct {
	memory []uint8
	MM     uint8 // mirroring mode - tests can set as needed
	ram    []uint8
	irq    bool
}

func (dm *dummyMapper) ID() uint16 {
	return 0
}

func (dm *dummyMapper) Init(r *nesrom.ROM) {
	return
}

func (dm *dummyMapper) Reset() {
	dm.irq = false
}

func (dm *dummyMapper) Name() string {
	return "dummy mapper"
}

func (dm *dummyMapper) PrgRead(addr uint16) uint8 {
	if addr >= 0x6000 && addr < 0x8000 {
		return dm.ReadPRGRAM(addr - 0x6000)
	}
	return dm.memory[addr]
}

func (dm *dummyMapper) PrgWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		dm.WritePRGRAM(addr-0x6000, val)
		return
	}
	dm.memory[addr] = val
}

func (dm *dummyMapper) ChrRead(addr uint16) uint8 {
	return dm.memory[addr]
}

func (dm *dummyMapper) ChrWrite(addr uint16, val uint8) {
	dm.memory[addr] = val
}

func (dm *dummyMapper) MirroringMode() uint8 {
	return dm.MM
}

func (dm *dummyMapper) HasSaveRAM() bool {
	return true
}

// ReadPRGRAM/WritePRGRAM implement the PRGRAM facet so CPU/console
// tests can exercise $6000-$7FFF routing without a real mapper.
func (dm *dummyMapper) ReadPRGRAM(addr uint16) uint8 {
	return dm.ram[addr]
}

func (dm *dummyMapper) WritePRGRAM(addr uint16, val uint8) {
	dm.ram[addr] = val
}

// SaveRAM/LoadRAM implement the Battery facet.
func (dm *dummyMapper) SaveRAM() []byte {
	out := make([]byte, len(dm.ram))
	copy(out, dm.ram)
	return out
}

func (dm *dummyMapper) LoadRAM(data []byte) {
	copy(dm.ram, data)
}

// NotifyPPUAddress/IRQPending/AckIRQ implement the IRQSource facet so
// bus tests can force an IRQ without a real MMC3 ROM.
func (dm *dummyMapper) NotifyPPUAddress(addr uint16) {}

func (dm *dummyMapper) IRQPending() bool {
	return dm.irq
}

func (dm *dummyMapper) AckIRQ() {
	dm.irq = false
}

// SetIRQPending lets tests force IRQSource.IRQPending() to true.
func (dm *dummyMapper) SetIRQPending(p bool) {
	dm.irq = p
}

func (dm *dummyMapper) PRGBank() int { return 0 }
func (dm *dummyMapper) CHRBank() int { return 0 }

// For testing
var Dummy *dummyMapper = &dummyMapper{
	memory: make([]uint8, math.MaxUint16+1),
	ram:    make([]uint8, PRG_RAM_SIZE),
}
