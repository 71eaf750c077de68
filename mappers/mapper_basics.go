// Package mappers implements and registers mappers that are
// referenced numerically by iNES and NES2.0 ROM files.
package mappers

import (
	"errors"
	"fmt"

	"github.com/gonintendo/gonintendo/nesrom"
)

// ErrUnsupportedMapper is returned by Get when a ROM declares a mapper
// id this core has no registered implementation for (spec.md §1's
// supported set: NROM, MMC1, MMC3).
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// A global registry of mappers, keyed by mapper id
var allMappers map[uint16]Mapper = map[uint16]Mapper{}

func RegisterMapper(id uint16, m Mapper) {
	if om, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("Can't re-register mapper id %d. It's used by %q.", id, om.Name()))
	}
	allMappers[id] = m
}

// Get returns a mapper with the specified id or an error if we don't
// have a mapper for that id yet.
func Get(rom *nesrom.ROM) (Mapper, error) {
	id := rom.MapperNum()
	m, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("mapper id %d: %w", id, ErrUnsupportedMapper)
	}

	m.Init(rom)
	return m, nil
}

type Mapper interface {
	ID() uint16
	Init(*nesrom.ROM)
	Reset()
	Name() string
	PrgRead(uint16) uint8   // Read PRG data
	PrgWrite(uint16, uint8) // Write PRG data
	ChrRead(uint16) uint8   // Read CHR data
	ChrWrite(uint16, uint8) // Write CHR data
	MirroringMode() uint8   // Which mirroring mode is tilemap data stored in
	HasSaveRAM() bool       // Whether or not the cartridge exposes Save RAM at 0x6000-0x7FFF
}

// PRGRAM is implemented by mappers that expose battery-backed or
// volatile PRG-RAM in the CPU's $6000-$7FFF window.
type PRGRAM interface {
	ReadPRGRAM(addr uint16) uint8
	WritePRGRAM(addr uint16, val uint8)
}

// Battery is implemented by mappers whose PRG-RAM should be persisted
// across sessions (the iNES battery flag, nesrom.ROM.HasSaveRAM()).
// SaveRAM/LoadRAM are the host-level adapter spec.md §6 calls for.
type Battery interface {
	SaveRAM() []byte
	LoadRAM([]byte)
}

// IRQSource is implemented by mappers that can assert a CPU IRQ from
// PPU address-bus activity - MMC3's scanline counter watches the PPU's
// A12 line for the pattern-table-fetch transition.
type IRQSource interface {
	NotifyPPUAddress(addr uint16)
	IRQPending() bool
	AckIRQ()
}

// BankInspector exposes the mapper's current bank selection, used by
// the BIOS debug console.
type BankInspector interface {
	PRGBank() int
	CHRBank() int
}

const PRG_RAM_SIZE = 0x2000 // 8KiB, the $6000-$7FFF window

type baseMapper struct {
	id     uint16
	rom    *nesrom.ROM
	name   string
	prgRAM []uint8
}

func newBaseMapper(id uint16, name string) *baseMapper {
	return &baseMapper{
		id:     id,
		name:   name,
		prgRAM: make([]uint8, PRG_RAM_SIZE),
	}
}

func (bm *baseMapper) ReadPRGRAM(addr uint16) uint8 {
	return bm.prgRAM[addr]
}

func (bm *baseMapper) WritePRGRAM(addr uint16, val uint8) {
	bm.prgRAM[addr] = val
}

func (bm *baseMapper) SaveRAM() []byte {
	out := make([]byte, len(bm.prgRAM))
	copy(out, bm.prgRAM)
	return out
}

func (bm *baseMapper) LoadRAM(data []byte) {
	copy(bm.prgRAM, data)
}

func (bm *baseMapper) ID() uint16 {
	return bm.id
}

func (bm *baseMapper) String() string {
	return bm.name
}

func (bm *baseMapper) Name() string {
	return bm.name
}

func (bm *baseMapper) Init(r *nesrom.ROM) {
	bm.rom = r
}

func (bm *baseMapper) MirroringMode() uint8 {
	return bm.rom.MirroringMode()
}

func (bm *baseMapper) HasSaveRAM() bool {
	return bm.rom.HasSaveRAM()
}

// Reset is the no-op default: a mapper with no bank-select or shift
// state (NROM) has nothing to restore on the console's reset line.
// PRG-RAM is battery-backed where present and must survive reset, so
// it's deliberately left untouched here too.
func (bm *baseMapper) Reset() {}
