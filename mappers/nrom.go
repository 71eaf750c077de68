package mappers

import (
	"github.com/gonintendo/gonintendo/nesrom"
)

// nrom implements iNES mapper 0 (NROM): no bank switching, 16KiB or
// 32KiB of fixed PRG-ROM and a single fixed CHR bank (or CHR-RAM).
// https://www.nesdev.org/wiki/NROM
type nrom struct {
	*baseMapper
	prgMirror bool // true when only one 16KiB PRG bank is present
}

func init() {
	RegisterMapper(0, &nrom{baseMapper: newBaseMapper(0, "NROM")})
}

func (m *nrom) Init(r *nesrom.ROM) {
	m.baseMapper.Init(r)
	m.prgMirror = r.NumPrgBlocks() == 1
}

func (m *nrom) PrgRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.ReadPRGRAM(addr - 0x6000)
	case addr >= 0x8000:
		a := uint32(addr - 0x8000)
		if m.prgMirror {
			a %= nesrom.PRG_BLOCK_SIZE
		}
		return m.rom.PrgRead(a)
	}
	return 0
}

func (m *nrom) PrgWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.WritePRGRAM(addr-0x6000, val)
	}
	// $8000-$FFFF is fixed ROM; NROM has no mapper registers to write.
}

func (m *nrom) ChrRead(addr uint16) uint8 {
	return m.rom.ChrRead(uint32(addr))
}

func (m *nrom) ChrWrite(addr uint16, val uint8) {
	if m.rom.HasChrRAM() {
		m.rom.ChrWrite(uint32(addr), val)
	}
}
