package mappers

import (
	"github.com/gonintendo/gonintendo/nesrom"
)

// mmc1 implements iNES mapper 1 (MMC1): a 5-bit serial shift register
// feeding four target registers (control, CHR bank 0, CHR bank 1, PRG
// bank), switchable 16KiB/32KiB PRG and 4KiB/8KiB CHR banking, and
// mapper-controlled nametable mirroring (including the one-screen
// modes the iNES header itself can't express).
// Grounded on andrewthecodertx-go-nes-emulator's mapper1.go.
// https://www.nesdev.org/wiki/MMC1
type mmc1 struct {
	*baseMapper

	prgBanks uint8
	chrBanks uint8

	shift      uint8
	shiftCount uint8

	control uint8 // mirroring(2) | prgMode(2) | chrMode(1)
	chrBank0,
	chrBank1,
	prgBank uint8

	prgRAMEnabled bool
}

func init() {
	RegisterMapper(1, &mmc1{baseMapper: newBaseMapper(1, "MMC1")})
}

func (m *mmc1) Init(r *nesrom.ROM) {
	m.baseMapper.Init(r)
	m.prgBanks = r.NumPrgBlocks()
	m.shift = 0x10
	m.control = 0x0C // power-on: PRG mode 3 (fix last bank), CHR mode 0
	m.prgRAMEnabled = true
}

// Reset clears the shift register to its power-on state and sets the
// control register's PRG mode back to 3 (fix last bank); the mirroring
// and CHR-mode bits keep their current values. MMC1's own in-band reset
// (bit 7 set on a $8000-$FFFF write) does the same thing from software;
// this is the console reset line.
func (m *mmc1) Reset() {
	m.shift = 0x10
	m.shiftCount = 0
	m.control |= 0x0C
}

func (m *mmc1) prgMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *mmc1) chrMode() uint8 { return (m.control >> 4) & 0x01 }

func (m *mmc1) PrgRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.ReadPRGRAM(addr - 0x6000)
		}
		return 0
	case addr >= 0x8000 && addr < 0xC000:
		var bank uint8
		switch m.prgMode() {
		case 0, 1:
			bank = m.prgBank &^ 1
		case 2:
			bank = 0
		default: // 3
			bank = m.prgBank
		}
		return m.rom.PrgRead(uint32(bank)*0x4000 + uint32(addr-0x8000))
	default: // 0xC000-0xFFFF
		var bank uint8
		switch m.prgMode() {
		case 0, 1:
			bank = m.prgBank | 1
		case 2:
			bank = m.prgBank
		default: // 3
			bank = m.prgBanks - 1
		}
		return m.rom.PrgRead(uint32(bank)*0x4000 + uint32(addr-0xC000))
	}
}

func (m *mmc1) PrgWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		if m.prgRAMEnabled {
			m.WritePRGRAM(addr-0x6000, val)
		}
		return
	}
	if addr < 0x8000 {
		return
	}

	if val&0x80 != 0 {
		m.shift = 0x10
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	done := m.shiftCount == 4
	m.shift = (m.shift >> 1) | ((val & 1) << 4)
	m.shiftCount++

	if done {
		m.writeRegister(addr, m.shift)
		m.shift = 0x10
		m.shiftCount = 0
	}
}

func (m *mmc1) writeRegister(addr uint16, val uint8) {
	switch {
	case addr < 0xA000:
		m.control = val & 0x1F
	case addr < 0xC000:
		m.chrBank0 = val & 0x1F
	case addr < 0xE000:
		m.chrBank1 = val & 0x1F
	default:
		m.prgBank = val & 0x0F
		m.prgRAMEnabled = val&0x10 == 0
	}
}

func (m *mmc1) ChrRead(addr uint16) uint8 {
	return m.rom.ChrRead(m.chrOffset(addr))
}

func (m *mmc1) ChrWrite(addr uint16, val uint8) {
	if m.rom.HasChrRAM() {
		m.rom.ChrWrite(m.chrOffset(addr), val)
	}
}

func (m *mmc1) chrOffset(addr uint16) uint32 {
	if m.chrMode() == 0 {
		bank := uint32(m.chrBank0 &^ 1)
		return bank*0x1000 + uint32(addr)
	}

	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

// MirroringMode overrides baseMapper's fixed header-derived mirroring:
// MMC1's control register selects it dynamically, including the two
// one-screen modes the iNES header can't express.
func (m *mmc1) MirroringMode() uint8 {
	switch m.control & 0x03 {
	case 0:
		return nesrom.MIRROR_ONE_SCREEN_LO
	case 1:
		return nesrom.MIRROR_ONE_SCREEN_HI
	case 2:
		return nesrom.MIRROR_VERTICAL
	default:
		return nesrom.MIRROR_HORIZONTAL
	}
}
