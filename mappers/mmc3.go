package mappers

import (
	"github.com/gonintendo/gonintendo/nesrom"
)

// mmc3 implements iNES mapper 4 (MMC3): eight bank-select registers
// (R0-R7) picking 2KiB/1KiB CHR banks and 8KiB PRG banks, plus a
// scanline IRQ counter clocked by PPU address-line A12 rising edges -
// the bus feeds those through NotifyPPUAddress every PPU memory
// fetch. Grounded on andrewthecodertx-go-nes-emulator's mapper4.go.
// https://www.nesdev.org/wiki/MMC3
type mmc3 struct {
	*baseMapper

	prgBanks uint8

	bankSelect uint8
	prgMode    uint8
	chrMode    uint8
	registers  [8]uint8

	mirroring uint8

	prgRAMEnabled      bool
	prgRAMWriteProtect bool

	irqLatch      uint8
	irqCounter    uint8
	irqEnabled    bool
	irqPending    bool
	irqReloadFlag bool

	lastA12 uint16
}

func init() {
	RegisterMapper(4, &mmc3{baseMapper: newBaseMapper(4, "MMC3")})
}

func (m *mmc3) Init(r *nesrom.ROM) {
	m.baseMapper.Init(r)
	m.prgBanks = r.NumPrgBlocks() * 2 // MMC3 banks PRG in 8KiB units
	m.mirroring = r.MirroringMode()
	m.prgRAMEnabled = true
}

// Reset clears the scanline IRQ state. Bank-select registers and
// mirroring are left as last programmed - real MMC3 hardware has no
// dedicated reset behavior for them beyond what the console's RESET
// line leaves alone, and games re-initialize their own bank layout
// during startup anyway.
func (m *mmc3) Reset() {
	m.irqCounter = 0
	m.irqLatch = 0
	m.irqEnabled = false
	m.irqPending = false
	m.irqReloadFlag = false
	m.lastA12 = 0
}

func (m *mmc3) PrgRead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled {
			return m.ReadPRGRAM(addr - 0x6000)
		}
		return 0
	case addr >= 0x8000 && addr < 0xA000:
		return m.rom.PrgRead(m.prgOffset(0, addr-0x8000))
	case addr >= 0xA000 && addr < 0xC000:
		bank := m.registers[7]
		return m.rom.PrgRead(uint32(bank)*0x2000 + uint32(addr-0xA000))
	case addr >= 0xC000 && addr < 0xE000:
		return m.rom.PrgRead(m.prgOffset(1, addr-0xC000))
	default: // 0xE000-0xFFFF, fixed to the last bank
		bank := m.prgBanks - 1
		return m.rom.PrgRead(uint32(bank)*0x2000 + uint32(addr-0xE000))
	}
}

// prgOffset resolves the $8000/$C000 window, which swap roles
// depending on prgMode: window 0 is swappable (register 6) in mode 0
// and fixed to the second-last bank in mode 1, and vice versa for
// window 1 ($C000).
func (m *mmc3) prgOffset(window int, rel uint16) uint32 {
	fixedWindow := 0
	if m.prgMode == 0 {
		fixedWindow = 1
	}

	var bank uint8
	if window == fixedWindow {
		bank = m.prgBanks - 2
	} else {
		bank = m.registers[6]
	}
	return uint32(bank)*0x2000 + uint32(rel)
}

func (m *mmc3) PrgWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.prgRAMEnabled && !m.prgRAMWriteProtect {
			m.WritePRGRAM(addr-0x6000, val)
		}
	case addr >= 0x8000 && addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = val & 0x07
			m.prgMode = (val >> 6) & 0x01
			m.chrMode = (val >> 7) & 0x01
		} else {
			m.registers[m.bankSelect] = val
		}
	case addr >= 0xA000 && addr < 0xC000:
		if addr&1 == 0 {
			if val&1 == 0 {
				m.mirroring = nesrom.MIRROR_VERTICAL
			} else {
				m.mirroring = nesrom.MIRROR_HORIZONTAL
			}
		} else {
			m.prgRAMWriteProtect = val&0x40 != 0
			m.prgRAMEnabled = val&0x80 != 0
		}
	case addr >= 0xC000 && addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = val
		} else {
			m.irqCounter = 0
			m.irqReloadFlag = true
		}
	default: // 0xE000-0xFFFF
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) ChrRead(addr uint16) uint8 {
	return m.rom.ChrRead(m.chrOffset(addr))
}

func (m *mmc3) ChrWrite(addr uint16, val uint8) {
	if m.rom.HasChrRAM() {
		m.rom.ChrWrite(m.chrOffset(addr), val)
	}
}

func (m *mmc3) chrOffset(addr uint16) uint32 {
	// chrMode 0: 2KiB banks at $0000, 1KiB banks at $1000. chrMode 1
	// inverts the two halves.
	a := addr
	if m.chrMode == 1 {
		a ^= 0x1000
	}

	switch {
	case a < 0x0800:
		return uint32(m.registers[0]&0xFE)*0x400 + uint32(a)
	case a < 0x1000:
		return uint32(m.registers[1]&0xFE)*0x400 + uint32(a-0x0800)
	case a < 0x1400:
		return uint32(m.registers[2])*0x400 + uint32(a-0x1000)
	case a < 0x1800:
		return uint32(m.registers[3])*0x400 + uint32(a-0x1400)
	case a < 0x1C00:
		return uint32(m.registers[4])*0x400 + uint32(a-0x1800)
	default:
		return uint32(m.registers[5])*0x400 + uint32(a-0x1C00)
	}
}

func (m *mmc3) MirroringMode() uint8 {
	return m.mirroring
}

// NotifyPPUAddress is called by the bus with every address the PPU
// puts on its bus. MMC3's IRQ counter clocks on a rising edge of A12
// (bit 12), which happens when the PPU switches from fetching
// background tiles ($0xxx/$1xxx pattern data below $1000) to sprite
// pattern data at $1000-$1FFF, or vice versa, once per scanline during
// rendering.
func (m *mmc3) NotifyPPUAddress(addr uint16) {
	a12 := addr & 0x1000
	if a12 != 0 && m.lastA12 == 0 {
		m.clockIRQCounter()
	}
	m.lastA12 = a12
}

func (m *mmc3) clockIRQCounter() {
	if m.irqCounter == 0 || m.irqReloadFlag {
		m.irqCounter = m.irqLatch
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mmc3) IRQPending() bool {
	return m.irqPending
}

func (m *mmc3) AckIRQ() {
	m.irqPending = false
}

func (m *mmc3) PRGBank() int { return int(m.registers[6]) }
func (m *mmc3) CHRBank() int { return int(m.registers[0]) }
