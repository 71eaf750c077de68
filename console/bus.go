package console

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/gonintendo/gonintendo/mappers"
	"github.com/gonintendo/gonintendo/mos6502"
	"github.com/gonintendo/gonintendo/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	NES_BASE_MEMORY = 0x800 // 2KB built in RAM

	MAX_ADDRESS          = math.MaxUint16
	MEM_SIZE             = MAX_ADDRESS + 1
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MAX_SRAM             = 0x6000
)

const (
	OAMDMA = 0x4014 // Triggers DMA from CPU memory to DMA
	JOY1   = 0x4016
	JOY2   = 0x4017
)

type Bus struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	mapper mappers.Mapper
	ram    []uint8
	ticks  uint64
	pad1   controller
	pad2   controller
}

func New(m mappers.Mapper) *Bus {
	bus := &Bus{mapper: m, ram: make([]uint8, NES_BASE_MEMORY)}

	bus.cpu = mos6502.New(bus)
	bus.ppu = ppu.New(bus)
	bus.ppu.SetMirrorMode(m.MirroringMode())

	w, h := bus.ppu.GetResolution()
	ebiten.SetWindowSize(w*2, h*2) // Start with 2x the screen size
	ebiten.SetWindowTitle("Gintendo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return bus
}

func (b *Bus) MirrorMode() uint8 {
	return b.mapper.MirroringMode()
}

// Layout returns the constant resolution of the NES and is part of
// the ebiten.Game interface. By returning constants here, we will
// force ebiten to scale the display when the window size changes.
func (b *Bus) Layout(w, h int) (int, int) {
	return b.ppu.GetResolution()
}

// Draw updates the displayed ebiten window with the current state of
// the PPU.
func (b *Bus) Draw(screen *ebiten.Image) {
	px := b.ppu.GetPixels()
	w, _ := b.ppu.GetResolution()

	for i, c := range px {
		x, y := i%w, i/w
		screen.Set(x, y, color.RGBA{c[0], c[1], c[2], c[3]})
	}
}

// Update is called by ebiten roughly every 1/60s and drives the
// emulation: it clocks the machine until the PPU closes out a full
// frame, then lets Draw present it. Both run on ebiten's single game
// goroutine, so driving the clock from here rather than a detached
// goroutine is what keeps CPU/PPU access single-threaded per spec.md
// §5 ("the emulator itself does not require internal synchronization
// - the contract is that only one thread calls into the bus at a
// time", and the host should avoid reading the framebuffer mid-frame).
func (b *Bus) Update() error {
	b.pad1.poll()
	for !b.ppu.FrameComplete() {
		b.Clock()
	}
	b.ppu.ClearFrameComplete()
	return nil
}

// TriggerNMI is used by the PPU to signal the CPU that it is in vblank.
func (b *Bus) TriggerNMI() {
	b.cpu.TriggerNMI()
}

// ChrRead is used by the PPU to access CHR-ROM/RAM in the loaded
// Mapper. It's also where an MMC3-style mapper observes PPU address
// bus activity for its scanline IRQ counter.
func (b *Bus) ChrRead(addr uint16) uint8 {
	if irq, ok := b.mapper.(mappers.IRQSource); ok {
		irq.NotifyPPUAddress(addr)
		if irq.IRQPending() {
			b.cpu.IRQ()
			irq.AckIRQ()
		}
	}

	return b.mapper.ChrRead(addr)
}

// InsertCartridge atomically swaps in a new mapper and resets the
// machine, per spec.md §3's "replacing [the cartridge] implicitly
// resets the machine" and §6's insertCartridge(c) host API surface.
func (b *Bus) InsertCartridge(m mappers.Mapper) {
	b.mapper = m
	b.ppu.SetMirrorMode(m.MirroringMode())
	b.Reset()
}

// Reset reinitializes the CPU, PPU and cartridge mapper, zeros work
// RAM, and resets the master clock counter, per spec.md §4.1.
func (b *Bus) Reset() {
	b.cpu.Reset()
	b.ppu.Reset()
	b.mapper.Reset()
	b.ClearMem()
	b.ticks = 0
}

func (b *Bus) Read(addr uint16) uint8 {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		return b.ram[addr&0x7FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		return b.ppu.ReadReg(addr & 0x2007)
	case addr < MAX_IO_REG:
		switch addr {
		case JOY1:
			return b.pad1.read()
		case JOY2:
			return b.pad2.read()
		}
		return 0
	case addr < MAX_SRAM:
		return 0
	case addr <= MAX_ADDRESS:
		return b.mapper.PrgRead(addr)
	}

	panic("should never happen") // hah, prod crashes await!
}

func (b *Bus) ClearMem() {
	b.ram = make([]uint8, len(b.ram))
}

func (b *Bus) Write(addr uint16, val uint8) {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		b.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		b.ppu.WriteReg(addr&0x2007, val)
	case addr < MAX_IO_REG:
		switch addr {
		case OAMDMA:
			base := uint16(val) << 8
			for a := base; a < base+256; a++ {
				b.ppu.WriteReg(ppu.OAMDATA, b.Read(a))
			}

			// 513 cycles normally, 514 if the DMA started on an
			// odd CPU cycle (one extra "put" cycle to align).
			n := 513
			if b.ticks%6 != 0 {
				n = 514
			}
			b.cpu.StallCycles(n)
		case JOY1:
			// Writing $4016 strobes both controller shift
			// registers; $4017 has no write function.
			b.pad1.write(val)
			b.pad2.write(val)
		}
	case addr < MAX_SRAM:
		// nothing for now
	case addr <= MAX_ADDRESS:
		b.mapper.PrgWrite(addr, val)
	}
}

func readAddress(prompt string) uint16 {
	var a uint16
	fmt.Printf(prompt)
	fmt.Scanf("%04x\n", &a)
	return a
}

// Clock advances the master clock by a single PPU dot, ticking the CPU
// every third dot to hold the NES's fixed 3:1 PPU:CPU clock ratio. This
// is the clock() call spec.md §6 names as the host's single-tick API;
// Update and the BIOS console's free-running Run both drive the
// machine by calling it repeatedly.
func (b *Bus) Clock() {
	b.ppu.SetMirrorMode(b.mapper.MirroringMode())
	b.ppu.Tick(1)
	if b.ticks%3 == 0 {
		b.cpu.Tick()
	}
	b.ticks++
}

// Run free-runs the master clock until ctx is cancelled. It's used by
// the BIOS debug console's (R)un command, which has no ebiten game
// loop of its own to synchronize with.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.Clock()
		}
	}
}

func (b *Bus) BIOS(ctx context.Context) {
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	breaks := make(map[uint16]struct{})

	for {
		fmt.Printf("%s\n\n", b.cpu)
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - cleear breakpoints")
		fmt.Println("(R)un - run to completion")
		fmt.Println("(S)step - step the cpu one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)memory - select a memory range to display")
		fmt.Println("S(t)ack - show last 3 items on the stack")
		fmt.Println("(I)instruction - show instruction memory locations")
		fmt.Println("(P)C - set program counter")
		fmt.Println("PP(U) - show PPU status")
		fmt.Println("(Q)uit - shutdown the gintentdo")
		fmt.Printf("Choice: ")

		var in rune
		fmt.Scanf("%c\n", &in)

		switch in {
		case 'b', 'B':
			breaks[readAddress("Breakpoint (eg: ff15): ")] = struct{}{}
		case 'c', 'C':
			breaks = make(map[uint16]struct{})
		case 'p', 'P':
			b.cpu.SetPC(readAddress("Set PC to what address (eg: 0400)?: "))
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func(ctx context.Context) {
				for {
					select {
					case <-sigQuit:
						cancel()
					case <-ctx.Done():
						return
					}
				}
			}(cctx)

			b.Run(cctx)
		case 's', 'S':
			// Step() returns the cycles left to drain after the decode
			// tick it just charged, so the full instruction cost is
			// that plus the decode tick itself.
			c := (b.cpu.Step() + 1) * 3
			b.ppu.Tick(c)
		case 't', 'T':
			fmt.Println()
			i := 0
			for {
				m := b.cpu.StackAddr() + uint16(i)
				fmt.Printf("0x%04x: 0x%02x ", m, b.Read(m))
				if m == 0x01ff || i == 2 {
					break
				}
				i += 1
			}
			fmt.Printf("\n\n")
		case 'i', 'I':
			fmt.Printf("\n%s\n\n", b.cpu.Inst())
		case 'u', 'U':
			fmt.Println(b.ppu)
		case 'e', 'E':
			b.Reset()
		case 'm', 'M':
			fmt.Println()
			low := readAddress("Low address (eg f00d): ")
			high := readAddress("High address (eg beef): ")
			fmt.Println()

			x := 1
			i := low
			for {
				fmt.Printf("0x%04x: 0x%02x ", i, b.Read(i))
				if x%5 == 0 {
					fmt.Println()
				}
				if i == high || i == math.MaxUint16 {
					break
				}
				x += 1
				i += 1
			}
			fmt.Printf("\n\n")
		}
	}
}

// SaveRAM returns the mapper's persistable PRG-RAM, if it has any.
func (b *Bus) SaveRAM() ([]byte, bool) {
	bat, ok := b.mapper.(mappers.Battery)
	if !ok {
		return nil, false
	}
	return bat.SaveRAM(), true
}

// LoadRAM restores previously-saved PRG-RAM into the mapper, if it
// supports battery backing.
func (b *Bus) LoadRAM(data []byte) {
	if bat, ok := b.mapper.(mappers.Battery); ok {
		bat.LoadRAM(data)
	}
}
