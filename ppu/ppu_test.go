package ppu

import "testing"

type testBus struct {
	nmiTriggered bool
	chr          [0x2000]uint8
}

func (tb *testBus) ChrRead(addr uint16) uint8 {
	return tb.chr[addr]
}

func (tb *testBus) TriggerNMI() {
	tb.nmiTriggered = true
}

func TestWriteRegPPUCTRL(t *testing.T) {
	cases := []struct {
		val   uint8
		wantT uint16
	}{
		// These are cumulative
		{0b11001100, 0b00000000_00000000},
		{0b01010101, 0b00000100_00000000},
		{0b01010111, 0b00001100_00000000},
		{0b01010100, 0b00000000_00000000},
		{0b01010110, 0b00001000_00000000},
	}

	p := New(&testBus{})

	for i, tc := range cases {
		p.WriteReg(PPUCTRL, tc.val)
		if p.t.data != tc.wantT {
			t.Errorf("%d: Got t=%015b wanted %015b", i, p.t.data, tc.wantT)
		}
	}
}

func TestWriteRegPPUSCROLL(t *testing.T) {
	cases := []struct {
		val   uint8
		wantT uint16
		wantX uint8
		wantW uint8
	}{
		// These are cumulative
		{0b11001100, 0b0000000000011001, 0b00000100, 1},
		{0b01010101, 0b0101000101011001, 0b00000100, 0},
		{0b11111111, 0b0101000101011111, 0b00000111, 1},
		{0b00000000, 0b0000000000011111, 0b00000111, 0},
	}

	p := New(&testBus{})
	for i, tc := range cases {
		p.WriteReg(PPUSCROLL, tc.val)
		if p.t.data != tc.wantT || p.x != tc.wantX || p.w != tc.wantW {
			t.Errorf("%d: Got t,x,w=%015b,%03b,%d, wanted %015b,%03b,%d", i, p.t.data, p.x, p.w, tc.wantT, tc.wantX, tc.wantW)
		}
	}
}

func TestWriteRegPPUADDR(t *testing.T) {
	cases := []struct {
		val    uint8
		startT uint16
		wantT  uint16
		wantV  uint16
		wantW  uint8
	}{
		// These are cumulative
		{0b11001100, 0b1000000_00000000, 0b00001100_00000000, 0x0000, 1},
		{0b11001100, 0b00001100_00000000, 0b00001100_11001100, 0b00001100_11001100, 0},
		{0b11111111, 0b00001100_11001100, 0b00111111_11001100, 0b00001100_11001100, 1},
		{0b10001110, 0b00111111_11001100, 0b00111111_10001110, 0b00111111_10001110, 0},
	}

	p := New(&testBus{})

	for i, tc := range cases {
		p.t.data = tc.startT
		p.WriteReg(PPUADDR, tc.val)
		if p.t.data != tc.wantT || p.v.data != tc.wantV || p.w != tc.wantW {
			t.Errorf("%d: Got t,v,w=%015b,%015b,%d,\n\t\t   wanted %015b,%015b,%d", i, p.t.data, p.v.data, p.w, tc.wantT, tc.wantV, tc.wantW)
		}
	}
}

func TestPPUSTATUSReadClearsVBlankAndLatch(t *testing.T) {
	p := New(&testBus{})
	p.setStatus(STATUS_VERTICAL_BLANK, true)
	p.w = 1

	got := p.ReadReg(PPUSTATUS)
	if got&STATUS_VERTICAL_BLANK == 0 {
		t.Errorf("ReadReg(PPUSTATUS) didn't report vblank bit before clearing it")
	}
	if p.registers[PPUSTATUS]&STATUS_VERTICAL_BLANK != 0 {
		t.Errorf("vblank flag still set after ReadReg(PPUSTATUS)")
	}
	if p.w != 0 {
		t.Errorf("write toggle not reset after ReadReg(PPUSTATUS)")
	}
}

func TestOAMDATAWriteIncrementsAddr(t *testing.T) {
	p := New(&testBus{})
	p.WriteReg(OAMADDR, 10)
	p.WriteReg(OAMDATA, 0x42)
	p.WriteReg(OAMDATA, 0x43)

	if p.oamData[10] != 0x42 || p.oamData[11] != 0x43 {
		t.Errorf("oamData[10:12] = %#x,%#x, want 0x42,0x43", p.oamData[10], p.oamData[11])
	}
	if p.oamAddr != 12 {
		t.Errorf("oamAddr = %d, want 12", p.oamAddr)
	}
}

func TestNMIFiresAtScanline241Dot1(t *testing.T) {
	b := &testBus{}
	p := New(b)
	p.WriteReg(PPUCTRL, CTRL_GENERATE_NMI)

	// Pre-render + 240 visible scanlines + one post-render scanline,
	// each 341 dots, lands us right at scanline 241 dot 1.
	p.Tick(341*242 + 2)

	if !b.nmiTriggered {
		t.Errorf("NMI not triggered by scanline 241, dot 1")
	}
}

func TestVBlankClearedAtPreRenderDot1(t *testing.T) {
	p := New(&testBus{})
	p.setStatus(STATUS_VERTICAL_BLANK, true)
	p.scanline, p.scandot = -1, 0

	// The first tick processes dot 0, the second dot 1.
	p.Tick(2)

	if p.registers[PPUSTATUS]&STATUS_VERTICAL_BLANK != 0 {
		t.Errorf("vblank flag still set at pre-render dot 1")
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := New(&testBus{})
	p.write(0x3F00, 0x10)

	if got := p.read(0x3F10); got != 0x10 {
		t.Errorf("read(0x3F10) = %#x, want 0x10 (mirrors 0x3F00)", got)
	}
}

func TestNametableMirroringHorizontal(t *testing.T) {
	p := New(&testBus{})
	p.SetMirrorMode(MIRROR_HORIZONTAL)
	p.write(NAMETABLE_0, 0x55)

	if got := p.read(NAMETABLE_1); got != 0x55 {
		t.Errorf("read(NAMETABLE_1) = %#x, want 0x55 (horizontal mirror of NAMETABLE_0)", got)
	}
}

func TestSpriteEvaluationFindsOverlappingSprites(t *testing.T) {
	p := New(&testBus{})
	p.oamData[0], p.oamData[1], p.oamData[2], p.oamData[3] = 10, 1, 0, 20 // sprite 0 at y=10
	p.oamData[4], p.oamData[5], p.oamData[6], p.oamData[7] = 10, 2, 0, 30 // sprite 1 at y=10

	p.evaluateSprites(15) // within the 8 rows of an 8px-tall sprite starting at y=10

	if p.spriteCount != 2 {
		t.Fatalf("spriteCount = %d, want 2", p.spriteCount)
	}
	if !p.spriteZeroHitPossible {
		t.Errorf("spriteZeroHitPossible = false, want true (sprite 0 is on this line)")
	}
}

func TestSpriteOverflowFlag(t *testing.T) {
	p := New(&testBus{})
	for i := 0; i < 9; i++ {
		p.oamData[i*4] = 5 // all visible on the same line
	}

	p.evaluateSprites(5)

	if p.registers[PPUSTATUS]&STATUS_SPRITE_OVERFLOW == 0 {
		t.Errorf("STATUS_SPRITE_OVERFLOW not set with 9 sprites on one line")
	}
	if p.spriteCount != 8 {
		t.Errorf("spriteCount = %d, want 8 (capped)", p.spriteCount)
	}
}

func TestOddFrameSkipAdvancesScanlineAndSignalsFrameComplete(t *testing.T) {
	p := New(&testBus{})
	p.WriteReg(PPUMASK, MASK_SHOW_BACKGROUND)

	// Frame 0 is even: no dot is skipped, so the full 262*341 dots
	// land us back on the pre-render line, dot 0.
	p.Tick(262 * 341)

	if p.scanline != -1 || p.scandot != 0 {
		t.Fatalf("after frame 0: scanline,scandot = %d,%d, want -1,0", p.scanline, p.scandot)
	}
	if !p.FrameComplete() {
		t.Fatalf("FrameComplete() = false after frame 0's pre-render wrap")
	}
	p.ClearFrameComplete()
	if p.FrameComplete() {
		t.Fatalf("FrameComplete() still true after ClearFrameComplete()")
	}

	// Frame 1 is odd: with rendering enabled, scanline 0's dot 0 is
	// skipped, so it only takes 262*341-1 dots to wrap back around.
	// Before the fix, the skip never advanced p.scanline past the
	// pre-render line at all, so this would hang at -1 forever.
	p.Tick(262*341 - 1)

	if p.scanline != -1 || p.scandot != 0 {
		t.Fatalf("after frame 1: scanline,scandot = %d,%d, want -1,0", p.scanline, p.scandot)
	}
	if !p.FrameComplete() {
		t.Fatalf("FrameComplete() = false after frame 1's pre-render wrap")
	}
}

func TestReverseByte(t *testing.T) {
	if got := reverseByte(0b10000001); got != 0b10000001 {
		t.Errorf("reverseByte(0b10000001) = %08b, want %08b", got, 0b10000001)
	}
	if got := reverseByte(0b11110000); got != 0b00001111 {
		t.Errorf("reverseByte(0b11110000) = %08b, want %08b", got, 0b00001111)
	}
}
