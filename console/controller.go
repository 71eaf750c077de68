package console

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Button bit ordering for serial shift-out: A, B, Select, Start, Up,
// Down, Left, Right - A first.
const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var keys = []ebiten.Key{
	ebiten.KeyA,     // A
	ebiten.KeyB,     // B
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,    // Up
	ebiten.KeyDown,  // Down
	ebiten.KeyLeft,  // Left
	ebiten.KeyRight, // Right
}

// controller models one NES gamepad port: an 8-bit parallel-load shift
// register fed by a strobe latch. See spec.md §4.5.
type controller struct {
	strobe  bool
	buttons uint8 // host-posted button state, sampled while strobe is high
	shift   uint8 // serial shift register, frozen and shifted while strobe is low
}

// write latches the strobe line. A 0->1 transition continuously
// resamples buttons into shift; the falling edge freezes shift for
// reads to consume serially.
func (c *controller) write(val uint8) {
	strobeHigh := val&0x01 != 0
	if strobeHigh {
		c.shift = c.buttons
	}
	c.strobe = strobeHigh
}

// read returns the next serial bit, with the open-bus sentinel bit 6
// always set. While strobe is high the A-button bit is returned every
// time without shifting; otherwise each read shifts a 1 in at the top.
func (c *controller) read() uint8 {
	if c.strobe {
		return c.buttons&0x01 | 0x40
	}

	ret := c.shift&0x01 | 0x40
	c.shift = (c.shift >> 1) | 0x80
	return ret
}

// poll samples the host keyboard into buttons. Called once per frame
// by the host, not from the CPU read/write path.
func (c *controller) poll() {
	var b uint8
	for i, key := range keys {
		if ebiten.IsKeyPressed(key) {
			b |= 1 << i
		}
	}
	c.buttons = b
}
