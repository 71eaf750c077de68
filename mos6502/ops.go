package mos6502

func (c *CPU) ADC(mode uint8) {
	c.addWithOverflow(c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) AND(mode uint8) {
	c.acc = c.acc & c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) ASL(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc << 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov << 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) BCC(mode uint8) { c.branch(STATUS_FLAG_CARRY, false) }
func (c *CPU) BCS(mode uint8) { c.branch(STATUS_FLAG_CARRY, true) }
func (c *CPU) BEQ(mode uint8) { c.branch(STATUS_FLAG_ZERO, true) }

func (c *CPU) BIT(mode uint8) {
	o := c.Read(c.getOperandAddr(mode))

	c.flagsOff(STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW | STATUS_FLAG_ZERO)
	var flags uint8
	if (o & c.acc) == 0 {
		flags |= STATUS_FLAG_ZERO
	}
	flags |= o & (STATUS_FLAG_NEGATIVE | STATUS_FLAG_OVERFLOW)

	c.flagsOn(flags)
}

func (c *CPU) BMI(mode uint8) { c.branch(STATUS_FLAG_NEGATIVE, true) }
func (c *CPU) BNE(mode uint8) { c.branch(STATUS_FLAG_ZERO, false) }
func (c *CPU) BPL(mode uint8) { c.branch(STATUS_FLAG_NEGATIVE, false) }

func (c *CPU) BRK(mode uint8) {
	// BRK's second byte is a padding/signature byte real software
	// sometimes uses; the return address pushed skips over it.
	c.pushAddress(c.pc + 1)
	c.pushStack(c.status | STATUS_FLAG_BREAK)
	c.pc = c.Read16(INT_BRK)
	c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE)
}

func (c *CPU) BVC(mode uint8) { c.branch(STATUS_FLAG_OVERFLOW, false) }
func (c *CPU) BVS(mode uint8) { c.branch(STATUS_FLAG_OVERFLOW, true) }

func (c *CPU) CLC(mode uint8) { c.flagsOff(STATUS_FLAG_CARRY) }
func (c *CPU) CLD(mode uint8) { c.flagsOff(STATUS_FLAG_DECIMAL) }
func (c *CPU) CLI(mode uint8) { c.flagsOff(STATUS_FLAG_INTERRUPT_DISABLE) }
func (c *CPU) CLV(mode uint8) { c.flagsOff(STATUS_FLAG_OVERFLOW) }

func (c *CPU) CMP(mode uint8) { c.baseCMP(c.acc, c.Read(c.getOperandAddr(mode))) }
func (c *CPU) CPX(mode uint8) { c.baseCMP(c.x, c.Read(c.getOperandAddr(mode))) }
func (c *CPU) CPY(mode uint8) { c.baseCMP(c.y, c.Read(c.getOperandAddr(mode))) }

func (c *CPU) DEC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)-1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) DEX(mode uint8) {
	c.x--
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) DEY(mode uint8) {
	c.y--
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) EOR(mode uint8) {
	c.acc = c.acc ^ c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) INC(mode uint8) {
	a := c.getOperandAddr(mode)
	c.Write(a, c.Read(a)+1)
	c.setNegativeAndZeroFlags(c.Read(a))
}

func (c *CPU) INX(mode uint8) {
	c.x++
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) INY(mode uint8) {
	c.y++
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) JMP(mode uint8) {
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) JSR(mode uint8) {
	c.pushAddress(c.pc + 1) // the 2nd byte of the target address
	c.pc = c.getOperandAddr(mode)
}

func (c *CPU) LDA(mode uint8) {
	c.acc = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) LDX(mode uint8) {
	c.x = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) LDY(mode uint8) {
	c.y = c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) LSR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = c.acc >> 1
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov >> 1
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) NOP(mode uint8) {
	if mode == ABSOLUTE_X {
		c.getOperandAddr(mode) // charges the page-cross cycle
	}
}

func (c *CPU) ORA(mode uint8) {
	c.acc = c.acc | c.Read(c.getOperandAddr(mode))
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PHA(mode uint8) { c.pushStack(c.acc) }

func (c *CPU) PHP(mode uint8) {
	// The 6502 always sets BREAK in the byte it pushes for PHP.
	c.pushStack(c.status | STATUS_FLAG_BREAK)
}

func (c *CPU) PLA(mode uint8) {
	c.acc = c.popStack()
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) PLP(mode uint8) {
	c.status = c.popStack()&^STATUS_FLAG_BREAK | UNUSED_STATUS_FLAG
}

func (c *CPU) ROL(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov<<1 | (c.status & STATUS_FLAG_CARRY)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov<<1 | (c.status & STATUS_FLAG_CARRY)
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&0x80 != 0 {
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) ROR(mode uint8) {
	var ov, nv uint8
	switch mode {
	case ACCUMULATOR:
		ov = c.acc
		c.acc = ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
		nv = c.acc
	default:
		addr := c.getOperandAddr(mode)
		ov = c.Read(addr)
		nv = ov>>1 | ((c.status & STATUS_FLAG_CARRY) << 7)
		c.Write(addr, nv)
	}

	c.flagsOff(STATUS_FLAG_CARRY | STATUS_FLAG_NEGATIVE | STATUS_FLAG_ZERO)
	c.setNegativeAndZeroFlags(nv)
	if ov&STATUS_FLAG_CARRY != 0 { // carry bit of the value before rotation
		c.flagsOn(STATUS_FLAG_CARRY)
	}
}

func (c *CPU) RTI(mode uint8) {
	c.status = c.popStack()
	c.pc = c.popAddress()
}

func (c *CPU) RTS(mode uint8) {
	c.pc = c.popAddress() + 1
}

func (c *CPU) SBC(mode uint8) {
	c.addWithOverflow(^c.Read(c.getOperandAddr(mode)))
}

func (c *CPU) SEC(mode uint8) { c.flagsOn(STATUS_FLAG_CARRY) }
func (c *CPU) SED(mode uint8) { c.flagsOn(STATUS_FLAG_DECIMAL) }
func (c *CPU) SEI(mode uint8) { c.flagsOn(STATUS_FLAG_INTERRUPT_DISABLE) }

func (c *CPU) STA(mode uint8) { c.Write(c.getOperandAddr(mode), c.acc) }
func (c *CPU) STX(mode uint8) { c.Write(c.getOperandAddr(mode), c.x) }
func (c *CPU) STY(mode uint8) { c.Write(c.getOperandAddr(mode), c.y) }

func (c *CPU) TAX(mode uint8) {
	c.x = c.acc
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TAY(mode uint8) {
	c.y = c.acc
	c.setNegativeAndZeroFlags(c.y)
}

func (c *CPU) TSX(mode uint8) {
	c.x = c.sp
	c.setNegativeAndZeroFlags(c.x)
}

func (c *CPU) TXA(mode uint8) {
	c.acc = c.x
	c.setNegativeAndZeroFlags(c.acc)
}

func (c *CPU) TXS(mode uint8) { c.sp = c.x }

func (c *CPU) TYA(mode uint8) {
	c.acc = c.y
	c.setNegativeAndZeroFlags(c.acc)
}

// LAX (undocumented): loads both ACC and X from the same memory read.
// Used by the functional test ROM and by a handful of commercial NES
// games for compact register setup.
func (c *CPU) LAX(mode uint8) {
	v := c.Read(c.getOperandAddr(mode))
	c.acc = v
	c.x = v
	c.setNegativeAndZeroFlags(v)
}

// SAX (undocumented): stores ACC & X, touching no flags.
func (c *CPU) SAX(mode uint8) {
	c.Write(c.getOperandAddr(mode), c.acc&c.x)
}

// DCM (undocumented, aka DCP): decrements memory then compares ACC
// against the new value, folding DEC/CMP into one read-modify-write.
func (c *CPU) DCM(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.Read(a) - 1
	c.Write(a, v)
	c.baseCMP(c.acc, v)
}

// ISB (undocumented, aka ISC): increments memory then subtracts it
// from ACC with carry, folding INC/SBC into one read-modify-write.
func (c *CPU) ISB(mode uint8) {
	a := c.getOperandAddr(mode)
	v := c.Read(a) + 1
	c.Write(a, v)
	c.addWithOverflow(^v)
}
