package machine

import "fmt"

// CPU emulates the MOS 6502 core of the machine.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

// Interrupt is the kind of interrupt a collaborator may request.
type Interrupt int

const (
	NMI Interrupt = iota
	IRQ
)

type status struct {
	c bool // carry
	z bool // zero
	i bool // interrupt disable
	d bool // decimal
	b bool // break
	r bool // reserved - always set
	v bool // overflow
	n bool // negative
}

// encode encodes the status to a byte.
func (s *status) encode() byte {
	var res byte
	if s.c {
		res |= (1 << 0)
	}
	if s.z {
		res |= (1 << 1)
	}
	if s.i {
		res |= (1 << 2)
	}
	if s.d {
		res |= (1 << 3)
	}
	if s.b {
		res |= (1 << 4)
	}
	if s.r {
		res |= (1 << 5)
	}
	if s.v {
		res |= (1 << 6)
	}
	if s.n {
		res |= (1 << 7)
	}
	return res
}

// decodeFrom decodes a byte to the status.
func (s *status) decodeFrom(data byte) {
	s.c = (data>>0)&1 == 1
	s.z = (data>>1)&1 == 1
	s.i = (data>>2)&1 == 1
	s.d = (data>>3)&1 == 1
	s.b = (data>>4)&1 == 1
	s.r = (data>>5)&1 == 1
	s.v = (data>>6)&1 == 1
	s.n = (data>>7)&1 == 1
}

type CPU struct {
	p             *status // Processor status flag bits
	a             byte    // Accumulator register
	x             byte    // Index register
	y             byte    // Index register
	pc            uint16  // Program counter
	s             byte    // Stack pointer
	lastExecution string  // For debug
	bus           *Bus
	instructions  []instruction
	nmiPending    bool
	irqPending    bool
}

type instruction struct {
	mnemonic string
	mode     addressingMode
	execute  func(addressingMode, uint16)
	size     uint16
	cycles   int
}

// The decode table: 256 entries indexed by opcode byte. Empty entries are
// illegal opcodes.
func (c *CPU) createInstructions() []instruction {
	return []instruction{
		{"BRK", implied, c.brk, 1, 7},     // 0x00
		{"ORA", indirectX, c.ora, 2, 6},   // 0x01
		{},                                // 0x02
		{},                                // 0x03
		{},                                // 0x04
		{"ORA", zeropage, c.ora, 2, 3},    // 0x05
		{"ASL", zeropage, c.asl, 2, 5},    // 0x06
		{},                                // 0x07
		{"PHP", implied, c.php, 1, 3},     // 0x08
		{"ORA", immediate, c.ora, 2, 2},   // 0x09
		{"ASL", accumulator, c.asl, 1, 2}, // 0x0A
		{},                                // 0x0B
		{},                                // 0x0C
		{"ORA", absolute, c.ora, 3, 4},    // 0x0D
		{"ASL", absolute, c.asl, 3, 6},    // 0x0E
		{},                                // 0x0F
		{"BPL", relative, c.bpl, 2, 2},    // 0x10
		{"ORA", indirectY, c.ora, 2, 5},   // 0x11
		{},                                // 0x12
		{},                                // 0x13
		{},                                // 0x14
		{"ORA", zeropageX, c.ora, 2, 4},   // 0x15
		{"ASL", zeropageX, c.asl, 2, 6},   // 0x16
		{},                                // 0x17
		{"CLC", implied, c.clc, 1, 2},     // 0x18
		{"ORA", absoluteY, c.ora, 3, 4},   // 0x19
		{},                                // 0x1A
		{},                                // 0x1B
		{},                                // 0x1C
		{"ORA", absoluteX, c.ora, 3, 4},   // 0x1D
		{"ASL", absoluteX, c.asl, 3, 7},   // 0x1E
		{},                                // 0x1F
		{"JSR", absolute, c.jsr, 3, 6},    // 0x20
		{"AND", indirectX, c.and, 2, 6},   // 0x21
		{},                                // 0x22
		{},                                // 0x23
		{"BIT", zeropage, c.bit, 2, 3},    // 0x24
		{"AND", zeropage, c.and, 2, 3},    // 0x25
		{"ROL", zeropage, c.rol, 2, 5},    // 0x26
		{},                                // 0x27
		{"PLP", implied, c.plp, 1, 4},     // 0x28
		{"AND", immediate, c.and, 2, 2},   // 0x29
		{"ROL", accumulator, c.rol, 1, 2}, // 0x2A
		{},                                // 0x2B
		{"BIT", absolute, c.bit, 3, 4},    // 0x2C
		{"AND", absolute, c.and, 3, 4},    // 0x2D
		{"ROL", absolute, c.rol, 3, 6},    // 0x2E
		{},                                // 0x2F
		{"BMI", relative, c.bmi, 2, 2},    // 0x30
		{"AND", indirectY, c.and, 2, 5},   // 0x31
		{},                                // 0x32
		{},                                // 0x33
		{},                                // 0x34
		{"AND", zeropageX, c.and, 2, 4},   // 0x35
		{"ROL", zeropageX, c.rol, 2, 6},   // 0x36
		{},                                // 0x37
		{"SEC", implied, c.sec, 1, 2},     // 0x38
		{"AND", absoluteY, c.and, 3, 4},   // 0x39
		{},                                // 0x3A
		{},                                // 0x3B
		{},                                // 0x3C
		{"AND", absoluteX, c.and, 3, 4},   // 0x3D
		{"ROL", absoluteX, c.rol, 3, 7},   // 0x3E
		{},                                // 0x3F
		{"RTI", implied, c.rti, 1, 6},     // 0x40
		{"EOR", indirectX, c.eor, 2, 6},   // 0x41
		{},                                // 0x42
		{},                                // 0x43
		{},                                // 0x44
		{"EOR", zeropage, c.eor, 2, 3},    // 0x45
		{"LSR", zeropage, c.lsr, 2, 5},    // 0x46
		{},                                // 0x47
		{"PHA", implied, c.pha, 1, 3},     // 0x48
		{"EOR", immediate, c.eor, 2, 2},   // 0x49
		{"LSR", accumulator, c.lsr, 1, 2}, // 0x4A
		{},                                // 0x4B
		{"JMP", absolute, c.jmp, 3, 3},    // 0x4C
		{"EOR", absolute, c.eor, 3, 4},    // 0x4D
		{"LSR", absolute, c.lsr, 3, 6},    // 0x4E
		{},                                // 0x4F
		{"BVC", relative, c.bvc, 2, 2},    // 0x50
		{"EOR", indirectY, c.eor, 2, 5},   // 0x51
		{},                                // 0x52
		{},                                // 0x53
		{},                                // 0x54
		{"EOR", zeropageX, c.eor, 2, 4},   // 0x55
		{"LSR", zeropageX, c.lsr, 2, 6},   // 0x56
		{},                                // 0x57
		{"CLI", implied, c.cli, 1, 2},     // 0x58
		{"EOR", absoluteY, c.eor, 3, 4},   // 0x59
		{},                                // 0x5A
		{},                                // 0x5B
		{},                                // 0x5C
		{"EOR", absoluteX, c.eor, 3, 4},   // 0x5D
		{"LSR", absoluteX, c.lsr, 3, 7},   // 0x5E
		{},                                // 0x5F
		{"RTS", implied, c.rts, 1, 6},     // 0x60
		{"ADC", indirectX, c.adc, 2, 6},   // 0x61
		{},                                // 0x62
		{},                                // 0x63
		{},                                // 0x64
		{"ADC", zeropage, c.adc, 2, 3},    // 0x65
		{"ROR", zeropage, c.ror, 2, 5},    // 0x66
		{},                                // 0x67
		{"PLA", implied, c.pla, 1, 4},     // 0x68
		{"ADC", immediate, c.adc, 2, 2},   // 0x69
		{"ROR", accumulator, c.ror, 1, 2}, // 0x6A
		{},                                // 0x6B
		{"JMP", indirect, c.jmp, 3, 5},    // 0x6C
		{"ADC", absolute, c.adc, 3, 4},    // 0x6D
		{"ROR", absolute, c.ror, 3, 6},    // 0x6E
		{},                                // 0x6F
		{"BVS", relative, c.bvs, 2, 2},    // 0x70
		{"ADC", indirectY, c.adc, 2, 5},   // 0x71
		{},                                // 0x72
		{},                                // 0x73
		{},                                // 0x74
		{"ADC", zeropageX, c.adc, 2, 4},   // 0x75
		{"ROR", zeropageX, c.ror, 2, 6},   // 0x76
		{},                                // 0x77
		{"SEI", implied, c.sei, 1, 2},     // 0x78
		{"ADC", absoluteY, c.adc, 3, 4},   // 0x79
		{},                                // 0x7A
		{},                                // 0x7B
		{},                                // 0x7C
		{"ADC", absoluteX, c.adc, 3, 4},   // 0x7D
		{"ROR", absoluteX, c.ror, 3, 7},   // 0x7E
		{},                                // 0x7F
		{},                                // 0x80
		{"STA", indirectX, c.sta, 2, 6},   // 0x81
		{},                                // 0x82
		{},                                // 0x83
		{"STY", zeropage, c.sty, 2, 3},    // 0x84
		{"STA", zeropage, c.sta, 2, 3},    // 0x85
		{"STX", zeropage, c.stx, 2, 3},    // 0x86
		{},                                // 0x87
		{"DEY", implied, c.dey, 1, 2},     // 0x88
		{},                                // 0x89
		{"TXA", implied, c.txa, 1, 2},     // 0x8A
		{},                                // 0x8B
		{"STY", absolute, c.sty, 3, 4},    // 0x8C
		{"STA", absolute, c.sta, 3, 4},    // 0x8D
		{"STX", absolute, c.stx, 3, 4},    // 0x8E
		{},                                // 0x8F
		{"BCC", relative, c.bcc, 2, 2},    // 0x90
		{"STA", indirectY, c.sta, 2, 6},   // 0x91
		{},                                // 0x92
		{},                                // 0x93
		{"STY", zeropageX, c.sty, 2, 4},   // 0x94
		{"STA", zeropageX, c.sta, 2, 4},   // 0x95
		{"STX", zeropageY, c.stx, 2, 4},   // 0x96
		{},                                // 0x97
		{"TYA", implied, c.tya, 1, 2},     // 0x98
		{"STA", absoluteY, c.sta, 3, 5},   // 0x99
		{"TXS", implied, c.txs, 1, 2},     // 0x9A
		{},                                // 0x9B
		{},                                // 0x9C
		{"STA", absoluteX, c.sta, 3, 5},   // 0x9D
		{},                                // 0x9E
		{},                                // 0x9F
		{"LDY", immediate, c.ldy, 2, 2},   // 0xA0
		{"LDA", indirectX, c.lda, 2, 6},   // 0xA1
		{"LDX", immediate, c.ldx, 2, 2},   // 0xA2
		{},                                // 0xA3
		{"LDY", zeropage, c.ldy, 2, 3},    // 0xA4
		{"LDA", zeropage, c.lda, 2, 3},    // 0xA5
		{"LDX", zeropage, c.ldx, 2, 3},    // 0xA6
		{},                                // 0xA7
		{"TAY", implied, c.tay, 1, 2},     // 0xA8
		{"LDA", immediate, c.lda, 2, 2},   // 0xA9
		{"TAX", implied, c.tax, 1, 2},     // 0xAA
		{},                                // 0xAB
		{"LDY", absolute, c.ldy, 3, 4},    // 0xAC
		{"LDA", absolute, c.lda, 3, 4},    // 0xAD
		{"LDX", absolute, c.ldx, 3, 4},    // 0xAE
		{},                                // 0xAF
		{"BCS", relative, c.bcs, 2, 2},    // 0xB0
		{"LDA", indirectY, c.lda, 2, 5},   // 0xB1
		{},                                // 0xB2
		{},                                // 0xB3
		{"LDY", zeropageX, c.ldy, 2, 4},   // 0xB4
		{"LDA", zeropageX, c.lda, 2, 4},   // 0xB5
		{"LDX", zeropageY, c.ldx, 2, 4},   // 0xB6
		{},                                // 0xB7
		{"CLV", implied, c.clv, 1, 2},     // 0xB8
		{"LDA", absoluteY, c.lda, 3, 4},   // 0xB9
		{"TSX", implied, c.tsx, 1, 2},     // 0xBA
		{},                                // 0xBB
		{"LDY", absoluteX, c.ldy, 3, 4},   // 0xBC
		{"LDA", absoluteX, c.lda, 3, 4},   // 0xBD
		{"LDX", absoluteY, c.ldx, 3, 4},   // 0xBE
		{},                                // 0xBF
		{"CPY", immediate, c.cpy, 2, 2},   // 0xC0
		{"CMP", indirectX, c.cmp, 2, 6},   // 0xC1
		{},                                // 0xC2
		{},                                // 0xC3
		{"CPY", zeropage, c.cpy, 2, 3},    // 0xC4
		{"CMP", zeropage, c.cmp, 2, 3},    // 0xC5
		{"DEC", zeropage, c.dec, 2, 5},    // 0xC6
		{},                                // 0xC7
		{"INY", implied, c.iny, 1, 2},     // 0xC8
		{"CMP", immediate, c.cmp, 2, 2},   // 0xC9
		{"DEX", implied, c.dex, 1, 2},     // 0xCA
		{},                                // 0xCB
		{"CPY", absolute, c.cpy, 3, 4},    // 0xCC
		{"CMP", absolute, c.cmp, 3, 4},    // 0xCD
		{"DEC", absolute, c.dec, 3, 6},    // 0xCE
		{},                                // 0xCF
		{"BNE", relative, c.bne, 2, 2},    // 0xD0
		{"CMP", indirectY, c.cmp, 2, 5},   // 0xD1
		{},                                // 0xD2
		{},                                // 0xD3
		{},                                // 0xD4
		{"CMP", zeropageX, c.cmp, 2, 4},   // 0xD5
		{"DEC", zeropageX, c.dec, 2, 6},   // 0xD6
		{},                                // 0xD7
		{"CLD", implied, c.cld, 1, 2},     // 0xD8
		{"CMP", absoluteY, c.cmp, 3, 4},   // 0xD9
		{},                                // 0xDA
		{},                                // 0xDB
		{},                                // 0xDC
		{"CMP", absoluteX, c.cmp, 3, 4},   // 0xDD
		{"DEC", absoluteX, c.dec, 3, 7},   // 0xDE
		{},                                // 0xDF
		{"CPX", immediate, c.cpx, 2, 2},   // 0xE0
		{"SBC", indirectX, c.sbc, 2, 6},   // 0xE1
		{},                                // 0xE2
		{},                                // 0xE3
		{"CPX", zeropage, c.cpx, 2, 3},    // 0xE4
		{"SBC", zeropage, c.sbc, 2, 3},    // 0xE5
		{"INC", zeropage, c.inc, 2, 5},    // 0xE6
		{},                                // 0xE7
		{"INX", implied, c.inx, 1, 2},     // 0xE8
		{"SBC", immediate, c.sbc, 2, 2},   // 0xE9
		{"NOP", implied, c.nop, 1, 2},     // 0xEA
		{},                                // 0xEB
		{"CPX", absolute, c.cpx, 3, 4},    // 0xEC
		{"SBC", absolute, c.sbc, 3, 4},    // 0xED
		{"INC", absolute, c.inc, 3, 6},    // 0xEE
		{},                                // 0xEF
		{"BEQ", relative, c.beq, 2, 2},    // 0xF0
		{"SBC", indirectY, c.sbc, 2, 5},   // 0xF1
		{},                                // 0xF2
		{},                                // 0xF3
		{},                                // 0xF4
		{"SBC", zeropageX, c.sbc, 2, 4},   // 0xF5
		{"INC", zeropageX, c.inc, 2, 6},   // 0xF6
		{},                                // 0xF7
		{"SED", implied, c.sed, 1, 2},     // 0xF8
		{"SBC", absoluteY, c.sbc, 3, 4},   // 0xF9
		{},                                // 0xFA
		{},                                // 0xFB
		{},                                // 0xFC
		{"SBC", absoluteX, c.sbc, 3, 4},   // 0xFD
		{"INC", absoluteX, c.inc, 3, 7},   // 0xFE
		{},                                // 0xFF
	}
}

// Cycles consumed by servicing an NMI or IRQ.
const interruptCycles = 7

// NewCPU creates a CPU wired to the bus and resets it.
func NewCPU(bus *Bus) *CPU {
	c := &CPU{
		p: &status{
			b: true,
			r: true,
		},
		bus: bus,
	}
	c.instructions = c.createInstructions()
	c.Reset()
	return c
}

// Reset loads PC from the reset vector and restores the power-on register
// state.
func (c *CPU) Reset() {
	c.pc = c.bus.read16(ResetVector)
	c.s = 0xFD
	c.a = 0
	c.x = 0
	c.y = 0
	c.p.decodeFrom(0x24)
}

// RequestInterrupt queues an interrupt to be serviced at the next
// instruction boundary. Requesting a kind that is already pending is a
// no-op. An IRQ stays pending while the interrupt disable flag is set and is
// serviced once the flag clears; an NMI is never masked.
func (c *CPU) RequestInterrupt(kind Interrupt) {
	switch kind {
	case NMI:
		c.nmiPending = true
	case IRQ:
		c.irqPending = true
	}
}

// PC returns the current program counter, for fault reports and debugging.
func (c *CPU) PC() uint16 {
	return c.pc
}

// setN sets whether the x is negative or positive.
func (c *CPU) setN(x byte) {
	c.p.n = x&0x80 != 0
}

// setZ sets whether the x is 0 or not.
func (c *CPU) setZ(x byte) {
	c.p.z = x == 0
}

// push pushes data to the stack, which lives on page one (0x0100 - 0x01FF)
// and grows down. The pointer wraps within the page.
func (c *CPU) push(x byte) {
	c.bus.Write(0x100|uint16(c.s), x)
	c.s--
}

// pop pops data from the stack.
func (c *CPU) pop() byte {
	c.s++
	return c.bus.Read(0x100 | uint16(c.s))
}

// addWithCarry implements the shared core of ADC and SBC. Arithmetic is
// always binary; the decimal flag is stored but never consulted.
func (c *CPU) addWithCarry(value byte) {
	a := uint16(c.a)
	m := uint16(value)
	var carry uint16 = 0
	if c.p.c {
		carry = 1
	}
	sum := a + m + carry
	res := byte(sum)
	c.p.c = sum > 0xFF
	c.p.v = (a^m)&0x80 == 0 && (a^uint16(res))&0x80 != 0
	c.a = res
	c.setN(c.a)
	c.setZ(c.a)
}

// compare implements CMP/CPX/CPY against the given register value.
func (c *CPU) compare(reg byte, operand uint16) {
	data := c.bus.Read(operand)
	x := reg - data
	c.p.c = reg >= data
	c.setN(x)
	c.setZ(x)
}

// interrupt pushes PC and flags, masks further IRQs and jumps through the
// vector.
func (c *CPU) interrupt(vector uint16) {
	c.push(byte(c.pc >> 8))
	c.push(byte(c.pc & 0xFF))
	c.push(c.p.encode())
	c.p.i = true
	c.pc = c.bus.read16(vector)
}

// ADC - Add with Carry.
func (c *CPU) adc(mode addressingMode, operand uint16) {
	c.addWithCarry(c.bus.Read(operand))
}

// AND - And.
func (c *CPU) and(mode addressingMode, operand uint16) {
	c.a = c.a & c.bus.Read(operand)
	c.setN(c.a)
	c.setZ(c.a)
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a <<= 1
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x := c.bus.Read(operand)
		c.p.c = (x>>7)&1 == 1
		x <<= 1
		c.bus.Write(operand, x)
		c.setN(x)
		c.setZ(x)
	}
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(mode addressingMode, operand uint16) {
	if !c.p.c {
		c.pc = operand
	}
}

// BCS - Branch on Carry Set.
func (c *CPU) bcs(mode addressingMode, operand uint16) {
	if c.p.c {
		c.pc = operand
	}
}

// BEQ - Branch on Equal.
func (c *CPU) beq(mode addressingMode, operand uint16) {
	if c.p.z {
		c.pc = operand
	}
}

// BIT - test BITs.
func (c *CPU) bit(mode addressingMode, operand uint16) {
	x := c.bus.Read(operand)
	c.setN(x)
	c.setZ(c.a & x)
	c.p.v = (x>>6)&1 == 1
}

// BMI - Branch on Minus.
func (c *CPU) bmi(mode addressingMode, operand uint16) {
	if c.p.n {
		c.pc = operand
	}
}

// BNE - Branch on Not Equal.
func (c *CPU) bne(mode addressingMode, operand uint16) {
	if !c.p.z {
		c.pc = operand
	}
}

// BPL - Branch on Plus.
func (c *CPU) bpl(mode addressingMode, operand uint16) {
	if !c.p.n {
		c.pc = operand
	}
}

// BRK - Break Interrupt. The 6502 skips the byte after BRK, so the pushed
// return address is PC+1.
func (c *CPU) brk(mode addressingMode, operand uint16) {
	ret := c.pc + 1
	c.push(byte(ret >> 8))
	c.push(byte(ret & 0xFF))
	c.push(c.p.encode() | 0x10)
	c.p.i = true
	c.pc = c.bus.read16(IRQVector)
}

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(mode addressingMode, operand uint16) {
	if !c.p.v {
		c.pc = operand
	}
}

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(mode addressingMode, operand uint16) {
	if c.p.v {
		c.pc = operand
	}
}

// CLC - Clear Carry.
func (c *CPU) clc(mode addressingMode, operand uint16) {
	c.p.c = false
}

// CLD - Clear Decimal.
func (c *CPU) cld(mode addressingMode, operand uint16) {
	c.p.d = false
}

// CLI - Clear Interrupt.
func (c *CPU) cli(mode addressingMode, operand uint16) {
	c.p.i = false
}

// CLV - Clear Overflow.
func (c *CPU) clv(mode addressingMode, operand uint16) {
	c.p.v = false
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(mode addressingMode, operand uint16) {
	c.compare(c.a, operand)
}

// CPX - Compare X register.
func (c *CPU) cpx(mode addressingMode, operand uint16) {
	c.compare(c.x, operand)
}

// CPY - Compare Y register.
func (c *CPU) cpy(mode addressingMode, operand uint16) {
	c.compare(c.y, operand)
}

// DEC - Decrement Memory.
func (c *CPU) dec(mode addressingMode, operand uint16) {
	x := c.bus.Read(operand) - 1
	c.bus.Write(operand, x)
	c.setN(x)
	c.setZ(x)
}

// DEX - Decrement X Register.
func (c *CPU) dex(mode addressingMode, operand uint16) {
	c.x--
	c.setN(c.x)
	c.setZ(c.x)
}

// DEY - Decrement Y Register.
func (c *CPU) dey(mode addressingMode, operand uint16) {
	c.y--
	c.setN(c.y)
	c.setZ(c.y)
}

// EOR - Bitwise Exclusive OR.
func (c *CPU) eor(mode addressingMode, operand uint16) {
	c.a = c.a ^ c.bus.Read(operand)
	c.setN(c.a)
	c.setZ(c.a)
}

// INC - Increment Memory.
func (c *CPU) inc(mode addressingMode, operand uint16) {
	x := c.bus.Read(operand) + 1
	c.bus.Write(operand, x)
	c.setN(x)
	c.setZ(x)
}

// INX - Increment X Register.
func (c *CPU) inx(mode addressingMode, operand uint16) {
	c.x++
	c.setN(c.x)
	c.setZ(c.x)
}

// INY - Increment Y Register.
func (c *CPU) iny(mode addressingMode, operand uint16) {
	c.y++
	c.setN(c.y)
	c.setZ(c.y)
}

// JMP - Jump.
func (c *CPU) jmp(mode addressingMode, operand uint16) {
	c.pc = operand
}

// JSR - Jump to Subroutine.
func (c *CPU) jsr(mode addressingMode, operand uint16) {
	x := c.pc - 1
	c.push(byte(x >> 8))
	c.push(byte(x & 0xFF))
	c.pc = operand
}

// LDA - Load Accumulator.
func (c *CPU) lda(mode addressingMode, operand uint16) {
	c.a = c.bus.Read(operand)
	c.setN(c.a)
	c.setZ(c.a)
}

// LDX - Load X Register.
func (c *CPU) ldx(mode addressingMode, operand uint16) {
	c.x = c.bus.Read(operand)
	c.setN(c.x)
	c.setZ(c.x)
}

// LDY - Load Y Register.
func (c *CPU) ldy(mode addressingMode, operand uint16) {
	c.y = c.bus.Read(operand)
	c.setN(c.y)
	c.setZ(c.y)
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(mode addressingMode, operand uint16) {
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a >>= 1
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x := c.bus.Read(operand)
		c.p.c = x&1 == 1
		x >>= 1
		c.bus.Write(operand, x)
		c.setN(x)
		c.setZ(x)
	}
}

// NOP - No Operation.
func (c *CPU) nop(mode addressingMode, operand uint16) {
}

// ORA - Bitwise OR with Accumulator.
func (c *CPU) ora(mode addressingMode, operand uint16) {
	c.a = c.a | c.bus.Read(operand)
	c.setN(c.a)
	c.setZ(c.a)
}

// PHA - Push Accumulator.
func (c *CPU) pha(mode addressingMode, operand uint16) {
	c.push(c.a)
}

// PHP - Push Processor Status.
func (c *CPU) php(mode addressingMode, operand uint16) {
	c.push(c.p.encode() | 0x10)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(mode addressingMode, operand uint16) {
	c.a = c.pop()
	c.setN(c.a)
	c.setZ(c.a)
}

// PLP - Pull Processor Status.
func (c *CPU) plp(mode addressingMode, operand uint16) {
	c.p.decodeFrom(c.pop())
	c.p.r = true
}

// ROL - Rotate Left.
func (c *CPU) rol(mode addressingMode, operand uint16) {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	if mode == accumulator {
		c.p.c = (c.a>>7)&1 == 1
		c.a = (c.a << 1) | carry
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x := c.bus.Read(operand)
		c.p.c = (x>>7)&1 == 1
		x = (x << 1) | carry
		c.bus.Write(operand, x)
		c.setN(x)
		c.setZ(x)
	}
}

// ROR - Rotate Right.
func (c *CPU) ror(mode addressingMode, operand uint16) {
	var carry byte = 0
	if c.p.c {
		carry = 1
	}
	if mode == accumulator {
		c.p.c = c.a&1 == 1
		c.a = (c.a >> 1) | (carry << 7)
		c.setN(c.a)
		c.setZ(c.a)
	} else {
		x := c.bus.Read(operand)
		c.p.c = x&1 == 1
		x = (x >> 1) | (carry << 7)
		c.bus.Write(operand, x)
		c.setN(x)
		c.setZ(x)
	}
}

// RTI - Return from Interrupt.
func (c *CPU) rti(mode addressingMode, operand uint16) {
	c.p.decodeFrom(c.pop())
	c.p.r = true
	l := c.pop()
	h := c.pop()
	c.pc = uint16(h)<<8 | uint16(l)
}

// RTS - Return from Subroutine.
func (c *CPU) rts(mode addressingMode, operand uint16) {
	l := c.pop()
	h := c.pop()
	c.pc = (uint16(h)<<8 | uint16(l)) + 1
}

// SBC - Subtract with Carry. A - M - (1-C) is A + ^M + C in two's
// complement, so it shares the ADC core.
func (c *CPU) sbc(mode addressingMode, operand uint16) {
	c.addWithCarry(^c.bus.Read(operand))
}

// SEC - Set Carry.
func (c *CPU) sec(mode addressingMode, operand uint16) {
	c.p.c = true
}

// SED - Set Decimal.
func (c *CPU) sed(mode addressingMode, operand uint16) {
	c.p.d = true
}

// SEI - Set Interrupt.
func (c *CPU) sei(mode addressingMode, operand uint16) {
	c.p.i = true
}

// STA - Store A Register.
func (c *CPU) sta(mode addressingMode, operand uint16) {
	c.bus.Write(operand, c.a)
}

// STX - Store X Register.
func (c *CPU) stx(mode addressingMode, operand uint16) {
	c.bus.Write(operand, c.x)
}

// STY - Store Y Register.
func (c *CPU) sty(mode addressingMode, operand uint16) {
	c.bus.Write(operand, c.y)
}

// TAX - Transfer A to X.
func (c *CPU) tax(mode addressingMode, operand uint16) {
	c.x = c.a
	c.setN(c.x)
	c.setZ(c.x)
}

// TAY - Transfer A to Y.
func (c *CPU) tay(mode addressingMode, operand uint16) {
	c.y = c.a
	c.setN(c.y)
	c.setZ(c.y)
}

// TSX - Transfer S to X.
func (c *CPU) tsx(mode addressingMode, operand uint16) {
	c.x = c.s
	c.setN(c.x)
	c.setZ(c.x)
}

// TXA - Transfer X to A.
func (c *CPU) txa(mode addressingMode, operand uint16) {
	c.a = c.x
	c.setN(c.a)
	c.setZ(c.a)
}

// TXS - Transfer X to S.
func (c *CPU) txs(mode addressingMode, operand uint16) {
	c.s = c.x
}

// TYA - Transfer Y to A.
func (c *CPU) tya(mode addressingMode, operand uint16) {
	c.a = c.y
	c.setN(c.a)
	c.setZ(c.a)
}

// Step performs the instruction cycle - fetch, decode, execute - and returns
// the cycles consumed. Pending interrupts are serviced first: NMI always,
// IRQ only while the interrupt disable flag is clear.
func (c *CPU) Step() (int, error) {
	if c.nmiPending {
		c.nmiPending = false
		c.interrupt(NMIVector)
		c.lastExecution = fmt.Sprintf("NMI, PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x", c.pc, c.a, c.x, c.y, c.s)
		return interruptCycles, nil
	}
	if c.irqPending && !c.p.i {
		c.irqPending = false
		c.interrupt(IRQVector)
		c.lastExecution = fmt.Sprintf("IRQ, PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x", c.pc, c.a, c.x, c.y, c.s)
		return interruptCycles, nil
	}
	opcode := c.bus.Read(c.pc)
	in := c.instructions[opcode]
	if in.mnemonic == "" {
		return 0, &IllegalOpcodeError{PC: c.pc, Opcode: opcode}
	}
	var operand uint16 = 0
	switch in.mode {
	case implied:
		operand = 0
	case accumulator:
		operand = 0
	case immediate:
		operand = c.pc + 1
	case zeropage:
		operand = uint16(c.bus.Read(c.pc + 1))
	case zeropageX:
		// If the address exceeds 0xFF (page crossed), back to 0x00
		operand = uint16(c.bus.Read(c.pc+1)+c.x) & 0xFF
	case zeropageY:
		operand = uint16(c.bus.Read(c.pc+1)+c.y) & 0xFF
	case relative:
		// The offset byte is signed, 2 is the instruction size.
		offset := c.bus.Read(c.pc + 1)
		if offset < 0x80 {
			operand = c.pc + 2 + uint16(offset)
		} else {
			operand = c.pc + 2 + uint16(offset) - 0x100
		}
	case absolute:
		operand = c.bus.read16(c.pc + 1)
	case absoluteX:
		operand = c.bus.read16(c.pc+1) + uint16(c.x)
	case absoluteY:
		operand = c.bus.read16(c.pc+1) + uint16(c.y)
	case indirect:
		operand = c.bus.read16Wrap(c.bus.read16(c.pc + 1))
	case indirectX:
		operand = c.bus.read16Wrap(uint16(c.bus.Read(c.pc+1) + c.x))
	case indirectY:
		operand = c.bus.read16Wrap(uint16(c.bus.Read(c.pc+1))) + uint16(c.y)
	}
	c.pc += in.size
	c.lastExecution = fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, opcode=0x%02x, mnemonic=%s, operand=0x%04x",
		c.pc, c.a, c.x, c.y, c.s, opcode, in.mnemonic, operand)
	in.execute(in.mode, operand)
	return in.cycles, nil
}
