package machine

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestCPU builds a machine whose program ROM starts with the given bytes
// and whose reset vector points at 0x8000.
func newTestCPU(t *testing.T, program ...byte) (*CPU, *Bus) {
	t.Helper()
	rom := make([]byte, programROMSize)
	copy(rom, program)
	rom[ResetVector-ROMStart] = 0x00
	rom[ResetVector-ROMStart+1] = 0x80
	bus := NewBus(NewRAM(), NewFramebuffer(), NewAdapter(), rom)
	return NewCPU(bus), bus
}

// Instructions that rewrite PC themselves are checked separately.
var pcRewriters = map[string]bool{
	"JMP": true, "JSR": true, "RTS": true, "RTI": true, "BRK": true,
	"BCC": true, "BCS": true, "BEQ": true, "BMI": true,
	"BNE": true, "BPL": true, "BVC": true, "BVS": true,
}

func TestStepAdvancesPCByInstructionSize(t *testing.T) {
	c, _ := newTestCPU(t)
	for opcode := 0; opcode < 256; opcode++ {
		in := c.instructions[opcode]
		if in.mnemonic == "" || pcRewriters[in.mnemonic] {
			continue
		}
		// A fresh machine per opcode, with zeroed operand bytes.
		c, _ := newTestCPU(t, byte(opcode))
		cycles, err := c.Step()
		assert.NoError(t, err)
		assert.Equal(t, 0x8000+in.size, c.pc, in.mnemonic)
		assert.Equal(t, in.cycles, cycles, in.mnemonic)
	}
}

func TestZeroAndNegativeFlags(t *testing.T) {
	for _, tt := range []struct {
		value byte
		z     bool
		n     bool
	}{
		{0x00, true, false},
		{0x01, false, false},
		{0x7F, false, false},
		{0x80, false, true},
		{0xFF, false, true},
	} {
		c, _ := newTestCPU(t, 0xA9, tt.value) // LDA #value
		_, err := c.Step()
		assert.NoError(t, err)
		assert.Equal(t, tt.value, c.a)
		assert.Equal(t, tt.z, c.p.z)
		assert.Equal(t, tt.n, c.p.n)
	}
}

func TestStackRoundTrip(t *testing.T) {
	// LDA #$42, PHA, LDA #$00, PLA
	c, bus := newTestCPU(t, 0xA9, 0x42, 0x48, 0xA9, 0x00, 0x68)
	for i := 0; i < 4; i++ {
		_, err := c.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, byte(0x42), c.a)
	assert.Equal(t, byte(0xFD), c.s)
	// The pushed byte lived on the stack page.
	assert.Equal(t, byte(0x42), bus.Read(0x01FD))
}

func TestStackPointerWraps(t *testing.T) {
	c, _ := newTestCPU(t)
	c.s = 0x00
	c.push(0xAB)
	assert.Equal(t, byte(0xFF), c.s)
	assert.Equal(t, byte(0xAB), c.pop())
	assert.Equal(t, byte(0x00), c.s)
}

func TestADC(t *testing.T) {
	for _, tt := range []struct {
		name    string
		a       byte
		m       byte
		carryIn bool
		want    byte
		c       bool
		v       bool
	}{
		{"no carry", 0x10, 0x20, false, 0x30, false, false},
		{"carry in", 0x10, 0x20, true, 0x31, false, false},
		{"carry out", 0xFF, 0x01, false, 0x00, true, false},
		{"overflow positive", 0x50, 0x50, false, 0xA0, false, true},
		{"overflow negative", 0x80, 0x80, false, 0x00, true, true},
		{"mixed signs", 0x50, 0xD0, false, 0x20, true, false},
	} {
		c, _ := newTestCPU(t, 0x69, tt.m) // ADC #m
		c.a = tt.a
		c.p.c = tt.carryIn
		_, err := c.Step()
		assert.NoError(t, err)
		assert.Equal(t, tt.want, c.a, tt.name)
		assert.Equal(t, tt.c, c.p.c, tt.name)
		assert.Equal(t, tt.v, c.p.v, tt.name)
	}
}

func TestSBC(t *testing.T) {
	for _, tt := range []struct {
		name    string
		a       byte
		m       byte
		carryIn bool
		want    byte
		c       bool
	}{
		{"simple", 0x10, 0x01, true, 0x0F, true},
		{"with borrow in", 0x10, 0x01, false, 0x0E, true},
		{"borrow out", 0x01, 0x02, true, 0xFF, false},
		{"to zero", 0x42, 0x42, true, 0x00, true},
	} {
		c, _ := newTestCPU(t, 0xE9, tt.m) // SBC #m
		c.a = tt.a
		c.p.c = tt.carryIn
		_, err := c.Step()
		assert.NoError(t, err)
		assert.Equal(t, tt.want, c.a, tt.name)
		assert.Equal(t, tt.c, c.p.c, tt.name)
	}
}

func TestDecimalFlagDoesNotAffectArithmetic(t *testing.T) {
	// SED, LDA #$09, ADC #$01 stays binary: 0x0A, not BCD 0x10.
	c, _ := newTestCPU(t, 0xF8, 0xA9, 0x09, 0x69, 0x01)
	for i := 0; i < 3; i++ {
		_, err := c.Step()
		assert.NoError(t, err)
	}
	assert.True(t, c.p.d)
	assert.Equal(t, byte(0x0A), c.a)
}

func TestBranches(t *testing.T) {
	// BNE +2 with Z clear skips the following two bytes.
	c, _ := newTestCPU(t, 0xD0, 0x02)
	c.p.z = false
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8004), c.pc)

	// BNE with Z set falls through.
	c, _ = newTestCPU(t, 0xD0, 0x02)
	c.p.z = true
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8002), c.pc)

	// Negative offset branches backwards.
	c, _ = newTestCPU(t, 0xD0, 0xFE)
	c.p.z = false
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8000), c.pc)
}

func TestJSRAndRTS(t *testing.T) {
	// JSR $8010 ... RTS at $8010 returns to the following instruction.
	program := make([]byte, 0x20)
	program[0x00] = 0x20 // JSR $8010
	program[0x01] = 0x10
	program[0x02] = 0x80
	program[0x03] = 0xEA // NOP
	program[0x10] = 0x60 // RTS
	c, _ := newTestCPU(t, program...)
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8010), c.pc)
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8003), c.pc)
	assert.Equal(t, byte(0xFD), c.s)
}

func TestIndirectJumpWrapsWithinPage(t *testing.T) {
	// JMP ($02FF) fetches the high byte from $0200, not $0300.
	c, bus := newTestCPU(t, 0x6C, 0xFF, 0x02)
	bus.Write(0x02FF, 0x34)
	bus.Write(0x0200, 0x12)
	bus.Write(0x0300, 0x99)
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), c.pc)
}

func TestBRK(t *testing.T) {
	c, bus := newTestCPU(t, 0x00)
	bus.rom[IRQVector-ROMStart] = 0x00
	bus.rom[IRQVector-ROMStart+1] = 0x90
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, 7, cycles)
	assert.Equal(t, uint16(0x9000), c.pc)
	assert.True(t, c.p.i)
	// The return address on the stack skips the byte after BRK.
	assert.Equal(t, byte(0x80), bus.Read(0x01FD))
	assert.Equal(t, byte(0x02), bus.Read(0x01FC))
}

func TestIRQMaskedUntilInterruptFlagClears(t *testing.T) {
	c, bus := newTestCPU(t, 0xEA, 0x58, 0xEA) // NOP, CLI, NOP
	bus.rom[IRQVector-ROMStart] = 0x00
	bus.rom[IRQVector-ROMStart+1] = 0x90
	c.RequestInterrupt(IRQ)

	// Reset leaves the interrupt disable flag set, so the IRQ stays pending.
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x8001), c.pc)
	assert.True(t, c.irqPending)

	_, err = c.Step() // CLI
	assert.NoError(t, err)

	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, interruptCycles, cycles)
	assert.Equal(t, uint16(0x9000), c.pc)
	assert.True(t, c.p.i)
	assert.False(t, c.irqPending)
}

func TestNMIIsNeverMasked(t *testing.T) {
	c, bus := newTestCPU(t, 0xEA)
	bus.rom[NMIVector-ROMStart] = 0x00
	bus.rom[NMIVector-ROMStart+1] = 0xA0
	assert.True(t, c.p.i)
	c.RequestInterrupt(NMI)
	cycles, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, interruptCycles, cycles)
	assert.Equal(t, uint16(0xA000), c.pc)
}

func TestDuplicateInterruptRequestsCoalesce(t *testing.T) {
	c, bus := newTestCPU(t, 0xEA)
	bus.rom[NMIVector-ROMStart] = 0x00
	bus.rom[NMIVector-ROMStart+1] = 0xA0
	bus.rom[0xA000-ROMStart] = 0xEA // NOP at the handler
	c.RequestInterrupt(NMI)
	c.RequestInterrupt(NMI)
	_, err := c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xA000), c.pc)
	// The second request does not queue another service.
	_, err = c.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xA001), c.pc)
}

func TestIllegalOpcode(t *testing.T) {
	c, _ := newTestCPU(t, 0x02)
	_, err := c.Step()
	assert.Error(t, err, "illegal opcode 0x02 at 0x8000")
	var illegal *IllegalOpcodeError
	assert.True(t, errors.As(err, &illegal))
	assert.Equal(t, uint16(0x8000), illegal.PC)
	assert.Equal(t, byte(0x02), illegal.Opcode)
	// PC stays on the faulting instruction.
	assert.Equal(t, uint16(0x8000), c.pc)
}

func TestCompareSetsCarryAndZero(t *testing.T) {
	for _, tt := range []struct {
		a byte
		m byte
		c bool
		z bool
	}{
		{0x10, 0x10, true, true},
		{0x20, 0x10, true, false},
		{0x10, 0x20, false, false},
	} {
		c, _ := newTestCPU(t, 0xC9, tt.m) // CMP #m
		c.a = tt.a
		_, err := c.Step()
		assert.NoError(t, err)
		assert.Equal(t, tt.c, c.p.c)
		assert.Equal(t, tt.z, c.p.z)
	}
}
