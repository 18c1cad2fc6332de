package machine

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestProgram builds a full 32 KiB program image with the given bytes at
// 0x8000 and all three vectors pointing where the test wants them.
func newTestProgram(code ...byte) []byte {
	rom := make([]byte, programROMSize)
	copy(rom, code)
	rom[ResetVector-ROMStart] = 0x00
	rom[ResetVector-ROMStart+1] = 0x80
	rom[IRQVector-ROMStart] = 0x00
	rom[IRQVector-ROMStart+1] = 0x90
	rom[NMIVector-ROMStart] = 0x00
	rom[NMIVector-ROMStart+1] = 0xA0
	return rom
}

func TestNewRejectsOversizedProgram(t *testing.T) {
	_, err := New(make([]byte, programROMSize+1), nil, DefaultConfig(), false)
	assert.Error(t, err, "program image is 32769 bytes, the ROM holds 32768")
}

func TestNewRejectsOversizedCartridge(t *testing.T) {
	_, err := New(newTestProgram(), make([]byte, maxROMSize+1), DefaultConfig(), false)
	assert.Equal(t, ErrROMTooLarge, err)
}

func TestConsoleRunsAnInfiniteLoop(t *testing.T) {
	// Sixteen NOPs followed by JMP $8000.
	code := make([]byte, 19)
	for i := 0; i < 16; i++ {
		code[i] = 0xEA
	}
	code[16] = 0x4C
	code[17] = 0x00
	code[18] = 0x80
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)
	for i := 0; i < 100; i++ {
		report, err := console.RunFrame(17)
		assert.NoError(t, err)
		// 16 NOPs at 2 cycles plus the JMP at 3.
		assert.Equal(t, 35, report.CyclesExecuted)
	}
}

func TestConsoleTenStepFrames(t *testing.T) {
	// The same NOP loop stepped ten instructions at a time. Frames that
	// straddle the JMP cost 21 cycles, the rest 20; seventeen frames are
	// exactly ten trips around the loop.
	code := make([]byte, 19)
	for i := 0; i < 16; i++ {
		code[i] = 0xEA
	}
	code[16] = 0x4C
	code[17] = 0x00
	code[18] = 0x80
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)
	total := 0
	for i := 0; i < 17; i++ {
		report, err := console.RunFrame(10)
		assert.NoError(t, err)
		assert.True(t, report.CyclesExecuted == 20 || report.CyclesExecuted == 21)
		total += report.CyclesExecuted
	}
	assert.Equal(t, 350, total)
}

func TestConsoleKeyEventsRaiseIRQ(t *testing.T) {
	// CLI, then spin. The IRQ handler at $9000 copies KEYB to $0000 and
	// INTID to $0001, then loops.
	code := make([]byte, 0x1010)
	code[0] = 0x58 // CLI
	code[1] = 0x4C // JMP $8001
	code[2] = 0x01
	code[3] = 0x80
	handler := 0x9000 - 0x8000
	copy(code[handler:], []byte{
		0xAD, 0x02, 0x40, // LDA $4002 (KEYB)
		0x8D, 0x00, 0x00, // STA $0000
		0xAD, 0x03, 0x40, // LDA $4003 (INTID)
		0x8D, 0x01, 0x00, // STA $0001
		0x4C, 0x0C, 0x90, // JMP self
	})
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)

	_, err = console.RunFrame(2) // CLI and one JMP
	assert.NoError(t, err)

	console.KeyDown(0x2A)
	_, err = console.RunFrame(5) // IRQ entry plus the handler body
	assert.NoError(t, err)

	s := console.(*session)
	assert.Equal(t, byte(0x2A), s.bus.Read(0x0000))
	assert.Equal(t, IntKeyDown, s.bus.Read(0x0001))
}

func TestConsoleMouseEventsRaiseIRQ(t *testing.T) {
	// CLI, then spin. The IRQ handler at $9000 copies MOUSEX, MOUSEY and
	// INTID into the zero page, then loops.
	code := make([]byte, 0x1020)
	code[0] = 0x58 // CLI
	code[1] = 0x4C // JMP $8001
	code[2] = 0x01
	code[3] = 0x80
	handler := 0x9000 - 0x8000
	copy(code[handler:], []byte{
		0xAD, 0x07, 0x40, // LDA $4007 (MOUSEX)
		0x8D, 0x00, 0x00, // STA $0000
		0xAD, 0x08, 0x40, // LDA $4008 (MOUSEY)
		0x8D, 0x01, 0x00, // STA $0001
		0xAD, 0x03, 0x40, // LDA $4003 (INTID)
		0x8D, 0x02, 0x00, // STA $0002
		0x4C, 0x12, 0x90, // JMP self
	})
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)

	_, err = console.RunFrame(2) // CLI and one JMP
	assert.NoError(t, err)

	// Movement alone does not interrupt; the click does.
	console.MouseMove(0x05, 0x09)
	console.MouseDown(true)
	_, err = console.RunFrame(7) // IRQ entry plus the handler body
	assert.NoError(t, err)

	s := console.(*session)
	assert.Equal(t, byte(0x05), s.bus.Read(0x0000))
	assert.Equal(t, byte(0x09), s.bus.Read(0x0001))
	assert.Equal(t, IntMouseLeft, s.bus.Read(0x0002))
}

func TestConsoleCartridgeWindow(t *testing.T) {
	// LDA $6000, STA $0000, LDA #$01, STA $6000, LDA $6000, STA $0001
	code := []byte{
		0xAD, 0x00, 0x60,
		0x8D, 0x00, 0x00,
		0xA9, 0x01,
		0x8D, 0x00, 0x60,
		0xAD, 0x00, 0x60,
		0x8D, 0x01, 0x00,
	}
	cart := make([]byte, 2*WindowSize)
	cart[0] = 0xB0
	cart[WindowSize] = 0xB1
	console, err := New(newTestProgram(code...), cart, DefaultConfig(), false)
	assert.NoError(t, err)
	_, err = console.RunFrame(6)
	assert.NoError(t, err)

	s := console.(*session)
	assert.Equal(t, byte(0xB0), s.bus.Read(0x0000))
	assert.Equal(t, byte(0xB1), s.bus.Read(0x0001))
}

func TestConsoleSnapshotReflectsPixelWrites(t *testing.T) {
	// LDA #$0C, STA $2000
	code := []byte{0xA9, 0x0C, 0x8D, 0x00, 0x20}
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)
	_, err = console.RunFrame(2)
	assert.NoError(t, err)
	im := console.Snapshot()
	assert.Equal(t, palette[0x0C], im.RGBAAt(0, 0))
}

func TestConsoleReset(t *testing.T) {
	code := []byte{0x4C, 0x00, 0x80} // JMP $8000
	console, err := New(newTestProgram(code...), nil, DefaultConfig(), false)
	assert.NoError(t, err)
	_, err = console.RunFrame(3)
	assert.NoError(t, err)
	console.Reset()
	s := console.(*session)
	assert.Equal(t, uint16(0x8000), s.cpu.pc)
}
