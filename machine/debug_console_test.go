package machine

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func newTestDebugConsole(t *testing.T) *DebugConsole {
	t.Helper()
	console, err := New(newTestProgram(0xEA), nil, DefaultConfig(), true)
	assert.NoError(t, err)
	return console.(*DebugConsole)
}

func TestBreakpointCommand(t *testing.T) {
	c := newTestDebugConsole(t)
	c.breakPointCommand([]string{"br", "0x8005"})
	assert.Equal(t, []uint16{0x8005}, c.breakpoints)
	c.cpu.pc = 0x8005
	assert.True(t, c.checkBreak())
}

func TestBreakpointCommandWithoutAddress(t *testing.T) {
	c := newTestDebugConsole(t)
	c.breakPointCommand([]string{"br"})
	assert.Equal(t, 0, len(c.breakpoints))
}
