package machine

import (
	"fmt"
	"image"

	"github.com/golang/glog"
)

// Program ROM occupies the upper half of the address space.
const programROMSize = 0x8000

// Console is the assembled machine as the UI and tools see it.
type Console interface {
	// RunFrame steps the CPU ticks times and coalesces display updates.
	RunFrame(ticks int) (FrameReport, error)
	// RequestInterrupt queues an NMI or IRQ for the next instruction boundary.
	RequestInterrupt(kind Interrupt)
	// Snapshot renders the current framebuffer.
	Snapshot() *image.RGBA
	// KeyDown and KeyUp record a keyboard event and raise an IRQ.
	KeyDown(scancode byte)
	KeyUp(scancode byte)
	// MouseMove records the cursor position in framebuffer coordinates.
	MouseMove(x byte, y byte)
	// MouseDown records a button click and raises an IRQ.
	MouseDown(left bool)
	// Reset restarts execution from the reset vector.
	Reset()
	// SetDisplay attaches the frame sink. May be nil to run headless.
	SetDisplay(display Display)
}

type session struct {
	cpu       *CPU
	bus       *Bus
	fb        *Framebuffer
	adapter   *Adapter
	scheduler *scheduler
}

// New assembles a console around a program ROM image and an optional
// cartridge. The program is padded with zeros to 32 KiB; its last six bytes
// are the interrupt vectors. With debug set, the console is wrapped in a
// stdin-driven debugger.
func New(program []byte, cartridge []byte, config Config, debug bool) (Console, error) {
	if len(program) > programROMSize {
		return nil, fmt.Errorf("program image is %d bytes, the ROM holds %d", len(program), programROMSize)
	}
	rom := make([]byte, programROMSize)
	copy(rom, program)

	adapter := NewAdapter()
	if cartridge != nil {
		if err := adapter.Load(cartridge); err != nil {
			return nil, err
		}
	}

	fb := NewFramebuffer()
	bus := NewBus(NewRAM(), fb, adapter, rom)
	cpu := NewCPU(bus)
	s := &session{
		cpu:       cpu,
		bus:       bus,
		fb:        fb,
		adapter:   adapter,
		scheduler: newScheduler(cpu, fb, config),
	}
	glog.Infof("Console ready: program=%d bytes, cartridge=%d bytes, reset vector=0x%04x",
		len(program), len(cartridge), cpu.pc)
	if debug {
		return newDebugConsole(s), nil
	}
	return s, nil
}

func (s *session) RunFrame(ticks int) (FrameReport, error) {
	return s.scheduler.runFrame(ticks)
}

func (s *session) RequestInterrupt(kind Interrupt) {
	s.cpu.RequestInterrupt(kind)
}

func (s *session) Snapshot() *image.RGBA {
	return s.fb.Snapshot()
}

func (s *session) KeyDown(scancode byte) {
	s.adapter.SetKey(scancode, IntKeyDown)
	s.cpu.RequestInterrupt(IRQ)
}

func (s *session) KeyUp(scancode byte) {
	s.adapter.SetKey(scancode, IntKeyUp)
	s.cpu.RequestInterrupt(IRQ)
}

func (s *session) MouseMove(x byte, y byte) {
	s.adapter.SetMouse(x, y)
}

func (s *session) MouseDown(left bool) {
	if left {
		s.adapter.SetClick(IntMouseLeft)
	} else {
		s.adapter.SetClick(IntMouseRight)
	}
	s.cpu.RequestInterrupt(IRQ)
}

func (s *session) Reset() {
	s.cpu.Reset()
}

func (s *session) SetDisplay(display Display) {
	s.scheduler.display = display
}
