package machine

import (
	"fmt"
	"image"
	"time"
)

// Display receives published frames. The UI implements this; a nil display
// still lets the machine run headless.
type Display interface {
	Publish(frame *image.RGBA)
}

// Config controls the frame scheduler.
type Config struct {
	// TicksPerFrame is the number of CPU steps per RunFrame call.
	TicksPerFrame int
	// Delay is slept after every frame to slow the machine down.
	Delay time.Duration
	// UpdateEachChanged flushes the framebuffer once this many pixel writes
	// have accumulated.
	UpdateEachChanged int
	// UpdateEach flushes once this many CPU cycles have passed without a
	// change-triggered flush, so an idle screen still refreshes.
	UpdateEach int
}

func DefaultConfig() Config {
	return Config{
		TicksPerFrame:     1,
		Delay:             0,
		UpdateEachChanged: 1,
		UpdateEach:        3600,
	}
}

func (c *Config) validate() {
	if c.TicksPerFrame < 1 {
		c.TicksPerFrame = 1
	}
	if c.UpdateEachChanged < 1 {
		c.UpdateEachChanged = 1
	}
	if c.UpdateEach < 1 {
		c.UpdateEach = 1
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
}

// FrameReport describes what one RunFrame call did.
type FrameReport struct {
	CyclesExecuted int
	Flushed        bool
}

// scheduler drives the CPU in frames and coalesces framebuffer updates: a
// frame is published when enough pixels changed or enough cycles passed,
// whichever comes first.
type scheduler struct {
	cpu     *CPU
	fb      *Framebuffer
	display Display
	config  Config

	cyclesSinceUpdate int
}

func newScheduler(cpu *CPU, fb *Framebuffer, config Config) *scheduler {
	config.validate()
	return &scheduler{cpu: cpu, fb: fb, config: config}
}

// runFrame steps the CPU the given number of times, then decides whether to
// flush. A CPU fault aborts the frame and surfaces as the error.
func (s *scheduler) runFrame(ticks int) (FrameReport, error) {
	var report FrameReport
	for i := 0; i < ticks; i++ {
		cycles, err := s.cpu.Step()
		if err != nil {
			return report, fmt.Errorf("cpu fault: %w", err)
		}
		report.CyclesExecuted += cycles
		s.cyclesSinceUpdate += cycles
	}
	if s.fb.Changes() >= s.config.UpdateEachChanged || s.cyclesSinceUpdate >= s.config.UpdateEach {
		if s.display != nil {
			s.display.Publish(s.fb.Snapshot())
		}
		s.fb.resetChanges()
		s.cyclesSinceUpdate = 0
		report.Flushed = true
	}
	if s.config.Delay > 0 {
		time.Sleep(s.config.Delay)
	}
	return report, nil
}
