package ui

import (
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/j6502/machine"
)

// screen receives published frames from the scheduler and keeps the latest
// one for the render loop.
type screen struct {
	frame *image.RGBA
}

func (s *screen) Publish(frame *image.RGBA) {
	s.frame = frame
}

func setKeyCallback(window *glfw.Window, console machine.Console) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		switch action {
		case glfw.Press:
			console.KeyDown(byte(scancode))
		case glfw.Release:
			console.KeyUp(byte(scancode))
		}
	})
}

// setMouseCallbacks scales the cursor from window pixels down to
// framebuffer coordinates and forwards button presses.
func setMouseCallbacks(window *glfw.Window, console machine.Console) {
	window.SetCursorPosCallback(func(w *glfw.Window, xpos float64, ypos float64) {
		width, height := w.GetSize()
		if width < 1 || height < 1 {
			return
		}
		x := int(xpos) * machine.FramebufferWidth / width
		y := int(ypos) * machine.FramebufferHeight / height
		console.MouseMove(byte(x), byte(y))
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch button {
		case glfw.MouseButtonLeft:
			console.MouseDown(true)
		case glfw.MouseButtonRight:
			console.MouseDown(false)
		}
	})
}

func mainLoop(window *glfw.Window, console machine.Console, config machine.Config, program uint32) {
	s := &screen{}
	console.SetDisplay(s)
	for {
		report, err := console.RunFrame(config.TicksPerFrame)
		if err != nil {
			glog.Errorln("Machine halted: ", err)
			return
		}
		if report.Flushed && s.frame != nil {
			updateTexture(program, s.frame)
			window.SwapBuffers()
		}
		glfw.PollEvents()
		if window.ShouldClose() {
			return
		}
	}
}

// Start is the main entrypoint.
func Start(console machine.Console, config machine.Config, width int, height int) {
	err := glfw.Init()
	if err != nil {
		glog.Fatalln(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "J6502", nil, nil)
	if err != nil {
		glog.Fatalln(err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glog.Fatalln(err)
	}
	program, err := newProgram()
	if err != nil {
		glog.Fatalln(err)
	}
	gl.UseProgram(program)
	setKeyCallback(window, console)
	setMouseCallbacks(window, console)
	mainLoop(window, console, config, program)
}
