package machine

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DebugConsole wraps a session with a stdio command loop. Each RunFrame call
// reads one command instead of stepping, so the UI loop keeps working.
// commands:
//   s:
//     execute step(s).
//   p:
//     print.
//   br:
//     set a break point.
//   q:
//     quit.
//   r:
//     reset.
type DebugConsole struct {
	*session
	cycles      uint64
	breakpoints []uint16
	in          *bufio.Reader
}

func newDebugConsole(s *session) *DebugConsole {
	return &DebugConsole{session: s, in: bufio.NewReader(os.Stdin)}
}

func (c *DebugConsole) step() (FrameReport, error) {
	report, err := c.scheduler.runFrame(1)
	c.cycles += uint64(report.CyclesExecuted)
	return report, err
}

func (c *DebugConsole) printStack() {
	for i := 0; i < 256; i++ {
		idx := uint16(0x100 | i)
		fmt.Printf("0x%04x: 0x%02x, ", idx, c.bus.Read(idx))
		if i%16 == 15 {
			fmt.Println()
		}
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Executed cycles: %d\n", c.cycles)
	fmt.Println("Last: " + c.cpu.lastExecution)
	fmt.Printf("CPU: PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, P=0x%02x\n",
		c.cpu.pc, c.cpu.a, c.cpu.x, c.cpu.y, c.cpu.s, c.cpu.p.encode())
	fmt.Printf("Adapter: bank=0x%04x, keyb=0x%02x, intid=0x%02x\n",
		c.adapter.bank, c.adapter.keyb, c.adapter.intID)
	fmt.Printf("Framebuffer: pending changes=%d\n", c.fb.Changes())
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
	} else {
		switch args[1] {
		case "c", "cpu":
			fmt.Printf("%+v\n", *c.cpu)
		case "a", "adapter":
			fmt.Printf("bank=0x%04x, porta=0x%02x, portb=0x%02x, keyb=0x%02x, intid=0x%02x, mousex=0x%02x, mousey=0x%02x\n",
				c.adapter.bank, c.adapter.portA, c.adapter.portB, c.adapter.keyb, c.adapter.intID, c.adapter.mouseX, c.adapter.mouseY)
		case "st", "stack":
			c.printStack()
		}
	}
}

func (c *DebugConsole) checkBreak() bool {
	for i := 0; i < len(c.breakpoints); i++ {
		if c.breakpoints[i] == c.cpu.pc {
			fmt.Printf("Break at: 0x%04x\n", c.breakpoints[i])
			return true
		}
	}
	return false
}

func (c *DebugConsole) stepCommand(args []string) (FrameReport, error) {
	if len(args) < 2 {
		return c.step()
	}
	re := regexp.MustCompile("^([0-9]+)")
	if !re.MatchString(args[1]) {
		return FrameReport{}, nil
	}
	num, _ := strconv.Atoi(re.FindString(args[1]))
	unit := args[1][len(args[1])-1]
	var total FrameReport
	debugEach := unit == 'd'
	for i := 0; i < num; i++ {
		report, err := c.step()
		if debugEach {
			c.basePrint()
		}
		total.CyclesExecuted += report.CyclesExecuted
		total.Flushed = total.Flushed || report.Flushed
		if err != nil {
			return total, err
		}
		if c.checkBreak() {
			return total, nil
		}
	}
	return total, nil
}

func (c *DebugConsole) breakPointCommand(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: br 0x<address>")
		return
	}
	var i int
	fmt.Sscanf(args[1], "0x%x\n", &i)
	c.breakpoints = append(c.breakpoints, uint16(i))
}

func (c *DebugConsole) quitCommand() {
	fmt.Println("Quitting.")
	os.Exit(0)
}

func (c *DebugConsole) RunFrame(ticks int) (FrameReport, error) {
	fmt.Printf("Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return FrameReport{}, err
	}
	args := strings.Split(strings.TrimSuffix(line, "\n"), " ")
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		report, err := c.stepCommand(args)
		c.basePrint() // Print data before it die.
		if err != nil {
			return report, err
		}
		fmt.Printf("Executed %d CPU cycles.\n", report.CyclesExecuted)
		return report, nil
	case "br", "breakpoint":
		c.breakPointCommand(args)
	case "r", "reset":
		c.Reset()
	case "q", "quit":
		c.quitCommand()
	default:
		return FrameReport{}, fmt.Errorf("unknown command %s", line)
	}
	// step command was not executed.
	return FrameReport{}, nil
}
