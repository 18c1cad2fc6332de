package main

import (
	"flag"
	"io/ioutil"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"

	"github.com/jyane/j6502/machine"
	"github.com/jyane/j6502/ui"
)

var (
	program           = flag.String("program", "./rom/program.bin", "path to the program ROM image")
	cartridge         = flag.String("cartridge", "", "path to a cartridge ROM image (optional)")
	ticks             = flag.Int("ticks", 1, "CPU instructions per frame")
	delay             = flag.Duration("delay", 0, "sleep inserted after every frame")
	updateEachChanged = flag.Int("update_each_changed", 1, "pixel writes that force a display update")
	updateEach        = flag.Int("update_each", 3600, "CPU cycles that force a display update")
	width             = flag.Int("width", 64*8, "window width")
	height            = flag.Int("height", 64*8, "window height")
	cpuprofile        = flag.String("cpuprofile", "", "write cpu profile to file")
	debug             = flag.Bool("debug", false, "run as debug mode")
)

// readFile reads file as bytes
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	programData, err := readFile(*program)
	if err != nil {
		glog.Fatalln("Failed to read: " + *program)
	}
	var cartridgeData []byte
	if *cartridge != "" {
		cartridgeData, err = readFile(*cartridge)
		if err != nil {
			glog.Fatalln("Failed to read: " + *cartridge)
		}
	}
	config := machine.Config{
		TicksPerFrame:     *ticks,
		Delay:             *delay,
		UpdateEachChanged: *updateEachChanged,
		UpdateEach:        *updateEach,
	}
	console, err := machine.New(programData, cartridgeData, config, *debug)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	ui.Start(console, config, *width, *height)
}
