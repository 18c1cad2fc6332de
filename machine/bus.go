package machine

import "github.com/golang/glog"

// Memory map
// 0x0000 - 0x1FFF	RAM (zero page, stack page 0x0100 - 0x01FF)
// 0x2000 - 0x2FFF	Framebuffer
// 0x3000 - 0x3FFF	Unmapped
// 0x4000 - 0x40FF	Interface adapter registers
// 0x4100 - 0x5FFF	Unmapped
// 0x6000 - 0x7FFF	Cartridge ROM window (banked)
// 0x8000 - 0xFFFF	Program ROM, interrupt vectors at 0xFFFA - 0xFFFF
const (
	FramebufferStart = 0x2000
	AdapterStart     = 0x4000
	WindowStart      = 0x6000
	ROMStart         = 0x8000

	NMIVector   = 0xFFFA
	ResetVector = 0xFFFC
	IRQVector   = 0xFFFE
)

type pageKind int

const (
	pageUnmapped pageKind = iota
	pageRAM
	pageFramebuffer
	pageAdapter
	pageWindow
	pageROM
)

// Bus routes every 16-bit address to its backing store. It owns no devices;
// the console wires in RAM, framebuffer, adapter and the program ROM. Every
// address resolves somewhere: unmapped regions read 0 and discard writes, so
// bus access never fails.
type Bus struct {
	ram     *RAM
	fb      *Framebuffer
	adapter *Adapter
	rom     []byte

	// Dispatch keyed on the high byte of the address.
	pages [256]pageKind
}

func NewBus(ram *RAM, fb *Framebuffer, adapter *Adapter, rom []byte) *Bus {
	b := &Bus{ram: ram, fb: fb, adapter: adapter, rom: rom}
	for page := 0; page < 256; page++ {
		address := page << 8
		switch {
		case address < FramebufferStart:
			b.pages[page] = pageRAM
		case address < FramebufferStart+framebufferSize:
			b.pages[page] = pageFramebuffer
		case address == AdapterStart:
			b.pages[page] = pageAdapter
		case WindowStart <= address && address < WindowStart+WindowSize:
			b.pages[page] = pageWindow
		case ROMStart <= address:
			b.pages[page] = pageROM
		default:
			b.pages[page] = pageUnmapped
		}
	}
	return b
}

func (b *Bus) Read(address uint16) byte {
	switch b.pages[address>>8] {
	case pageRAM:
		return b.ram.read(address)
	case pageFramebuffer:
		return b.fb.read(address - FramebufferStart)
	case pageAdapter:
		return b.adapter.readRegister(address & 0x00FF)
	case pageWindow:
		return b.adapter.ReadWindow(address - WindowStart)
	case pageROM:
		return b.rom[address-ROMStart]
	default:
		glog.Infof("Unmapped bus read: address=0x%04x", address)
		return 0
	}
}

func (b *Bus) Write(address uint16, data byte) {
	switch b.pages[address>>8] {
	case pageRAM:
		b.ram.write(address, data)
	case pageFramebuffer:
		b.fb.write(address-FramebufferStart, data)
	case pageAdapter:
		b.adapter.writeRegister(address&0x00FF, data)
	case pageWindow:
		// Window writes are bank-select commands, not stores.
		b.adapter.WriteWindow(address-WindowStart, data)
	case pageROM:
		glog.Infof("Discarding write to program ROM: address=0x%04x, data=0x%02x", address, data)
	default:
		glog.Infof("Unmapped bus write: address=0x%04x, data=0x%02x", address, data)
	}
}

// read16 reads 2 bytes, little endian.
func (b *Bus) read16(address uint16) uint16 {
	l := b.Read(address)
	h := b.Read(address + 1)
	return uint16(h)<<8 | uint16(l)
}

// read16Wrap reads 2 bytes but the high byte read wraps within the page, the
// way the 6502 fetches indirect addresses.
func (b *Bus) read16Wrap(address uint16) uint16 {
	l := b.Read(address)
	h := b.Read(address&0xFF00 | uint16(byte(address)+1))
	return uint16(h)<<8 | uint16(l)
}
