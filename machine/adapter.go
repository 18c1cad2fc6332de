package machine

import (
	"math/rand"
	"time"

	"github.com/golang/glog"
)

// The interface adapter bridges the 16-bit bus to everything that is not
// plain memory: a bank-switched window into a cartridge ROM of up to 16 MiB,
// two general purpose ports, keyboard and mouse registers and a random
// source.
//
// Adapter registers, mapped at 0x4000 - 0x40FF:
//   0x00  PORTA
//   0x01  PORTB
//   0x02  KEYB    last keyboard scancode
//   0x03  INTID   source id of the last interrupt request
//   0x04  BANKLO  low byte of the window bank register
//   0x05  BANKHI  high byte of the window bank register
//   0x06  RANDOM  reads return a random byte, writes are discarded
//   0x07  MOUSEX  cursor column in framebuffer coordinates
//   0x08  MOUSEY  cursor row in framebuffer coordinates
const (
	regPortA  = 0x00
	regPortB  = 0x01
	regKeyb   = 0x02
	regIntID  = 0x03
	regBankLo = 0x04
	regBankHi = 0x05
	regRandom = 0x06
	regMouseX = 0x07
	regMouseY = 0x08
)

// WindowSize is the size of the cartridge ROM window at 0x6000 - 0x7FFF.
// With a 16-bit bank register the adapter can address 2^29 bytes, of which
// the ROM may use at most 16 MiB.
const (
	WindowSize = 0x2000
	maxROMSize = 1 << 24
)

// Interrupt ids stored in INTID by the hosting session.
const (
	IntKeyDown    byte = 0xFF
	IntKeyUp      byte = 0xFE
	IntMouseLeft  byte = 0xFD
	IntMouseRight byte = 0xFC
)

type Adapter struct {
	rom  []byte
	bank uint16

	portA  byte
	portB  byte
	keyb   byte
	intID  byte
	mouseX byte
	mouseY byte

	rng *rand.Rand
}

func NewAdapter() *Adapter {
	return &Adapter{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Load installs a cartridge image. The image is raw bytes with no header;
// it fails only when the bank register could not reach all of it.
func (a *Adapter) Load(data []byte) error {
	if len(data) > maxROMSize {
		return ErrROMTooLarge
	}
	a.rom = make([]byte, len(data))
	copy(a.rom, data)
	return nil
}

// ReadWindow returns the ROM byte visible at the given window offset for the
// current bank. Positions at or beyond the end of the ROM read as 0.
func (a *Adapter) ReadWindow(offset uint16) byte {
	i := int(a.bank)*WindowSize + int(offset%WindowSize)
	if i >= len(a.rom) {
		return 0
	}
	return a.rom[i]
}

// WriteWindow interprets any write inside the window as a bank select: the
// written byte becomes the low byte of the bank register. Bits 8-15 are set
// through the BANKHI register.
func (a *Adapter) WriteWindow(offset uint16, data byte) {
	a.bank = a.bank&0xFF00 | uint16(data)
}

// SelectBank sets the full bank register at once.
func (a *Adapter) SelectBank(bank uint16) {
	a.bank = bank
}

func (a *Adapter) Bank() uint16 {
	return a.bank
}

// SetKey records a keyboard event for the running program to pick up.
func (a *Adapter) SetKey(scancode byte, intID byte) {
	a.keyb = scancode
	a.intID = intID
}

// SetMouse records the cursor position. Movement only updates the
// registers; it raises no interrupt.
func (a *Adapter) SetMouse(x byte, y byte) {
	a.mouseX = x
	a.mouseY = y
}

// SetClick records a mouse button event for the running program to pick up.
func (a *Adapter) SetClick(intID byte) {
	a.intID = intID
}

func (a *Adapter) readRegister(reg uint16) byte {
	switch reg {
	case regPortA:
		return a.portA
	case regPortB:
		return a.portB
	case regKeyb:
		return a.keyb
	case regIntID:
		return a.intID
	case regBankLo:
		return byte(a.bank)
	case regBankHi:
		return byte(a.bank >> 8)
	case regRandom:
		return byte(a.rng.Intn(0x100))
	case regMouseX:
		return a.mouseX
	case regMouseY:
		return a.mouseY
	default:
		glog.Infof("Unknown adapter register read: 0x%02x", reg)
		return 0
	}
}

func (a *Adapter) writeRegister(reg uint16, data byte) {
	switch reg {
	case regPortA:
		a.portA = data
	case regPortB:
		a.portB = data
	case regKeyb:
		a.keyb = data
	case regIntID:
		a.intID = data
	case regBankLo:
		a.bank = a.bank&0xFF00 | uint16(data)
	case regBankHi:
		a.bank = a.bank&0x00FF | uint16(data)<<8
	case regRandom:
		glog.Infof("Discarding write to the random source: data=0x%02x", data)
	case regMouseX:
		a.mouseX = data
	case regMouseY:
		a.mouseY = data
	default:
		glog.Infof("Unknown adapter register write: reg=0x%02x, data=0x%02x", reg, data)
	}
}
