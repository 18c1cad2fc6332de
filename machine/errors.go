package machine

import (
	"errors"
	"fmt"
)

// ErrROMTooLarge is returned when a cartridge image exceeds the 16 MiB the
// bank register can address.
var ErrROMTooLarge = errors.New("cartridge image exceeds 16 MiB")

// IllegalOpcodeError is returned by CPU.Step when the fetched opcode has no
// entry in the instruction table. The CPU does not try to recover; whether to
// halt or skip is up to the caller.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode byte
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02x at 0x%04x", e.Opcode, e.PC)
}
