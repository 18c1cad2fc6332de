package machine

const ramSize = 0x2000

type RAM struct {
	data [ramSize]byte
}

// NewRAM creates the 8 KiB work RAM, which also holds the zero page and the
// stack page (0x0100 - 0x01FF).
func NewRAM() *RAM {
	return &RAM{}
}

func (r *RAM) read(address uint16) byte {
	return r.data[address]
}

func (r *RAM) write(address uint16, x byte) {
	r.data[address] = x
}
