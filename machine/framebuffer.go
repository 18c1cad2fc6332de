package machine

import (
	"image"
	"image/color"
)

// The framebuffer is a 64x64 pixel grid, one byte per pixel, mapped at
// 0x2000 - 0x2FFF. The low nibble of each byte selects a palette entry.
const (
	FramebufferWidth  = 64
	FramebufferHeight = 64

	framebufferSize = FramebufferWidth * FramebufferHeight
)

// 16-colour palette, RGBI style.
var palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x80, 255}, {0x00, 0x80, 0x00, 255}, {0x00, 0x80, 0x80, 255},
	{0x80, 0x00, 0x00, 255}, {0x80, 0x00, 0x80, 255}, {0x80, 0x80, 0x00, 255}, {0x80, 0x80, 0x80, 255},
	{0x40, 0x40, 0x40, 255}, {0x00, 0x00, 0xFF, 255}, {0x00, 0xFF, 0x00, 255}, {0x00, 0xFF, 0xFF, 255},
	{0xFF, 0x00, 0x00, 255}, {0xFF, 0x00, 0xFF, 255}, {0xFF, 0xFF, 0x00, 255}, {0xFF, 0xFF, 0xFF, 255},
}

// Framebuffer holds the pixel grid and counts writes since the last flush so
// the scheduler can decide when a frame is worth publishing.
type Framebuffer struct {
	pixels  [framebufferSize]byte
	changes int
}

func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

func (f *Framebuffer) read(offset uint16) byte {
	return f.pixels[offset%framebufferSize]
}

// write stores a pixel and bumps the change counter. Every write counts,
// even one that stores the value already present.
func (f *Framebuffer) write(offset uint16, data byte) {
	f.pixels[offset%framebufferSize] = data
	f.changes++
}

// Changes reports the number of pixel writes since the last flush.
func (f *Framebuffer) Changes() int {
	return f.changes
}

func (f *Framebuffer) resetChanges() {
	f.changes = 0
}

// Snapshot renders the current grid into a fresh RGBA image. The returned
// image is a copy; later pixel writes do not affect it.
func (f *Framebuffer) Snapshot() *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, FramebufferWidth, FramebufferHeight))
	for y := 0; y < FramebufferHeight; y++ {
		for x := 0; x < FramebufferWidth; x++ {
			im.SetRGBA(x, y, palette[f.pixels[y*FramebufferWidth+x]&0x0F])
		}
	}
	return im
}
