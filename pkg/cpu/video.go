package cpu

import (
	"image"
	"image/png"
	"os"

	"hackvm/pkg/grid"
)

const (
	ScreenWidth  = 512
	ScreenHeight = 256

	wordsPerRow = ScreenWidth / 16
)

// Pixel reports whether the screen pixel at (x, y) is set (black).
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	word := c.RAM[ScreenBase+y*wordsPerRow+x/16]
	return word>>(x%16)&1 == 1
}

// ScreenRGBA decodes the memory-mapped screen into a 512×256 RGBA8888 byte
// slice. Bit 0 of each word is the leftmost of its 16 pixels; a set bit is
// black, a clear bit white.
func (c *CPU) ScreenRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenSize; i++ {
		word := c.RAM[ScreenBase+i]
		col, row := grid.GetGridCoords(i, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			var v byte = 0xFF
			if word>>bit&1 == 1 {
				v = 0x00
			}
			idx := (row*ScreenWidth + col*16 + bit) * 4
			pixels[idx+0] = v
			pixels[idx+1] = v
			pixels[idx+2] = v
			pixels[idx+3] = 0xFF
		}
	}
	return pixels
}

// ScreenImage returns the current screen as an *image.RGBA.
func (c *CPU) ScreenImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.ScreenRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the current screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.ScreenImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
