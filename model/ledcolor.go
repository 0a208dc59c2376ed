package model

import (
	"image/color"
)

// DFLT_BRIGHTNESS is the fraction every channel is scaled by before a
// numeral reaches the matrix.
const DFLT_BRIGHTNESS float32 = 0.1

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

const rgbMask uint32 = 0xFFFFFF

// ColorVal is a packed 24-bit 0xRRGGBB value.
type ColorVal struct {
	val uint32
}

var Black = NewColor(0x000000)

func NewColor(c uint32) ColorVal {
	return ColorVal{val: c & rgbMask}
}

func (c ColorVal) Color() uint32 {
	return c.val
}

func (c ColorVal) IsBlack() bool {
	return c.val == 0
}

func (c ColorVal) ToRGB() color.NRGBA {
	return color.NRGBA{R: c.GetR(), G: c.GetG(), B: c.GetB(), A: 255}
}

// Scale multiplies each channel by s independently and truncates the result.
// The float32 product matches what an 8-bit channel times a single-precision
// factor yields on the original hardware, so 255*0.1 is 25, not 26.
func (c ColorVal) Scale(s float32) ColorVal {
	if s >= 1.0 {
		return c
	}
	if s <= 0.0 {
		return Black
	}

	v := NewColor(0)
	v.SetR(uint8(float32(c.GetR()) * s))
	v.SetG(uint8(float32(c.GetG()) * s))
	v.SetB(uint8(float32(c.GetB()) * s))
	return v
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *ColorVal) SetR(r uint8) {
	c.val = setcolor(c.val, r, RED_OFFSET)
}
func (c *ColorVal) SetG(g uint8) {
	c.val = setcolor(c.val, g, GREEN_OFFSET)

}
func (c *ColorVal) SetB(b uint8) {
	c.val = setcolor(c.val, b, BLUE_OFFSET)
}

func (c ColorVal) GetR() uint8 {
	return getcolor(c.val, RED_OFFSET)
}
func (c ColorVal) GetG() uint8 {
	return getcolor(c.val, GREEN_OFFSET)

}
func (c ColorVal) GetB() uint8 {
	return getcolor(c.val, BLUE_OFFSET)
}

// Serialize returns the colour as R, G, B bytes, the layout nrzled expects.
func (c ColorVal) Serialize() []byte {
	return []byte{c.GetR(), c.GetG(), c.GetB()}
}
