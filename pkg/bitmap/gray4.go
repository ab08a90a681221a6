package bitmap

import (
	"image"
	"image/color"
)

// NewGray4 returns a blank Gray4 covering r. It panics if r has an odd width.
func NewGray4(r image.Rectangle) *Gray4 {
	if r.Dx()%2 != 0 {
		panic("bitmap: Gray4 width must be even")
	}
	return &Gray4{
		pixels: make([]byte, r.Dx()*r.Dy()/2),
		stride: r.Dx() / 2,
		bounds: r,
	}
}

// Gray4 is a 4-bit grayscale frame packed two pixels per byte, the left pixel
// in the high nibble. It implements the draw.Image interface.
type Gray4 struct {
	pixels []byte
	stride int
	bounds image.Rectangle
}

// Bounds implements the image.Image (and draw.Image) interface.
func (d *Gray4) Bounds() image.Rectangle {
	return d.bounds
}

// ColorModel implements the image.Image (and draw.Image) interface.
func (d *Gray4) ColorModel() color.Model {
	return Gray4Model
}

// At implements the image.Image (and draw.Image) interface.
func (d *Gray4) At(x, y int) color.Color {
	return d.Gray4At(x, y)
}

func (d *Gray4) Gray4At(x, y int) Nibble {
	if !(image.Point{X: x, Y: y}).In(d.bounds) {
		return Nibble(0)
	}
	i, shift := d.offset(x, y)
	return Nibble(d.pixels[i]>>shift) & 0x0F
}

// Set implements the draw.Image interface.
func (d *Gray4) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(d.bounds) {
		return
	}
	q := Gray4Model.Convert(c).(Nibble)
	i, shift := d.offset(x, y)
	d.pixels[i] = d.pixels[i]&^(0x0F<<shift) | byte(q)<<shift
}

// Pix returns the packed frame. The slice is shared with the image.
func (d *Gray4) Pix() []byte {
	return d.pixels
}

// offset returns the byte holding (x, y) and the shift of its nibble:
// 4 for even columns, 0 for odd ones.
func (d *Gray4) offset(x, y int) (int, uint) {
	dx := x - d.bounds.Min.X
	return (y-d.bounds.Min.Y)*d.stride + dx/2, uint(4 * (1 - dx&1))
}

// Gray4Model converts any color to its 8-bit luma and keeps the upper four
// bits, the same truncation Encode applies.
var Gray4Model = color.ModelFunc(func(c color.Color) color.Color {
	if q, ok := c.(Nibble); ok {
		return q
	}
	return Nibble(Quantize(color.GrayModel.Convert(c).(color.Gray).Y))
})

// Nibble is a 4-bit intensity. It implements the color.Color interface.
type Nibble uint8

// RGBA implements the color.Color interface.
func (c Nibble) RGBA() (r, g, b, a uint32) {
	// 0xF * 0x1111 = 0xFFFF, so both ends of the range map exactly.
	y := uint32(c&0x0F) * 0x1111
	return y, y, y, 0xFFFF
}

// Y returns the 8-bit intensity the nibble reads back as.
func (c Nibble) Y() uint8 {
	q := uint8(c & 0x0F)
	return q<<4 | q
}
