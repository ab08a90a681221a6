// Package bitmap packs 8-bit grayscale frames into the 128x64, 4 bits per
// pixel layout expected by SSD1322 class OLED panels.
//
// Each output byte holds two horizontally adjacent pixels, left pixel in the
// high nibble. Rows are stored top to bottom without padding or header:
//
//	pixels: 0x00 0x5F 0xA0 0xFF
//	nibble:    0    5    A    F
//	bytes:     0x05      0xAF
package bitmap

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

const (
	Width  = 128
	Height = 64
	Size   = Width * Height / 2
)

var ErrSizeMismatch = errors.New("bitmap size mismatch")

// Quantize maps an 8-bit intensity to 4 bits by truncating division.
func Quantize(v uint8) uint8 {
	return v / 16
}

// Pack stores hi in the high nibble and lo in the low nibble.
func Pack(hi, lo uint8) byte {
	return hi<<4 | lo&0x0F
}

// Unpack is the inverse of Pack.
func Unpack(b byte) (hi, lo uint8) {
	return b >> 4, b & 0x0F
}

// Encode quantizes and packs a Width x Height grayscale frame.
func Encode(src image.Image) ([]byte, error) {
	b := src.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return nil, errors.Wrapf(ErrSizeMismatch, "frame is %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}

	buf := make([]byte, 0, Size)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			buf = append(buf, Pack(Quantize(grayAt(src, x, y)), Quantize(grayAt(src, x+1, y))))
		}
	}

	if len(buf) != Size {
		return nil, errors.Wrapf(ErrSizeMismatch, "packed %d bytes, want %d", len(buf), Size)
	}

	return buf, nil
}

// Decode copies a packed frame into a new 128x64 Gray4 image.
func Decode(buf []byte) (*Gray4, error) {
	if len(buf) != Size {
		return nil, errors.Wrapf(ErrSizeMismatch, "got %d bytes, want %d", len(buf), Size)
	}

	d := NewGray4(image.Rect(0, 0, Width, Height))
	copy(d.pixels, buf)
	return d, nil
}

func grayAt(src image.Image, x, y int) uint8 {
	if g, ok := src.(*image.Gray); ok {
		return g.GrayAt(x, y).Y
	}
	return color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y
}
