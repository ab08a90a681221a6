package convert

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"
)

var alphaModels = []color.Model{
	color.RGBAModel,
	color.RGBA64Model,
	color.NRGBAModel,
	color.NRGBA64Model,
	color.AlphaModel,
	color.Alpha16Model,
	color.NYCbCrAModel,
}

// HasAlpha reports whether img is palette indexed or stores transparency.
func HasAlpha(img image.Image) bool {
	m := img.ColorModel()
	if _, ok := m.(color.Palette); ok {
		return true
	}
	return lo.Contains(alphaModels, m)
}

// Flatten composites img over an opaque white canvas of the same size.
// Images without transparency are returned unchanged.
func Flatten(img image.Image) image.Image {
	if !HasAlpha(img) {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Grayscale reduces an opaque image to one luma channel using the
// 0.299, 0.587, 0.114 weights.
func Grayscale(img image.Image) *image.Gray {
	return toGray(imaging.Grayscale(img))
}

// toGray keeps the red channel of an NRGBA whose channels are already equal.
// imaging always returns images anchored at the origin.
func toGray(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out[x] = row[x*4]
		}
	}
	return dst
}
