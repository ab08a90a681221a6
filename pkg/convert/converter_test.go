package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gray4bin/pkg/bitmap"
)

func fill(img interface {
	image.Image
	Set(x, y int, c color.Color)
}, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func TestConvertUniform(t *testing.T) {
	tests := []struct {
		name string
		img  func() image.Image
		want byte
	}{
		{"gray black", func() image.Image { return image.NewGray(image.Rect(0, 0, 128, 64)) }, 0x00},
		{"gray white", func() image.Image {
			img := image.NewGray(image.Rect(0, 0, 128, 64))
			fill(img, color.White)
			return img
		}, 0xFF},
		{"rgba black", func() image.Image {
			img := image.NewRGBA(image.Rect(0, 0, 128, 64))
			fill(img, color.Black)
			return img
		}, 0x00},
		{"nrgba white", func() image.Image {
			img := image.NewNRGBA(image.Rect(0, 0, 128, 64))
			fill(img, color.White)
			return img
		}, 0xFF},
		{"transparent", func() image.Image { return image.NewNRGBA(image.Rect(0, 0, 128, 64)) }, 0xFF},
		{"paletted black", func() image.Image {
			return image.NewPaletted(image.Rect(0, 0, 128, 64), color.Palette{color.Black, color.White})
		}, 0x00},
		{"upscaled white", func() image.Image {
			img := image.NewGray(image.Rect(0, 0, 3, 5))
			fill(img, color.White)
			return img
		}, 0xFF},
		{"downscaled black", func() image.Image { return image.NewGray(image.Rect(0, 0, 640, 480)) }, 0x00},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := c.Convert(tt.img())
			require.NoError(t, err)
			assert.Equal(t, bytes.Repeat([]byte{tt.want}, bitmap.Size), buf)
		})
	}
}

func TestConvertAnySize(t *testing.T) {
	sources := []image.Image{
		image.NewGray(image.Rect(0, 0, 1, 1)),
		image.NewGray16(image.Rect(0, 0, 7, 3)),
		image.NewRGBA(image.Rect(0, 0, 129, 65)),
		image.NewNRGBA64(image.Rect(5, 5, 300, 17)),
		image.NewCMYK(image.Rect(0, 0, 64, 128)),
		image.NewYCbCr(image.Rect(0, 0, 33, 21), image.YCbCrSubsampleRatio420),
		image.NewPaletted(image.Rect(0, 0, 1000, 2), color.Palette{color.Transparent}),
	}

	for name, f := range filters {
		c := New(WithFilter(f))
		for _, src := range sources {
			buf, err := c.Convert(src)
			require.NoError(t, err, "%s %T %v", name, src, src.Bounds())
			assert.Len(t, buf, bitmap.Size)
		}
	}
}

func TestConvertLeftRightHalves(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 256, 128))
	fill(img.SubImage(image.Rect(128, 0, 256, 128)).(*image.Gray), color.White)

	buf, err := New().Convert(img)
	require.NoError(t, err)

	for y := 0; y < bitmap.Height; y++ {
		row := buf[y*bitmap.Width/2 : (y+1)*bitmap.Width/2]
		assert.Equal(t, byte(0x00), row[0], "row %d", y)
		assert.Equal(t, byte(0xFF), row[len(row)-1], "row %d", y)
	}
}

func TestConvertEmpty(t *testing.T) {
	_, err := New().Convert(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.True(t, errors.Is(err, ErrDecode))

	_, err = New().Convert(nil)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestFlatten(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0xFF})

	flat := Flatten(img)
	assert.Equal(t, color.Gray{Y: 255}, color.GrayModel.Convert(flat.At(0, 0)))
	assert.Equal(t, color.Gray{Y: 0}, color.GrayModel.Convert(flat.At(1, 0)))
	_, _, _, a := flat.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xFFFF), a)

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	assert.Same(t, gray, Flatten(gray))
}

func TestFlattenHalfAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 0x80})

	y := color.GrayModel.Convert(Flatten(img).At(0, 0)).(color.Gray).Y
	assert.InDelta(t, 127, int(y), 1)
}

func TestHasAlpha(t *testing.T) {
	assert.True(t, HasAlpha(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	assert.True(t, HasAlpha(image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	assert.True(t, HasAlpha(image.NewAlpha(image.Rect(0, 0, 1, 1))))
	assert.True(t, HasAlpha(image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.White})))
	assert.False(t, HasAlpha(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.False(t, HasAlpha(image.NewYCbCr(image.Rect(0, 0, 1, 1), image.YCbCrSubsampleRatio444)))
}

func TestGrayscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 3, 5, 4))
	img.Set(2, 3, color.RGBA{R: 0xFF, A: 0xFF})
	img.Set(3, 3, color.RGBA{G: 0xFF, A: 0xFF})
	img.Set(4, 3, color.RGBA{B: 0xFF, A: 0xFF})

	gray := Grayscale(img)
	assert.Equal(t, image.Rect(0, 0, 3, 1), gray.Bounds())
	assert.Equal(t, []uint8{76, 150, 29}, gray.Pix)
}

func TestResizeExact(t *testing.T) {
	c := New(WithFilter(imaging.Lanczos))

	same := image.NewGray(image.Rect(0, 0, bitmap.Width, bitmap.Height))
	assert.Same(t, same, c.Resize(same))

	out := c.Resize(image.NewGray(image.Rect(0, 0, 17, 900)))
	assert.Equal(t, image.Rect(0, 0, bitmap.Width, bitmap.Height), out.Bounds())
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("Lanczos")
	require.NoError(t, err)
	assert.Equal(t, imaging.Lanczos.Support, f.Support)

	_, err = ParseFilter("bicubic-ish")
	assert.True(t, errors.Is(err, ErrArgument))

	assert.Equal(t, []string{"box", "catmullrom", "lanczos", "linear", "nearest"}, FilterNames())
	assert.Contains(t, FilterNames(), DefaultFilter)
}

func TestDecode(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, err = Decode(bytes.NewReader([]byte("definitely not an image")))
	assert.True(t, errors.Is(err, ErrDecode))
}
