// Package convert turns decoded images into packed 128x64 4-bit frames.
//
// The pipeline is fixed: transparency is flattened over white, the result is
// reduced to luma, stretched to 128x64 and finally quantized and packed by
// package bitmap.
package convert

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gray4bin/pkg/bitmap"
)

func New(opts ...Option) *Converter {
	c := &Converter{
		filter: imaging.Box,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Converter holds no per-call state and is safe for concurrent use.
type Converter struct {
	filter imaging.ResampleFilter
	log    *zap.Logger
}

// Convert returns the bitmap.Size byte frame for src.
func (c *Converter) Convert(src image.Image) ([]byte, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errors.Wrap(ErrDecode, "image has no pixels")
	}

	b := src.Bounds()
	log := c.log.With(zap.Int("w", b.Dx()), zap.Int("h", b.Dy()))

	log.With(zap.Bool("alpha", HasAlpha(src))).Debug("normalize")

	resized := c.Resize(Grayscale(Flatten(src)))

	buf, err := bitmap.Encode(resized)
	if err != nil {
		return nil, errors.Wrap(err, "pack frame failed")
	}

	log.With(zap.Int("bytes", len(buf))).Debug("packed")
	return buf, nil
}

// Resize stretches img to exactly bitmap.Width x bitmap.Height.
func (c *Converter) Resize(img *image.Gray) *image.Gray {
	if img.Bounds().Dx() == bitmap.Width && img.Bounds().Dy() == bitmap.Height {
		return img
	}
	return toGray(imaging.Resize(img, bitmap.Width, bitmap.Height, c.filter))
}
