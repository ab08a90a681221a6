package convert

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered image format, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	if img.Bounds().Empty() {
		return nil, errors.Wrap(ErrDecode, "image has no pixels")
	}
	return img, nil
}
