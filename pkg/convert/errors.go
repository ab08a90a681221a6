package convert

import (
	"github.com/pkg/errors"

	"gray4bin/pkg/bitmap"
)

var (
	ErrDecode       = errors.New("image decode failed")
	ErrArgument     = errors.New("invalid argument")
	ErrSizeMismatch = bitmap.ErrSizeMismatch
)
