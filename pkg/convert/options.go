package convert

import (
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

type Option func(c *Converter)

func WithFilter(f imaging.ResampleFilter) Option {
	return func(c *Converter) {
		c.filter = f
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		c.log = log
	}
}
