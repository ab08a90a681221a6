package main

import (
	"io"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gray4bin/pkg/bitmap"
	"gray4bin/pkg/convert"
	"gray4bin/pkg/device/remote"
	"gray4bin/pkg/device/ssd1322"
	"gray4bin/pkg/device/virtual"
	"gray4bin/pkg/proto"
	"gray4bin/pkg/storage"
)

func newRunner(opts *options, loader *storage.Loader, writer *storage.Writer, conv *convert.Converter, logger *zap.Logger) *runner {
	return &runner{
		opts:   opts,
		loader: loader,
		writer: writer,
		conv:   conv,
		log:    logger,
	}
}

type runner struct {
	opts   *options
	loader *storage.Loader
	writer *storage.Writer
	conv   *convert.Converter
	log    *zap.Logger
}

func (r *runner) Run() error {
	frame, err := r.convert()
	if err != nil {
		return err
	}

	sinks, closers, err := r.openSinks()
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if err != nil {
		return err
	}

	for _, s := range sinks {
		if err := s.Send(frame); err != nil {
			return errors.Wrapf(err, "send to %s failed", s.Name())
		}
		r.log.With(zap.String("sink", s.Name())).Debug("sent")
	}

	if r.opts.preview != "" && !r.opts.dryRun {
		img, err := bitmap.Decode(frame)
		if err != nil {
			return err
		}
		if err := r.writer.WriteImage(r.opts.preview, img); err != nil {
			return errors.Wrap(err, "write preview failed")
		}
	}

	r.log.With(
		zap.String("source", r.opts.target.Source),
		zap.String("output", r.opts.target.Output()),
		zap.String("size", bytesize.New(float64(len(frame))).String()),
		zap.Bool("dry-run", r.opts.dryRun),
	).Info("image successfully converted")
	return nil
}

func (r *runner) convert() ([]byte, error) {
	src := r.opts.target.Source

	rc, err := r.loader.Open(src)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()

	img, err := convert.Decode(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s failed", src)
	}

	return r.conv.Convert(img)
}

// openSinks returns every destination of the frame. Closers are returned even
// on error so partially opened devices get released.
func (r *runner) openSinks() ([]proto.Sink, []io.Closer, error) {
	if r.opts.dryRun {
		return []proto.Sink{virtual.Mock(r.log.With(zap.String("via", "dry-run")))}, nil, nil
	}

	sinks := []proto.Sink{r.writer.Sink(r.opts.target.Output())}
	var closers []io.Closer

	if r.opts.serial != "" {
		s := proto.NewSerial(r.opts.serial)
		if err := s.Open(&proto.Options{DTR: true, RTS: true, BaudRate: r.opts.baud}); err != nil {
			return nil, closers, err
		}
		closers = append(closers, s)
		sinks = append(sinks, s)
	}

	if r.opts.spi != "" {
		d, err := ssd1322.Open(r.opts.spi, r.opts.dc, r.log.With(zap.String("via", "ssd1322")))
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, d)
		sinks = append(sinks, d)
	}

	if r.opts.remote != "" {
		c, err := remote.New(r.opts.remote)
		if err != nil {
			return nil, closers, errors.Wrapf(err, "dial %s failed", r.opts.remote)
		}
		closers = append(closers, c)
		sinks = append(sinks, c)
	}

	return sinks, closers, nil
}
