package storage

import (
	"bytes"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"gray4bin/pkg/proto"
)

func NewWriter(fs afero.Fs, logger *zap.Logger) *Writer {
	return &Writer{fs: fs, log: logger}
}

// Writer stores files through a temporary sibling that is renamed into place,
// so readers never observe a partial file.
type Writer struct {
	fs  afero.Fs
	log *zap.Logger
}

func (w *Writer) Write(name string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(name), "."+xid.New().String()+".tmp")

	if err := afero.WriteFile(w.fs, tmp, data, 0644); err != nil {
		_ = w.fs.Remove(tmp)
		return errors.Wrapf(err, "write %s failed", name)
	}

	if err := w.fs.Rename(tmp, name); err != nil {
		_ = w.fs.Remove(tmp)
		return errors.Wrapf(err, "write %s failed", name)
	}

	w.log.With(
		zap.String("file", name),
		zap.String("size", bytesize.New(float64(len(data))).String()),
	).Debug("saved")
	return nil
}

// WriteImage stores img as PNG.
func (w *Writer) WriteImage(name string, img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return errors.Wrap(err, "encode png failed")
	}
	return w.Write(name, buf.Bytes())
}

// Sink adapts the writer to a proto.Sink storing every frame at name.
func (w *Writer) Sink(name string) proto.Sink {
	return &fileSink{w: w, name: name}
}

type fileSink struct {
	w    *Writer
	name string
}

func (s *fileSink) Name() string {
	return "file:" + s.name
}

func (s *fileSink) Send(frame []byte) error {
	return s.w.Write(s.name, frame)
}
