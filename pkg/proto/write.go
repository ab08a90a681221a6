package proto

import (
	"io"

	"github.com/pkg/errors"
)

func writeFull(w io.Writer, frame []byte) error {
	for len(frame) > 0 {
		n, err := w.Write(frame)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.Wrap(io.ErrShortWrite, "device accepted no bytes")
		}
		frame = frame[n:]
	}
	return nil
}
