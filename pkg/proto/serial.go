package proto

import (
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

type Options struct {
	DTR      bool
	RTS      bool
	BaudRate int
}

// NewSerial matches the first port whose name contains name.
func NewSerial(name string) *Serial {
	return &Serial{name: name}
}

type Serial struct {
	name string
	port serial.Port
}

func (s *Serial) Name() string {
	return "serial:" + s.name
}

func (s *Serial) Ports() ([]string, error) {
	return serial.GetPortsList()
}

func (s *Serial) Open(opts *Options) error {
	ports, err := s.Ports()
	if err != nil {
		return errors.Wrap(err, "list serial ports failed")
	}

	var matched string
	for _, name := range ports {
		if strings.Contains(name, s.name) {
			matched = name
			break
		}
	}
	if matched == "" {
		return errors.Errorf("serial port %q not found", s.name)
	}

	port, err := serial.Open(matched, &serial.Mode{BaudRate: opts.BaudRate})
	if err != nil {
		return errors.Wrapf(err, "open %s failed", matched)
	}

	if err := port.SetDTR(opts.DTR); err != nil {
		_ = port.Close()
		return err
	}

	if err := port.SetRTS(opts.RTS); err != nil {
		_ = port.Close()
		return err
	}

	s.port = port
	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

func (s *Serial) Write(p []byte) (n int, err error) {
	if s.port == nil {
		return 0, errors.New("serial port not open")
	}
	return s.port.Write(p)
}

// Send writes the whole frame, retrying short writes.
func (s *Serial) Send(frame []byte) error {
	return writeFull(s, frame)
}
