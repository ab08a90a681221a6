// Package ssd1322 pushes packed frames to a 128x64 SSD1322 OLED panel over
// 4-wire SPI.
package ssd1322

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"gray4bin/pkg/bitmap"
	"gray4bin/pkg/proto"
)

const (
	cmdSetColumn = 0x15
	cmdSetRow    = 0x75
	cmdWriteRAM  = 0x5C
	cmdDisplayOn = 0xAF

	// The panel maps every pixel onto two controller segments, so the
	// 128 pixel row spans column addresses 0x1C..0x5B.
	columnStart = 0x1C
	columnEnd   = 0x5B
	rowStart    = 0x00
	rowEnd      = bitmap.Height - 1
)

// initSequence brings the controller up for a 128x64 panel. Each entry is a
// command byte followed by its parameters.
var initSequence = [][]byte{
	{cmdDisplayOn},
	{0xFD, 0x12},       // unlock
	{0xB3, 0x91},       // clock divider
	{0xCA, 0x3F},       // multiplex ratio
	{0xA2, 0x00},       // display offset
	{0xAB, 0x01},       // internal VDD
	{0xA1, 0x00},       // start line
	{0xA0, 0x16, 0x11}, // remap, dual COM
	{0xC7, 0x0F},       // master contrast
	{0xC1, 0x9F},       // contrast
	{0xB1, 0x72},       // phase length
	{0xBB, 0x1F},       // precharge voltage
	{0xB4, 0xA0, 0xFD}, // external VSL
	{0xBE, 0x04},       // VCOMH
	{0xA6},             // normal display
	{0xA9},             // exit partial display
	{0xD1, 0xA2, 0x20}, // display enhancement
	{0xB5, 0x00},       // GPIO
	{0xB9},             // default grayscale table
	{0xB6, 0x08},       // second precharge
	{cmdDisplayOn},
}

var _ proto.Sink = (*Dev)(nil)

// Dev is an initialized panel.
type Dev struct {
	c      conn.Conn
	dc     gpio.PinOut
	port   io.Closer
	name   string
	buf    []byte
	logger *zap.Logger
}

// Open initializes the host drivers, opens the SPI bus and the data/command
// pin by name and runs the panel init sequence. An empty bus selects the
// first SPI port found.
func Open(bus, dc string, logger *zap.Logger) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init host drivers failed")
	}

	pin := gpioreg.ByName(dc)
	if pin == nil {
		return nil, errors.Errorf("gpio %q not found", dc)
	}

	p, err := spireg.Open(bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open spi %q failed", bus)
	}

	d, err := New(p, pin, logger)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.port = p
	return d, nil
}

// New connects to p at 10MHz in mode 0 and runs the panel init sequence.
func New(p spi.Port, dc gpio.PinOut, logger *zap.Logger) (*Dev, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, errors.Wrap(err, "connect spi failed")
	}
	return newDev(c, dc, logger)
}

func newDev(c conn.Conn, dc gpio.PinOut, logger *zap.Logger) (*Dev, error) {
	d := &Dev{
		c:      c,
		dc:     dc,
		name:   fmt.Sprintf("ssd1322:%s", c),
		buf:    make([]byte, bitmap.Width*bitmap.Height),
		logger: logger,
	}

	for _, cmd := range initSequence {
		if err := d.command(cmd[0], cmd[1:]...); err != nil {
			return nil, errors.Wrap(err, "init ssd1322 failed")
		}
	}

	logger.With(zap.String("conn", c.String())).Debug("ssd1322 ready")
	return d, nil
}

func (d *Dev) Name() string {
	return d.name
}

// Send writes a packed 4096-byte frame to the whole display RAM.
func (d *Dev) Send(frame []byte) error {
	if len(frame) != bitmap.Size {
		return errors.Wrapf(bitmap.ErrSizeMismatch, "got %d bytes, want %d", len(frame), bitmap.Size)
	}

	for i, b := range frame {
		hi, lo := b>>4, b&0x0F
		d.buf[2*i] = hi<<4 | hi
		d.buf[2*i+1] = lo<<4 | lo
	}

	if err := d.command(cmdSetColumn, columnStart, columnEnd); err != nil {
		return err
	}
	if err := d.command(cmdSetRow, rowStart, rowEnd); err != nil {
		return err
	}
	return d.command(cmdWriteRAM, d.buf...)
}

// Close releases the SPI port opened by Open.
func (d *Dev) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

// command sends cmd with DC low, then its parameters with DC high.
func (d *Dev) command(cmd byte, params ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "set dc low failed")
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return errors.Wrapf(err, "command %#02x failed", cmd)
	}
	if len(params) == 0 {
		return nil
	}

	if err := d.dc.Out(gpio.High); err != nil {
		return errors.Wrap(err, "set dc high failed")
	}
	return d.data(params)
}

// data splits w to fit the transfer size the connection accepts.
func (d *Dev) data(w []byte) error {
	chunk := len(w)
	if l, ok := d.c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		chunk = l.MaxTxSize()
	}

	for len(w) > 0 {
		n := chunk
		if n > len(w) {
			n = len(w)
		}
		if err := d.c.Tx(w[:n], nil); err != nil {
			return errors.Wrap(err, "write data failed")
		}
		w = w[n:]
	}
	return nil
}
