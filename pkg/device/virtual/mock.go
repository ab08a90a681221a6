package virtual

import (
	"fmt"
	"sync"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"

	"gray4bin/pkg/proto"
)

// Mock logs frames instead of sending them and keeps a copy of each.
func Mock(logger *zap.Logger) *Mocker {
	return &Mocker{l: logger}
}

var _ proto.Sink = (*Mocker)(nil)

type Mocker struct {
	l      *zap.Logger
	mu     sync.Mutex
	frames [][]byte
}

func (m *Mocker) Name() string {
	return "virtual"
}

func (m *Mocker) Send(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames = append(m.frames, append([]byte(nil), frame...))

	head := frame
	if len(head) > 8 {
		head = head[:8]
	}
	m.l.With(
		zap.String("size", bytesize.New(float64(len(frame))).String()),
		zap.String("head", fmt.Sprintf("%x", head)),
	).Info("frame")
	return nil
}

// Frames returns the frames received so far, oldest first.
func (m *Mocker) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.frames...)
}
