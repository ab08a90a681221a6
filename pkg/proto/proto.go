package proto

// Sink receives finished frames.
type Sink interface {
	Name() string
	Send(frame []byte) error
}
