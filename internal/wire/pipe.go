package wire

import "sync"

// pipeBuffer is the per-direction queue depth of an in-memory pipe.
const pipeBuffer = 64

// PipeEnd is one side of an in-memory channel pair.
type PipeEnd struct {
	out chan Message
	in  chan Message

	mu      sync.Mutex
	handler func(Message)
	looping bool

	closeOnce sync.Once
	closed    chan struct{}
}

// Pipe returns a connected pair of in-memory channels with ordered
// asynchronous delivery. Messages sent before the receiving side calls Bind
// are buffered. Used by tests and for embedding the host in-process.
func Pipe() (*PipeEnd, *PipeEnd) {
	ab := make(chan Message, pipeBuffer)
	ba := make(chan Message, pipeBuffer)
	a := &PipeEnd{out: ab, in: ba, closed: make(chan struct{})}
	b := &PipeEnd{out: ba, in: ab, closed: make(chan struct{})}
	return a, b
}

// Send enqueues a message for the peer. It never waits for the peer's
// handler; it fails only if this end is closed. A full buffer blocks Send
// until the peer drains a message or this end closes.
func (e *PipeEnd) Send(op string, args ...any) error {
	select {
	case <-e.closed:
		return ErrChannelClosed
	default:
	}
	select {
	case e.out <- Message{Op: op, Args: args}:
		return nil
	case <-e.closed:
		return ErrChannelClosed
	}
}

// Bind registers the inbound handler and starts delivery. Messages are
// delivered one at a time, in send order.
func (e *PipeEnd) Bind(handler func(Message)) {
	e.mu.Lock()
	e.handler = handler
	start := !e.looping
	e.looping = true
	e.mu.Unlock()

	if start {
		go e.loop()
	}
}

func (e *PipeEnd) loop() {
	for {
		select {
		case <-e.closed:
			return
		case msg := <-e.in:
			e.mu.Lock()
			handler := e.handler
			e.mu.Unlock()
			if handler != nil {
				handler(msg)
			}
		}
	}
}

// Close stops delivery on this end. The peer keeps its own lifecycle.
func (e *PipeEnd) Close() error {
	e.closeOnce.Do(func() { close(e.closed) })
	return nil
}
