// Package ws carries the theme protocol over a WebSocket connection using
// JSON frames of the form {"op": ..., "args": [...]}.
package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/shade/internal/wire"
)

// frame is the on-the-wire message encoding.
type frame struct {
	Op   string `json:"op"`
	Args []any  `json:"args,omitempty"`
}

// Conn adapts a WebSocket connection to wire.Channel. Sends are serialized;
// inbound frames are delivered in arrival order from a single read loop.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	handler func(wire.Message)
	reading bool

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn wraps an established WebSocket connection.
func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		ws:     ws,
		logger: logger,
		closed: make(chan struct{}),
	}
}

// Dial connects to a shade host at url (ws://host:port/channel).
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(ws, logger), nil
}

// Send writes one frame. It is fire-and-forget: a nil return means the
// frame was handed to the transport, not that the peer processed it.
func (c *Conn) Send(op string, args ...any) error {
	select {
	case <-c.closed:
		return wire.ErrChannelClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(frame{Op: op, Args: args})
}

// Bind registers the inbound handler and starts the read loop.
func (c *Conn) Bind(handler func(wire.Message)) {
	c.mu.Lock()
	c.handler = handler
	start := !c.reading
	c.reading = true
	c.mu.Unlock()

	if start {
		go c.readLoop()
	}
}

func (c *Conn) readLoop() {
	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			select {
			case <-c.closed:
			default:
				c.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(wire.Message{Op: f.Op, Args: f.Args})
		}
	}
}

// Close shuts the connection down.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.ws.Close()
	})
	return err
}
