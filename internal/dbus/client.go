package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/shade/internal/wire"
)

// Client is the client end of the D-Bus channel. Sends become Deliver calls
// on the host object; inbound messages arrive as Event signals filtered by
// our own unique bus name.
type Client struct {
	conn   *dbus.Conn
	logger *slog.Logger
	name   string

	sigCh chan *dbus.Signal

	mu      sync.Mutex
	handler func(wire.Message)
	looping bool

	closeOnce sync.Once
	closed    chan struct{}
}

// DialSession connects to the session bus and subscribes to host events.
func DialSession(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	c := &Client{
		conn:   conn,
		logger: logger,
		name:   conn.Names()[0],
		sigCh:  make(chan *dbus.Signal, 32),
		closed: make(chan struct{}),
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember(eventMember),
		dbus.WithMatchObjectPath(ObjectPath),
	); err != nil {
		return nil, fmt.Errorf("add match rule: %w", err)
	}
	conn.Signal(c.sigCh)

	logger.Debug("dbus channel connected", "name", c.name)
	return c, nil
}

// Send delivers one message to the host, fire-and-forget.
func (c *Client) Send(op string, args ...any) error {
	select {
	case <-c.closed:
		return wire.ErrChannelClosed
	default:
	}

	argsJSON, err := encodeArgs(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}

	call := c.conn.Object(BusName, ObjectPath).Call(deliverMethod, dbus.FlagNoReplyExpected, op, argsJSON)
	return call.Err
}

// Bind registers the inbound handler and starts the signal loop.
func (c *Client) Bind(handler func(wire.Message)) {
	c.mu.Lock()
	c.handler = handler
	start := !c.looping
	c.looping = true
	c.mu.Unlock()

	if start {
		go c.loop()
	}
}

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case sig, ok := <-c.sigCh:
			if !ok {
				return
			}
			c.handleSignal(sig)
		}
	}
}

func (c *Client) handleSignal(sig *dbus.Signal) {
	if sig.Name != eventSignal || len(sig.Body) < 3 {
		return
	}
	dest, _ := sig.Body[0].(string)
	op, _ := sig.Body[1].(string)
	argsJSON, _ := sig.Body[2].(string)

	// Events are broadcast; only pick up the ones addressed to us.
	if dest != c.name {
		return
	}

	args, err := decodeArgs(argsJSON)
	if err != nil {
		c.logger.Warn("malformed event args", "op", op, "error", err)
		return
	}

	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler != nil {
		handler(wire.Message{Op: op, Args: args})
	}
}

// Close stops signal delivery. The session bus connection is shared and is
// left open.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.RemoveSignal(c.sigCh)
		if err := c.conn.RemoveMatchSignal(
			dbus.WithMatchInterface(Interface),
			dbus.WithMatchMember(eventMember),
			dbus.WithMatchObjectPath(ObjectPath),
		); err != nil {
			c.logger.Warn("failed to remove match rule", "error", err)
		}
	})
	return nil
}
