package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/shade/internal/wire"
)

// Host is the host end of the D-Bus channel. It claims the well-known bus
// name and presents each connecting client (keyed by unique bus name) to the
// attach callback as its own wire.Channel.
type Host struct {
	logger *slog.Logger
	attach func(wire.Channel)

	conn *dbus.Conn

	mu      sync.Mutex
	conns   map[string]*hostConn
	running bool
}

// NewHost creates a host bridge. attach is invoked once per client, before
// that client's first message is delivered.
func NewHost(attach func(wire.Channel), logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		logger: logger,
		attach: attach,
		conns:  make(map[string]*hostConn),
	}
}

// Start connects to the session bus, exports the channel object and claims
// the well-known name.
func (h *Host) Start() error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return fmt.Errorf("host already running")
	}
	h.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("connect to session bus: %w", err)
	}
	h.conn = conn

	if err := conn.Export(bridge{h}, ObjectPath, Interface); err != nil {
		return fmt.Errorf("export channel object: %w", err)
	}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: channelMethods(),
				Signals: channelSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	h.logger.Info("dbus channel started", "name", BusName, "path", ObjectPath)
	return nil
}

// Stop releases the bus name. The shared session bus connection stays open.
func (h *Host) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}
	h.running = false

	if h.conn != nil {
		if _, err := h.conn.ReleaseName(BusName); err != nil {
			h.logger.Warn("failed to release bus name", "error", err)
		}
	}
	h.logger.Info("dbus channel stopped")
	return nil
}

// bridge limits the exported surface to the Deliver method.
type bridge struct {
	host *Host
}

// Deliver receives one client message.
// D-Bus method: Deliver(ss) -> nothing
func (b bridge) Deliver(sender dbus.Sender, op string, argsJSON string) *dbus.Error {
	args, err := decodeArgs(argsJSON)
	if err != nil {
		return dbus.MakeFailedError(fmt.Errorf("malformed args: %w", err))
	}

	hc := b.host.connFor(string(sender))
	hc.deliver(wire.Message{Op: op, Args: args})
	return nil
}

// connFor returns the channel for a client, creating and attaching it on
// first contact.
func (h *Host) connFor(sender string) *hostConn {
	h.mu.Lock()
	hc, ok := h.conns[sender]
	if !ok {
		hc = &hostConn{host: h, dest: sender}
		h.conns[sender] = hc
	}
	h.mu.Unlock()

	if !ok {
		h.logger.Debug("client connected", "sender", sender)
		h.attach(hc)
	}
	return hc
}

// hostConn is the per-client wire.Channel presented to the service.
type hostConn struct {
	host *Host
	dest string

	mu      sync.Mutex
	handler func(wire.Message)
}

func (hc *hostConn) Send(op string, args ...any) error {
	argsJSON, err := encodeArgs(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	return hc.host.conn.Emit(ObjectPath, eventSignal, hc.dest, op, argsJSON)
}

func (hc *hostConn) Bind(handler func(wire.Message)) {
	hc.mu.Lock()
	hc.handler = handler
	hc.mu.Unlock()
}

func (hc *hostConn) deliver(msg wire.Message) {
	hc.mu.Lock()
	handler := hc.handler
	hc.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

func (hc *hostConn) Close() error {
	hc.host.mu.Lock()
	delete(hc.host.conns, hc.dest)
	hc.host.mu.Unlock()
	return nil
}

// channelMethods returns the D-Bus method introspection data.
func channelMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Deliver",
			Args: []introspect.Arg{
				{Name: "op", Type: "s", Direction: "in"},
				{Name: "args_json", Type: "s", Direction: "in"},
			},
		},
	}
}

// channelSignals returns the D-Bus signal introspection data.
func channelSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: eventMember,
			Args: []introspect.Arg{
				{Name: "destination", Type: "s"},
				{Name: "op", Type: "s"},
				{Name: "args_json", Type: "s"},
			},
		},
	}
}
