// Package wire defines the message envelope and channel abstraction used
// between the shade client and the privileged theme host.
package wire

import (
	"encoding/json"
	"errors"
)

// Operation and event names understood by the host and client. Outbound
// operations carry a request id as their first argument (except
// OpReloadRequired, which expects no reply). Inbound events echo the id back.
const (
	OpListThemes      = "list-themes"
	OpActiveThemeInfo = "active-theme-info"
	OpActivateTheme   = "activate-theme"
	OpReloadRequired  = "reload-app-required"

	EvThemesList      = "themes-list"
	EvActiveThemeInfo = "active-theme-info"
	EvThemeActivated  = "theme-activated"
	EvError           = "error"
)

// ErrChannelClosed is returned by Send after a channel has been closed.
var ErrChannelClosed = errors.New("wire: channel closed")

// Outcome is the host's answer to an activation request. When Reload is set
// the UI must restart and ThemeFile need not be consulted; otherwise
// ThemeFile identifies the stylesheet to load immediately.
type Outcome struct {
	Reload    bool   `json:"reload"`
	ThemeFile string `json:"themeFile,omitempty"`
}

// Message is a single named event with positional arguments.
type Message struct {
	Op   string
	Args []any
}

// Arg returns the i-th argument, or nil if the message is shorter.
func (m Message) Arg(i int) any {
	if i < 0 || i >= len(m.Args) {
		return nil
	}
	return m.Args[i]
}

// Channel is an asynchronous, ordered, bidirectional transport. Send is
// fire-and-forget: it reports delivery-to-transport errors only, never waits
// for a reply. Inbound messages are delivered one at a time to the handler
// registered with Bind.
type Channel interface {
	Send(op string, args ...any) error
	Bind(handler func(Message))
	Close() error
}

// Uint64 coerces a positional argument into a request id. Transports that
// round-trip through JSON deliver numbers as float64; the D-Bus bridge
// delivers them as typed integers.
func Uint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return uint64(i), true
	default:
		return 0, false
	}
}

// String coerces a positional argument into a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Remarshal converts a decoded argument (typically a map[string]any from a
// JSON round-trip) into the given concrete payload type.
func Remarshal(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
