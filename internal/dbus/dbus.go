// Package dbus carries the theme protocol over the D-Bus session bus. The
// host claims a well-known name and receives client messages through the
// Deliver method; host-to-client messages are emitted as Event signals
// addressed by the client's unique bus name.
package dbus

import (
	"encoding/json"

	"github.com/godbus/dbus/v5"
)

const (
	// BusName is the well-known name claimed by the host.
	BusName = "io.github.jmylchreest.Shade"
	// ObjectPath is the host object path.
	ObjectPath dbus.ObjectPath = "/io/github/jmylchreest/Shade"
	// Interface is the shade channel interface name.
	Interface = "io.github.jmylchreest.Shade"

	deliverMethod = Interface + ".Deliver"
	eventMember   = "Event"
	eventSignal   = Interface + "." + eventMember
)

// encodeArgs marshals positional arguments as a JSON array. Payload structs
// survive the round-trip as maps, which the protocol layers decode with
// wire.Remarshal.
func encodeArgs(args []any) (string, error) {
	if len(args) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeArgs unmarshals a JSON argument array.
func decodeArgs(s string) ([]any, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var args []any
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil, err
	}
	return args, nil
}
