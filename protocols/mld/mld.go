// Package mld declares the Multicast Listener Discovery header kind bound
// as ICMPv6 type 130's default upper layer: a fixed 20-byte body with no
// source-address list, as opposed to mld's sibling package mlq (Multicast
// Listener Query), whose trailing source list the binding registry detects
// by tail length. Grounded on RFC 2710 §3's wire layout.
package mld

import (
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the MLD header kind.
const ID header.ID = "mld"

// Kind is the MLD message body: maximum response delay, reserved, and the
// multicast address being reported on.
var Kind = header.NewKind("MLD", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "max_response_delay", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "reserved", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "multicast_address", Codec: field.IPv6})
}
