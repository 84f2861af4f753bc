// Package arp declares the Address Resolution Protocol header kind for the
// Ethernet/IPv4 case (hardware type 1, protocol type IPv4), grounded on
// soypat-dgrams' ARPv4Header layout.
package arp

import (
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the ARP header kind.
const ID header.ID = "arp"

const (
	OperRequest = 1
	OperReply   = 2
)

// Kind is the ARP header: hardware/protocol type and length, operation,
// sender and target hardware/protocol addresses. A terminal header: ARP
// carries no upper-layer payload.
var Kind = header.NewKind("ARP", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "htype", Codec: field.Uint16BE, Default: uint16(1)})
	Kind.DefineField(header.FieldDef{Name: "ptype", Codec: field.Uint16BE, Default: uint16(0x0800)})
	Kind.DefineField(header.FieldDef{Name: "hlen", Codec: field.Uint8, Default: uint8(6)})
	Kind.DefineField(header.FieldDef{Name: "plen", Codec: field.Uint8, Default: uint8(4)})
	Kind.DefineField(header.FieldDef{Name: "oper", Codec: field.Uint16BE, Default: uint16(OperRequest)})
	Kind.DefineField(header.FieldDef{Name: "sender_hw", Codec: field.MAC})
	Kind.DefineField(header.FieldDef{Name: "sender_proto", Codec: field.IPv4})
	Kind.DefineField(header.FieldDef{Name: "target_hw", Codec: field.MAC})
	Kind.DefineField(header.FieldDef{Name: "target_proto", Codec: field.IPv4})
}
