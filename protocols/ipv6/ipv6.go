// Package ipv6 declares the IPv6 fixed header kind, grounded on gopcap's
// IPv6Packet (internet.go). Extension headers are out of scope, matching
// gopcap's own readRemainingHeaders comment ("we don't support any
// extension headers"); next_header is read directly as the upper-layer
// discriminator.
package ipv6

import (
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the IPv6 header kind.
const ID header.ID = "ipv6"

const (
	ProtocolTCP    = 6
	ProtocolUDP    = 17
	ProtocolICMPv6 = 58
)

// Kind is the IPv6 fixed header: version+traffic-class+flow-label packed
// into one 32-bit word, payload length, next header, hop limit, and the
// source/destination addresses.
var Kind = header.NewKind("IPv6", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "version_class_flow", Codec: field.Uint32BE, Default: uint32(6) << 28})
	Kind.DefineField(header.FieldDef{Name: "payload_length", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{Name: "next_header", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "hop_limit", Codec: field.Uint8, Default: uint8(64)})
	Kind.DefineField(header.FieldDef{Name: "source", Codec: field.IPv6})
	Kind.DefineField(header.FieldDef{Name: "destination", Codec: field.IPv6})

	Kind.DefineBitFieldsOn("version_class_flow",
		field.BitSpec{Name: "version", Width: 4},
		field.BitSpec{Name: "traffic_class", Width: 8},
		field.BitSpec{Name: "flow_label", Width: 20},
	)

	Kind.SetCalc(calc)
}

func calc(h *header.Header, ctx header.RecalcContext) error {
	payload := ctx.Payload()
	return h.Set("payload_length", uint16(len(payload)))
}
