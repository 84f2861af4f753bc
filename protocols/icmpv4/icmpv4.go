// Package icmpv4 declares the ICMP (v4) header kind: type, code and a
// checksum over the whole message, no pseudo-header, grounded on gopcap's
// IPP_ICMP protocol constant (api.go) — gopcap itself stops at recognizing
// the protocol number and never dissects the message.
package icmpv4

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/protocols/internal/inetchecksum"
)

// ID is the binding-table identifier for the ICMPv4 header kind.
const ID header.ID = "icmpv4"

// Protocol is the IPv4 protocol number for ICMP.
const Protocol = 1

const (
	TypeEchoReply   = 0
	TypeEchoRequest = 8
)

// Kind is the ICMPv4 header: type, code, checksum. Type-specific fields
// (echo identifier/sequence, etc.) are left to the trailing payload.
var Kind = header.NewKind("ICMPv4", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "type", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "code", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "checksum", Codec: field.Uint16BE, Calculable: true})
	Kind.SetCalc(calc)
}

func calc(h *header.Header, ctx header.RecalcContext) error {
	if err := h.Set("checksum", uint16(0)); err != nil {
		return errtrace.Wrap(err)
	}
	own, err := h.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	sum := inetchecksum.Sum(own, ctx.Payload())
	return errtrace.Wrap(h.Set("checksum", sum))
}
