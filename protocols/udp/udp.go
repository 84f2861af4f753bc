// Package udp declares the User Datagram Protocol header kind, grounded on
// gopcap's UDPDatagram (transport_udp.go): four fixed 16-bit fields, no
// options, no bit-packing. The checksum Calc hook generalizes the RFC 768
// pseudo-header sum, built from whichever internet-layer header sits below
// it (IPv4 or IPv6, detected by the shape of its decoded source address)
// rather than gopcap's read-only FromBytes.
package udp

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/protocols/internal/inetchecksum"
)

// ID is the binding-table identifier for the UDP header kind.
const ID header.ID = "udp"

// Protocol is the IPv4/IPv6 protocol number for UDP.
const Protocol = 17

// Kind is the UDP header: source port, destination port, length (header +
// data), checksum.
var Kind = header.NewKind("UDP", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "sport", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "dport", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "length", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{Name: "checksum", Codec: field.Uint16BE, Calculable: true})
	Kind.SetCalc(calc)
}

func calc(h *header.Header, ctx header.RecalcContext) error {
	payload := ctx.Payload()
	length := uint16(8 + len(payload))
	if err := h.Set("length", length); err != nil {
		return errtrace.Wrap(err)
	}
	if err := h.Set("checksum", uint16(0)); err != nil {
		return errtrace.Wrap(err)
	}
	own, err := h.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	pseudo, err := inetchecksum.PseudoHeader(ctx.Lower(), length, Protocol)
	if err != nil {
		return errtrace.Wrap(err)
	}
	sum := inetchecksum.Sum(pseudo, own, payload)
	if sum == 0 {
		sum = 0xffff
	}
	return errtrace.Wrap(h.Set("checksum", sum))
}
