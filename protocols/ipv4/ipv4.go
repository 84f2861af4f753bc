// Package ipv4 declares the IPv4 header kind, grounded on gopcap's
// IPv4Packet (internet.go) — whose ReadFrom comment calls the header "full
// of crazy non-aligned fields" and expands them by hand. Here the same
// fields are packed via header.DefineBitFieldsOn (version/IHL,
// DSCP/ECN, flags/fragment-offset) instead of ad hoc shifting, and the
// options/total-length/checksum fields are wired to the field.Builder and
// Calc mechanisms rather than one-off arithmetic in ReadFrom.
package ipv4

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/protocols/internal/inetchecksum"
)

// ID is the binding-table identifier for the IPv4 header kind.
const ID header.ID = "ipv4"

// Protocol numbers this catalog binds IPv4 to an upper kind for.
const (
	ProtocolICMP = 1
	ProtocolTCP  = 6
	ProtocolUDP  = 17
)

// Kind is the IPv4 header: version+IHL, DSCP+ECN, total length, ID,
// flags+fragment offset, TTL, protocol, checksum, addresses and options.
var Kind = header.NewKind("IPv4", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "version_ihl", Codec: field.Uint8, Default: uint8(0x45)})
	Kind.DefineField(header.FieldDef{Name: "dscp_ecn", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "total_length", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{Name: "id", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "flags_fragment", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "ttl", Codec: field.Uint8, Default: uint8(64)})
	Kind.DefineField(header.FieldDef{Name: "protocol", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "checksum", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{Name: "source", Codec: field.IPv4})
	Kind.DefineField(header.FieldDef{Name: "destination", Codec: field.IPv4})
	Kind.DefineField(header.FieldDef{Name: "options", Codec: field.Opaque{}, Builder: optionsLength})

	Kind.DefineBitFieldsOn("version_ihl",
		field.BitSpec{Name: "version", Width: 4},
		field.BitSpec{Name: "ihl", Width: 4},
	)
	Kind.DefineBitFieldsOn("dscp_ecn",
		field.BitSpec{Name: "dscp", Width: 6},
		field.BitSpec{Name: "ecn", Width: 2},
	)
	Kind.DefineBitFieldsOn("flags_fragment",
		field.BitSpec{Name: "reserved_flag", Width: 1},
		field.BitSpec{Name: "dont_fragment", Width: 1},
		field.BitSpec{Name: "more_fragments", Width: 1},
		field.BitSpec{Name: "fragment_offset", Width: 13},
	)

	Kind.SetCalc(calc)
}

// optionsLength reads the IHL nibble directly off the raw version_ihl byte,
// the same "crazy non-aligned field" gopcap's ReadFrom extracts by hand,
// rather than going through GetBit (a Builder only sees already-decoded
// top-level field values, not sub-bit-fields).
func optionsLength(h field.Header) any {
	raw, ok := h.Get("version_ihl")
	if !ok {
		return 0
	}
	ihl := raw.(uint8) & 0x0F
	if ihl < 5 {
		return 0
	}
	return int(ihl-5) * 4
}

func calc(h *header.Header, ctx header.RecalcContext) error {
	own, err := h.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	total := uint16(len(own) + len(ctx.Payload()))
	if err := h.Set("total_length", total); err != nil {
		return errtrace.Wrap(err)
	}
	if err := h.Set("checksum", uint16(0)); err != nil {
		return errtrace.Wrap(err)
	}
	own, err = h.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	sum := inetchecksum.Sum(own)
	return errtrace.Wrap(h.Set("checksum", sum))
}
