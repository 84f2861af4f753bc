// Package tcp declares the Transmission Control Protocol header kind.
// gopcap's TCPSegment (transport_tcp.go) stores the nine control bits as
// nine separate bool struct fields and extracts each with a hand-written
// mask; here the same bits are declared once via header.DefineBitFieldsOn
// over a single 16-bit host field shared with the data-offset nibble,
// matching the actual wire layout bit-for-bit.
package tcp

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/protocols/internal/inetchecksum"
)

// ID is the binding-table identifier for the TCP header kind.
const ID header.ID = "tcp"

// Protocol is the IPv4/IPv6 protocol number for TCP.
const Protocol = 6

// Kind is the TCP header: ports, sequence/ack numbers, the combined
// data-offset/reserved/flags word, window, checksum, urgent pointer and
// options.
var Kind = header.NewKind("TCP", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "sport", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "dport", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "seq", Codec: field.Uint32BE})
	Kind.DefineField(header.FieldDef{Name: "ack", Codec: field.Uint32BE})
	Kind.DefineField(header.FieldDef{Name: "offset_flags", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "window", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "checksum", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{Name: "urgent", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "options", Codec: field.Opaque{}, Builder: optionsLength})

	Kind.DefineBitFieldsOn("offset_flags",
		field.BitSpec{Name: "data_offset", Width: 4},
		field.BitSpec{Name: "reserved", Width: 3},
		field.BitSpec{Name: "ns", Width: 1},
		field.BitSpec{Name: "cwr", Width: 1},
		field.BitSpec{Name: "ece", Width: 1},
		field.BitSpec{Name: "urg", Width: 1},
		field.BitSpec{Name: "ack_flag", Width: 1},
		field.BitSpec{Name: "psh", Width: 1},
		field.BitSpec{Name: "rst", Width: 1},
		field.BitSpec{Name: "syn", Width: 1},
		field.BitSpec{Name: "fin", Width: 1},
	)

	Kind.SetCalc(calc)
}

func optionsLength(h field.Header) any {
	raw, ok := h.Get("offset_flags")
	if !ok {
		return 0
	}
	dataOffset := (raw.(uint16) >> 12) & 0xF
	if dataOffset < 5 {
		return 0
	}
	return int(dataOffset-5) * 4
}

func calc(h *header.Header, ctx header.RecalcContext) error {
	if err := h.Set("checksum", uint16(0)); err != nil {
		return errtrace.Wrap(err)
	}
	own, err := h.ToBytes()
	if err != nil {
		return errtrace.Wrap(err)
	}
	payload := ctx.Payload()
	pseudo, err := inetchecksum.PseudoHeader(ctx.Lower(), uint16(len(own)+len(payload)), Protocol)
	if err != nil {
		return errtrace.Wrap(err)
	}
	sum := inetchecksum.Sum(pseudo, own, payload)
	if sum == 0 {
		sum = 0xffff
	}
	return errtrace.Wrap(h.Set("checksum", sum))
}
