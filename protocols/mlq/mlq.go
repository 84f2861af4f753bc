// Package mlq declares the Multicast Listener Query (MLDv2) header kind:
// mld's fixed fields plus a source-address list, the presence of which is
// what the binding registry's tail-length predicate uses to prefer this
// kind over mld for a given ICMPv6 type-130 message. Grounded on RFC 3810
// §5.1's wire layout.
package mlq

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the MLQ header kind.
const ID header.ID = "mlq"

// Kind is the MLDv2 query body: maximum response code, reserved, multicast
// address, a suppress/QRV byte, QQIC, a source count and that many IPv6
// source addresses.
var Kind = header.NewKind("MLQ", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "max_response_code", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "reserved", Codec: field.Uint16BE})
	Kind.DefineField(header.FieldDef{Name: "multicast_address", Codec: field.IPv6})
	Kind.DefineField(header.FieldDef{Name: "resv_s_qrv", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "qqic", Codec: field.Uint8})
	Kind.DefineField(header.FieldDef{Name: "num_sources", Codec: field.Uint16BE, Calculable: true})
	Kind.DefineField(header.FieldDef{
		Name:    "sources",
		Codec:   field.Array{Elem: field.IPv6},
		Builder: sourceCount,
	})

	Kind.DefineBitFieldsOn("resv_s_qrv",
		field.BitSpec{Name: "reserved_bits", Width: 4},
		field.BitSpec{Name: "suppress", Width: 1},
		field.BitSpec{Name: "qrv", Width: 3},
	)

	Kind.SetCalc(calc)
}

func sourceCount(h field.Header) any {
	n, ok := h.Get("num_sources")
	if !ok {
		return 0
	}
	return int(n.(uint16))
}

func calc(h *header.Header, _ header.RecalcContext) error {
	sources, _ := h.Get("sources")
	vs, _ := sources.([]any)
	return errtrace.Wrap(h.Set("num_sources", uint16(len(vs))))
}
