// Package icmpv6 declares the ICMPv6 header kind. The checksum covers the
// IPv6 pseudo-header plus the whole ICMPv6 message, per RFC 4443 — unlike
// ICMPv4, which has no pseudo-header. gopcap's api.go stops at the
// IPP_IPV6_ICMP protocol number; dissection below type/code/checksum (MLD,
// MLQ, neighbor discovery, ...) is new catalog territory for this module.
package icmpv6

import (
	"braces.dev/errtrace"
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/protocols/internal/inetchecksum"
)

// ID is the binding-table identifier for the ICMPv6 header kind.
const ID header.ID = "icmpv6"

// Protocol is the IPv6 next-header value for ICMPv6.
const Protocol = 58

// TypeMulticastListener is shared by the MLD and MLQ subkinds bound as
// ICMPv6's upper layer; which one a given message decodes as is decided by
// binding.Registry predicates in protocols/catalog, not here.
const TypeMulticastListener = 130

// Kind is the ICMPv6 header: type, code, checksum. Message-specific fields
// belong to whatever upper kind the binding registry resolves next.
var Kind = header.NewKind("ICMPv6", ID)

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
	payload := ctx.Payload()
	pseudo, err := inetchecksum.PseudoHeader(ctx.Lower(), uint16(len(own)+len(payload)), Protocol)
	if err != nil {
		return errtrace.Wrap(err)
	}
	sum := inetchecksum.Sum(pseudo, own, payload)
	return errtrace.Wrap(h.Set("checksum", sum))
}
