// Package protocols wires the individual header-kind packages
// (ethernet, arp, ipv4, ipv6, udp, tcp, icmpv4, icmpv6, mld, mlq, tftp) into
// binding.Default and linktype's number table. Each catalog package is
// self-contained — it declares its own Kind, fields and Calc hook with no
// knowledge of its neighbors — so this file is the one place layering
// decisions live, mirroring how gopcap's link.go/internet.go switch
// statements were themselves the single place that decided what followed
// what; here that decision is data registered once at import time instead
// of code run on every parse.
package protocols

import (
	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/header"
	"github.com/picatz/packetgen/linktype"
	"github.com/picatz/packetgen/protocols/arp"
	"github.com/picatz/packetgen/protocols/ethernet"
	"github.com/picatz/packetgen/protocols/icmpv4"
	"github.com/picatz/packetgen/protocols/icmpv6"
	"github.com/picatz/packetgen/protocols/ipv4"
	"github.com/picatz/packetgen/protocols/ipv6"
	"github.com/picatz/packetgen/protocols/mld"
	"github.com/picatz/packetgen/protocols/mlq"
	"github.com/picatz/packetgen/protocols/tcp"
	"github.com/picatz/packetgen/protocols/tftp"
	"github.com/picatz/packetgen/protocols/udp"
)

func init() {
	linktype.Register(linktype.Ethernet, ethernet.Kind)
	linktype.Register(linktype.IPv4, ipv4.Kind)
	linktype.Register(linktype.IPv6, ipv6.Kind)
	linktype.Register(linktype.Raw, ipv4.Kind)
	linktype.RegisterFallback(linktype.Ethernet)
	linktype.RegisterFallback(linktype.Raw)
	linktype.RegisterFallback(linktype.IPv6)

	binding.Default.Bind(ethernet.ID, arp.ID, binding.AND,
		binding.Equality{Field: "ethertype", Match: binding.Equals(uint16(ethernet.TypeARP))})
	binding.Default.Bind(ethernet.ID, ipv4.ID, binding.AND,
		binding.Equality{Field: "ethertype", Match: binding.Equals(uint16(ethernet.TypeIPv4))})
	binding.Default.Bind(ethernet.ID, ipv6.ID, binding.AND,
		binding.Equality{Field: "ethertype", Match: binding.Equals(uint16(ethernet.TypeIPv6))})

	binding.Default.Bind(ipv4.ID, icmpv4.ID, binding.AND,
		binding.Equality{Field: "protocol", Match: binding.Equals(uint8(ipv4.ProtocolICMP))})
	binding.Default.Bind(ipv4.ID, tcp.ID, binding.AND,
		binding.Equality{Field: "protocol", Match: binding.Equals(uint8(ipv4.ProtocolTCP))})
	binding.Default.Bind(ipv4.ID, udp.ID, binding.AND,
		binding.Equality{Field: "protocol", Match: binding.Equals(uint8(ipv4.ProtocolUDP))})

	binding.Default.Bind(ipv6.ID, tcp.ID, binding.AND,
		binding.Equality{Field: "next_header", Match: binding.Equals(uint8(ipv6.ProtocolTCP))})
	binding.Default.Bind(ipv6.ID, udp.ID, binding.AND,
		binding.Equality{Field: "next_header", Match: binding.Equals(uint8(ipv6.ProtocolUDP))})
	binding.Default.Bind(ipv6.ID, icmpv6.ID, binding.AND,
		binding.Equality{Field: "next_header", Match: binding.Equals(uint8(ipv6.ProtocolICMPv6))})

	// MLD vs MLQ: both match type 130, but MLQ additionally requires a
	// tail longer than the fixed 20-byte MLD body (an MLDv2 query's fixed
	// fields alone run 24 bytes, before any source records). Matching binding.go's
	// specificity rule, MLQ's two equalities make it more specific than
	// MLD's one, so it's tried first; its own equality list still has to
	// hold before it wins.
	binding.Default.Bind(icmpv6.ID, mlq.ID, binding.AND,
		binding.Equality{Field: "type", Match: binding.Equals(uint8(icmpv6.TypeMulticastListener))},
		binding.Equality{Field: "tail_length", Match: binding.ByLambda(func(h *header.Header) bool {
			return h.TailLength() > 23
		})},
	)
	binding.Default.Bind(icmpv6.ID, mld.ID, binding.AND,
		binding.Equality{Field: "type", Match: binding.Equals(uint8(icmpv6.TypeMulticastListener))})

	binding.Default.Bind(udp.ID, tftp.ID, binding.OR,
		binding.Equality{Field: "dport", Match: binding.Equals(uint16(69))},
		binding.Equality{Field: "sport", Match: binding.Equals(uint16(69))})
}
