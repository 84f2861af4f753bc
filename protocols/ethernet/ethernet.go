// Package ethernet declares the Ethernet II frame header kind, grounded on
// gopcap's EthernetFrame (link.go): destination/source MAC followed by a
// 16-bit EtherType selecting the next header. Layering onto ARP/IPv4/IPv6
// is wired in protocols/catalog.go rather than here, so this package stays
// ignorant of its neighbors the way a single protocol module should.
package ethernet

import (
	"github.com/picatz/packetgen/field"
	"github.com/picatz/packetgen/header"
)

// ID is the binding-table identifier for the Ethernet II header kind.
const ID header.ID = "ethernet"

// EtherType values this catalog recognizes. Many more are assigned; gopcap's
// api.go lists a broader set than we bind an upper kind for.
const (
	TypeIPv4 = 0x0800
	TypeARP  = 0x0806
	TypeIPv6 = 0x86DD
)

// Kind is the Ethernet II header: 6-byte destination MAC, 6-byte source
// MAC, 2-byte EtherType. The 802.1Q VLAN tag gopcap detects ad hoc in
// EthernetFrame.ReadFrom is out of scope here; untagged frames only.
var Kind = header.NewKind("Ethernet", ID)

func init() {
	Kind.DefineField(header.FieldDef{Name: "destination", Codec: field.MAC})
	Kind.DefineField(header.FieldDef{Name: "source", Codec: field.MAC})
	Kind.DefineField(header.FieldDef{Name: "ethertype", Codec: field.Uint16BE})
}
