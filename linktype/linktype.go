// Package linktype maps the link-layer type numbers PCAP-NG interface
// description blocks carry (http://www.tcpdump.org/linktypes.html) to the
// header.Kind that should be used to start parsing a captured frame,
// generalizing gopcap's hard-coded api.go Link constants and the switch in
// readLinkData into an extensible table plus a best-effort fallback order
// for numbers no catalog package has registered a Kind for.
package linktype

import "github.com/picatz/packetgen/header"

// Well-known DLT_/LINKTYPE_ numbers. Catalog packages (protocols/ethernet,
// etc.) Register their Kind under the constant relevant to them; this
// package doesn't hard-code the kinds itself, avoiding an import cycle with
// the catalog.
const (
	Null       = 0
	Ethernet   = 1
	Raw        = 101
	IEEE80211  = 105
	RadioTap   = 127
	PPI        = 192
	IPv4       = 228
	IPv6       = 229
	Loopback   = 108
)

var byNumber = map[int]*header.Kind{}

// fallbacks is tried in order, for a link-type number no catalog package has
// registered, to give best-effort dissection a starting point per spec.md's
// "best-effort fallback list for unknown link-types".
var fallbacks []int

// Register associates number with kind. Catalog packages call this from
// their own package init.
func Register(number int, kind *header.Kind) {
	byNumber[number] = kind
}

// RegisterFallback appends number to the ordered list tried by Fallback when
// a captured frame's own link-type has no registered Kind.
func RegisterFallback(number int) {
	fallbacks = append(fallbacks, number)
}

// Lookup returns the Kind registered for number, if any.
func Lookup(number int) (*header.Kind, bool) {
	k, ok := byNumber[number]
	return k, ok
}

// Fallback returns the first registered Kind among the fallback list, for
// best-effort dissection of a frame whose link-type isn't recognized.
func Fallback() (*header.Kind, bool) {
	for _, n := range fallbacks {
		if k, ok := byNumber[n]; ok {
			return k, true
		}
	}
	return nil, false
}

// Fallbacks returns every registered fallback Kind, in declared order, for
// a caller that (per spec) tries each in turn and keeps the first whose
// parse fully consumes the buffer rather than stopping at the first one
// registered.
func Fallbacks() []*header.Kind {
	var out []*header.Kind
	for _, n := range fallbacks {
		if k, ok := byNumber[n]; ok {
			out = append(out, k)
		}
	}
	return out
}
