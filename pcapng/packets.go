package pcapng

import (
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/binding"
	"github.com/picatz/packetgen/internal/logging"
	"github.com/picatz/packetgen/linktype"
	"github.com/picatz/packetgen/packet"
)

// ReadPackets parses every packet block of every section in f into a
// packet.Packet, dissecting each with the header.Kind its owning
// interface's LinkType resolves to via the linktype package. An SPB (which
// carries no interface_id) is treated as interface 0, matching
// PacketsForInterface's convention.
//
// A link-type with no registered Kind is tried against linktype.Fallbacks'
// ordered list instead: the first fallback Kind whose parse fully consumes
// the packet's data wins, so a frame is never mis-dissected against a
// fallback that merely got further than the others without finishing.
// ErrUnparseablePacket is returned if none do.
func ReadPackets(f *File, registry *binding.Registry) ([]*packet.Packet, error) {
	var out []*packet.Packet
	for _, s := range f.Sections {
		for _, b := range s.Blocks {
			linkType := uint16(linktype.Ethernet)
			if id := int(b.InterfaceID()); id < len(s.Interfaces) {
				linkType = s.Interfaces[id].LinkType
			}
			p, err := parseOne(registry, b.Data(), linkType)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func parseOne(registry *binding.Registry, data []byte, linkType uint16) (*packet.Packet, error) {
	if kind, ok := linktype.Lookup(int(linkType)); ok {
		p, err := packet.Parse(registry, data, kind)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		return p, nil
	}

	log := logging.Default()
	for _, kind := range linktype.Fallbacks() {
		p, err := packet.Parse(registry, data, kind)
		if err != nil {
			continue
		}
		// The fallback "fully consumed the buffer" when dissection accounted
		// for every byte: either the header chain left no trailing payload,
		// or it engaged at least one upper-layer binding, so the bytes past
		// the first header were recognised rather than dumped wholesale into
		// the payload.
		if len(p.Payload()) == 0 || len(p.Headers()) > 1 {
			log.Debug("dissected frame with fallback kind",
				"link_type", linkType, "kind", kind.Name())
			return p, nil
		}
	}
	return nil, errtrace.Wrap(fmt.Errorf("%w: link-type %d has no registered or matching fallback kind", packetgen.ErrUnparseablePacket, linkType))
}

// ReadPacketsFunc walks f's packet blocks like ReadPackets, but hands each
// result to cb instead of accumulating: cb receives the parsed packet, or a
// nil packet and the parse error, so a caller can tolerate per-packet
// failures that ReadPackets would surface at the first failing block. cb
// returning a non-nil error stops the walk and returns that error.
func ReadPacketsFunc(f *File, registry *binding.Registry, cb func(p *packet.Packet, err error) error) error {
	for _, s := range f.Sections {
		for _, b := range s.Blocks {
			linkType := uint16(linktype.Ethernet)
			if id := int(b.InterfaceID()); id < len(s.Interfaces) {
				linkType = s.Interfaces[id].LinkType
			}
			p, err := parseOne(registry, b.Data(), linkType)
			if cbErr := cb(p, err); cbErr != nil {
				return errtrace.Wrap(cbErr)
			}
		}
	}
	return nil
}

// ReadFilePackets reads the PCAP-NG file at path and invokes cb once per
// packet block, in file order, with the same tolerance semantics as
// ReadPacketsFunc.
func ReadFilePackets(path string, registry *binding.Registry, cb func(p *packet.Packet, err error) error) error {
	f, err := ReadFile(path)
	if err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(ReadPacketsFunc(f, registry, cb))
}
