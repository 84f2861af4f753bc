package inetchecksum

import (
	"encoding/binary"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/header"
)

// PseudoHeader builds the RFC 768 (UDP) / RFC 793 (TCP) pseudo-header used
// in their checksum: source/destination address, zero pad, protocol number,
// upper-layer length. lower's decoded "source"/"destination" fields must be
// a [4]byte pair (IPv4) or [16]byte pair (IPv6); anything else is an error,
// since UDP/TCP checksums are only defined over those two internet layers.
func PseudoHeader(lower *header.Header, upperLength uint16, protocol byte) ([]byte, error) {
	if lower == nil {
		return nil, errtrace.Wrap(packetgen.ErrInvalidValue)
	}
	src, _ := lower.Get("source")
	dst, _ := lower.Get("destination")
	switch s := src.(type) {
	case [4]byte:
		d, ok := dst.([4]byte)
		if !ok {
			return nil, errtrace.Wrap(packetgen.ErrInvalidValue)
		}
		out := make([]byte, 12)
		copy(out[0:4], s[:])
		copy(out[4:8], d[:])
		out[9] = protocol
		binary.BigEndian.PutUint16(out[10:12], upperLength)
		return out, nil
	case [16]byte:
		d, ok := dst.([16]byte)
		if !ok {
			return nil, errtrace.Wrap(packetgen.ErrInvalidValue)
		}
		out := make([]byte, 40)
		copy(out[0:16], s[:])
		copy(out[16:32], d[:])
		binary.BigEndian.PutUint32(out[32:36], uint32(upperLength))
		out[39] = protocol
		return out, nil
	default:
		return nil, errtrace.Wrap(packetgen.ErrInvalidValue)
	}
}
