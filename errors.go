// Package packetgen is a declarative header/field framework for building and
// dissecting network packets, plus a reader/writer for the PCAP-NG capture
// file format. See the field, header, binding, packet and pcapng
// subpackages for the framework itself; this file only carries the error
// sentinels shared across them.
package packetgen

import "errors"

// Error kinds shared across the framework. Callers should compare with
// errors.Is, since call sites wrap these with braces.dev/errtrace to attach
// the field/block/offset that failed.
var (
	// ErrTruncated is returned when a read would run past the end of the input.
	ErrTruncated = errors.New("packetgen: truncated")
	// ErrMalformedBlock is returned when a PCAP-NG block's trailing length
	// doesn't match its leading length, or an SHB carries an unknown
	// byte-order magic.
	ErrMalformedBlock = errors.New("packetgen: malformed block")
	// ErrInvalidValue is returned when an assignment is out of range, an
	// enum name is unknown, or an address string doesn't parse.
	ErrInvalidValue = errors.New("packetgen: invalid value")
	// ErrUnboundStack is returned by Packet.Add when no binding links the
	// current top of stack to the requested header kind.
	ErrUnboundStack = errors.New("packetgen: unbound stack")
	// ErrAmbiguousBinding is returned when two bindings of equal specificity
	// both match during parse or resolve, and the caller hasn't suppressed it.
	ErrAmbiguousBinding = errors.New("packetgen: ambiguous binding")
	// ErrUnparseablePacket is returned when the link-type is unknown and no
	// fallback header kind fully consumes the buffer.
	ErrUnparseablePacket = errors.New("packetgen: unparseable packet")
	// ErrInvalidFile is returned when a PCAP-NG stream doesn't start with a
	// Section Header Block.
	ErrInvalidFile = errors.New("packetgen: invalid file")
	// ErrIO wraps an underlying file/socket failure.
	ErrIO = errors.New("packetgen: io error")
)
