package pcapng

import (
	"encoding/binary"
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
)

// splitFrame reads the common block envelope — 4-byte type, 4-byte total
// length, body, repeated 4-byte total length — validating that the two
// length fields agree (spec.md's MalformedBlock condition) and returning
// the body (everything between them) plus whatever of buf follows this
// block.
func splitFrame(buf []byte, order binary.ByteOrder) (blockType uint32, body []byte, rest []byte, err error) {
	if len(buf) < 12 {
		return 0, nil, nil, errtrace.Wrap(fmt.Errorf("%w: block header", packetgen.ErrTruncated))
	}
	blockType = order.Uint32(buf[0:4])
	totalLen := order.Uint32(buf[4:8])
	if totalLen < 12 || int(totalLen) > len(buf) {
		return 0, nil, nil, errtrace.Wrap(fmt.Errorf("%w: implausible block length %d", packetgen.ErrMalformedBlock, totalLen))
	}
	trailingLen := order.Uint32(buf[totalLen-4 : totalLen])
	if trailingLen != totalLen {
		return 0, nil, nil, errtrace.Wrap(fmt.Errorf("%w: leading length %d != trailing length %d", packetgen.ErrMalformedBlock, totalLen, trailingLen))
	}
	return blockType, buf[8 : totalLen-4], buf[totalLen:], nil
}

// frame wraps body (a block's type-specific content, already including any
// data padding) with the leading type/length and trailing length fields.
func frame(blockType uint32, body []byte, order binary.ByteOrder) []byte {
	total := 8 + len(body) + 4
	out := make([]byte, total)
	order.PutUint32(out[0:4], blockType)
	order.PutUint32(out[4:8], uint32(total))
	copy(out[8:8+len(body)], body)
	order.PutUint32(out[total-4:total], uint32(total))
	return out
}

// readSHBFrame decodes a whole SHB block straight from buf (type, length,
// body, trailing length), rather than going through splitFrame: the
// section's endian — needed to even interpret the length fields — is
// itself a property of this block's body (the byte-order magic at a fixed
// offset, 8 bytes in), so it must be determined before the length fields
// can be trusted. The block type 0x0A0D0D0A is byte-palindromic and reads
// the same in either endian; the magic is tried first as big-endian, then
// little, matching gopcap's checkMagicNum trying both magic byte orders in
// parse.go. Returns the decoded SHB and the block's total length.
func readSHBFrame(buf []byte) (SHB, uint32, error) {
	if len(buf) < 24 {
		return SHB{}, 0, errtrace.Wrap(fmt.Errorf("%w: section header block", packetgen.ErrTruncated))
	}
	var order binary.ByteOrder
	switch {
	case binary.BigEndian.Uint32(buf[8:12]) == ByteOrderMagic:
		order = binary.BigEndian
	case binary.LittleEndian.Uint32(buf[8:12]) == ByteOrderMagic:
		order = binary.LittleEndian
	default:
		return SHB{}, 0, errtrace.Wrap(fmt.Errorf("%w: unrecognised byte-order magic", packetgen.ErrMalformedBlock))
	}
	totalLen := order.Uint32(buf[4:8])
	if totalLen < 28 || int(totalLen) > len(buf) {
		return SHB{}, 0, errtrace.Wrap(fmt.Errorf("%w: implausible block length %d", packetgen.ErrMalformedBlock, totalLen))
	}
	trailingLen := order.Uint32(buf[totalLen-4 : totalLen])
	if trailingLen != totalLen {
		return SHB{}, 0, errtrace.Wrap(fmt.Errorf("%w: leading length %d != trailing length %d", packetgen.ErrMalformedBlock, totalLen, trailingLen))
	}
	body := buf[8 : totalLen-4]
	opts, err := parseOptions(body[16:], order)
	if err != nil {
		return SHB{}, 0, errtrace.Wrap(err)
	}
	return SHB{
		Endian:        order,
		MajorVersion:  order.Uint16(body[4:6]),
		MinorVersion:  order.Uint16(body[6:8]),
		SectionLength: order.Uint64(body[8:16]),
		Options:       opts,
	}, totalLen, nil
}

func (shb SHB) bytes() []byte {
	order := shb.Endian
	opts := writeOptions(shb.Options, order)
	body := make([]byte, 16+len(opts))
	order.PutUint32(body[0:4], ByteOrderMagic)
	order.PutUint16(body[4:6], shb.MajorVersion)
	order.PutUint16(body[6:8], shb.MinorVersion)
	order.PutUint64(body[8:16], shb.SectionLength)
	copy(body[16:], opts)
	return frame(BlockTypeSHB, body, order)
}

func readIDB(body []byte, order binary.ByteOrder) (IDB, error) {
	if len(body) < 8 {
		return IDB{}, errtrace.Wrap(fmt.Errorf("%w: interface description block body", packetgen.ErrTruncated))
	}
	opts, err := parseOptions(body[8:], order)
	if err != nil {
		return IDB{}, errtrace.Wrap(err)
	}
	return IDB{
		LinkType: order.Uint16(body[0:2]),
		SnapLen:  order.Uint32(body[4:8]),
		Options:  opts,
	}, nil
}

func (idb IDB) bytes(order binary.ByteOrder) []byte {
	opts := writeOptions(idb.Options, order)
	body := make([]byte, 8+len(opts))
	order.PutUint16(body[0:2], idb.LinkType)
	// body[2:4] is reserved, left zero.
	order.PutUint32(body[4:8], idb.SnapLen)
	copy(body[8:], opts)
	return frame(BlockTypeIDB, body, order)
}

func readEPB(body []byte, order binary.ByteOrder) (EPB, error) {
	if len(body) < 20 {
		return EPB{}, errtrace.Wrap(fmt.Errorf("%w: enhanced packet block body", packetgen.ErrTruncated))
	}
	capLen := order.Uint32(body[12:16])
	padded := align4(int(capLen))
	if 20+padded > len(body) {
		return EPB{}, errtrace.Wrap(fmt.Errorf("%w: captured_len %d exceeds block body", packetgen.ErrMalformedBlock, capLen))
	}
	data := make([]byte, capLen)
	copy(data, body[20:20+capLen])
	opts, err := parseOptions(body[20+padded:], order)
	if err != nil {
		return EPB{}, errtrace.Wrap(err)
	}
	return EPB{
		InterfaceID:   order.Uint32(body[0:4]),
		TimestampHigh: order.Uint32(body[4:8]),
		TimestampLow:  order.Uint32(body[8:12]),
		CapturedLen:   capLen,
		OriginalLen:   order.Uint32(body[16:20]),
		Data:          data,
		Options:       opts,
	}, nil
}

func (e EPB) bytes(order binary.ByteOrder) []byte {
	padded := align4(len(e.Data))
	opts := writeOptions(e.Options, order)
	body := make([]byte, 20+padded+len(opts))
	order.PutUint32(body[0:4], e.InterfaceID)
	order.PutUint32(body[4:8], e.TimestampHigh)
	order.PutUint32(body[8:12], e.TimestampLow)
	order.PutUint32(body[12:16], uint32(len(e.Data)))
	order.PutUint32(body[16:20], e.OriginalLen)
	copy(body[20:20+len(e.Data)], e.Data)
	copy(body[20+padded:], opts)
	return frame(BlockTypeEPB, body, order)
}

func readSPB(body []byte, order binary.ByteOrder) (SPB, error) {
	if len(body) < 4 {
		return SPB{}, errtrace.Wrap(fmt.Errorf("%w: simple packet block body", packetgen.ErrTruncated))
	}
	origLen := order.Uint32(body[0:4])
	// An SPB carries no captured-length field: the packet data runs to the
	// block's alignment padding, so its true extent is bounded by
	// original_len (a snaplen may still have truncated it below that).
	n := len(body) - 4
	if int(origLen) < n {
		n = int(origLen)
	}
	data := make([]byte, n)
	copy(data, body[4:4+n])
	return SPB{
		OriginalLen: origLen,
		Data:        data,
	}, nil
}

func (s SPB) bytes(order binary.ByteOrder) []byte {
	padded := align4(len(s.Data))
	body := make([]byte, 4+padded)
	order.PutUint32(body[0:4], s.OriginalLen)
	copy(body[4:4+len(s.Data)], s.Data)
	return frame(BlockTypeSPB, body, order)
}

func (u UnknownBlock) bytes(order binary.ByteOrder) []byte {
	out := make([]byte, 8+len(u.Body)+4)
	// Unknown blocks are preserved byte-exact: Body already carries
	// whatever the original encoded (including any padding), so the
	// leading/trailing length fields are recomputed but the body is
	// copied verbatim rather than re-derived field by field.
	total := uint32(len(out))
	order.PutUint32(out[0:4], u.Type)
	order.PutUint32(out[4:8], total)
	copy(out[8:], u.Body)
	order.PutUint32(out[len(out)-4:], total)
	return out
}
