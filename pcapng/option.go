package pcapng

import (
	"encoding/binary"
	"fmt"
	"math"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
)

// Option codes this package assigns meaning to. Many more are defined by
// the format (if_IPv4addr, if_MACaddr, epb_flags, ...); unrecognised codes
// round-trip through Value unchanged without needing their own constant.
const (
	OptEndOfOpt  uint16 = 0
	OptComment   uint16 = 1
	OptIfName    uint16 = 2
	OptIfDescr   uint16 = 3
	OptIfTSResol uint16 = 9
	OptIfOS      uint16 = 12
)

// Option is one TLV entry in a block's trailing option list: a code, its
// raw value bytes, and (for string-typed options) a String accessor.
// Grounded on the siemens/csharg pcapng stream editor's Option/NewOption/
// Bytes, generalized from SHB-only options to every block type's options.
type Option struct {
	Code  uint16
	Value []byte
}

// String decodes o's value as UTF-8, the encoding every string-typed
// option (comment, if_name, if_os, ...) uses.
func (o Option) String() string { return string(o.Value) }

// parseOptions reads a block's trailing option list until either an
// opt_endofopt marker or buf is exhausted, the latter tolerated for blocks
// that omit the end marker.
func parseOptions(buf []byte, order binary.ByteOrder) ([]Option, error) {
	var out []Option
	off := 0
	for off+4 <= len(buf) {
		code := order.Uint16(buf[off : off+2])
		length := order.Uint16(buf[off+2 : off+4])
		off += 4
		if code == OptEndOfOpt && length == 0 {
			return out, nil
		}
		if off+int(length) > len(buf) {
			return nil, errtrace.Wrap(fmt.Errorf("%w: option code %d value runs past block end", packetgen.ErrMalformedBlock, code))
		}
		value := make([]byte, length)
		copy(value, buf[off:off+int(length)])
		out = append(out, Option{Code: code, Value: value})
		off += int(length)
		if pad := align4(int(length)) - int(length); pad > 0 {
			off += pad
		}
	}
	return out, nil
}

// writeOptions encodes opts followed by an opt_endofopt marker, or returns
// nil if opts is empty (an options-less block omits the area entirely).
func writeOptions(opts []Option, order binary.ByteOrder) []byte {
	if len(opts) == 0 {
		return nil
	}
	var out []byte
	for _, o := range opts {
		out = append(out, optionBytes(o, order)...)
	}
	out = append(out, optionBytes(Option{Code: OptEndOfOpt}, order)...)
	return out
}

func optionBytes(o Option, order binary.ByteOrder) []byte {
	length := uint16(len(o.Value))
	buf := make([]byte, 4+align4(int(length)))
	order.PutUint16(buf[0:2], o.Code)
	order.PutUint16(buf[2:4], length)
	copy(buf[4:], o.Value)
	return buf
}

func align4(n int) int {
	if rem := n % 4; rem != 0 {
		return n + (4 - rem)
	}
	return n
}

// DefaultTSResolUnitsPerSecond is the tick rate assumed when an interface
// carries no if_tsresol option: microsecond resolution, per spec.md §4.6.
const DefaultTSResolUnitsPerSecond uint64 = 1_000_000

// tsResolUnitsPerSecond decodes if_tsresol's single-byte value: if the
// high bit is clear, the remaining 7 bits are a power of ten (resolution
// 10^-n seconds, so n yields 10^n ticks/second); if set, they're a power
// of two (resolution 2^-n seconds, 2^n ticks/second).
func tsResolUnitsPerSecond(opts []Option) uint64 {
	for _, o := range opts {
		if o.Code != OptIfTSResol || len(o.Value) < 1 {
			continue
		}
		b := o.Value[0]
		exp := uint(b &^ 0x80)
		if b&0x80 != 0 {
			return uint64(1) << exp
		}
		return uint64(math.Pow10(int(exp)))
	}
	return DefaultTSResolUnitsPerSecond
}

// SplitTimestamp breaks a 64-bit tick count into the EPB's tsh/tsl fields.
func SplitTimestamp(ticks uint64) (high, low uint32) {
	return uint32(ticks >> 32), uint32(ticks)
}

// CombineTimestamp reassembles an EPB's tsh/tsl fields into a 64-bit tick
// count.
func CombineTimestamp(high, low uint32) uint64 {
	return uint64(high)<<32 | uint64(low)
}

// TicksFromSeconds converts a wall-clock duration in seconds to the
// interface's tick resolution, per spec.md §4.6: "multiply by 1/ts_resol
// and split".
func TicksFromSeconds(seconds float64, unitsPerSecond uint64) uint64 {
	return uint64(seconds * float64(unitsPerSecond))
}

// SecondsFromTicks converts a tick count back to wall-clock seconds at the
// given resolution.
func SecondsFromTicks(ticks uint64, unitsPerSecond uint64) float64 {
	return float64(ticks) / float64(unitsPerSecond)
}
