package header

import (
	"fmt"

	"braces.dev/errtrace"
	"github.com/picatz/packetgen"
	"github.com/picatz/packetgen/field"
)

// bitGroup is the declaration-time record of one DefineBitFieldsOn call:
// which host field it decomposes, and the offset/width of each declared
// sub-field within it, MSB-first. Widths need not sum to the host's full
// bit width — any bits left over are reserved and preserved through
// round-trip, never surfaced as a named sub-field.
type bitGroup struct {
	host      string
	hostWidth int
	subs      map[string]bitSpan
}

type bitSpan struct {
	offset int
	width  int
}

// DefineBitFieldsOn decomposes host (an already-defined integer-valued
// field, 8/16/32 bits wide) into the given sub-fields, most-significant
// bit first. Widths must not exceed the host's bit width; a sub-field of
// width 1 is read/written as bool by GetBit/SetBit.
func (k *Kind) DefineBitFieldsOn(host string, specs ...field.BitSpec) *Kind {
	idx := k.mustIndex(host)
	width := k.fields[idx].Codec.Size(k.fields[idx].Codec.Default(), nil) * 8

	total := 0
	subs := make(map[string]bitSpan, len(specs))
	for _, s := range specs {
		if _, exists := subs[s.Name]; exists {
			panic(fmt.Sprintf("header: bit-field %q already defined on host %q", s.Name, host))
		}
		subs[s.Name] = bitSpan{offset: total, width: s.Width}
		total += s.Width
	}
	if total > width {
		panic(fmt.Sprintf("header: bit-fields on %q sum to %d bits, host is only %d bits wide", host, total, width))
	}

	if k.bits == nil {
		k.bits = make(map[string]bitGroup)
	}
	k.bits[host] = bitGroup{host: host, hostWidth: width, subs: subs}
	return k
}

func (k *Kind) findBitSpan(name string) (bitGroup, bitSpan, bool) {
	for _, g := range k.bits {
		if span, ok := g.subs[name]; ok {
			return g, span, true
		}
	}
	return bitGroup{}, bitSpan{}, false
}

// GetBit returns the value of a declared bit sub-field. A width-1 sub-field
// is returned as bool; wider sub-fields are returned as uint64.
func (h *Header) GetBit(name string) (any, error) {
	g, span, ok := h.kind.findBitSpan(name)
	if !ok {
		return nil, errtrace.Wrap(fmt.Errorf("%w: %q is not a declared bit-field", packetgen.ErrInvalidValue, name))
	}
	host, err := toHostUint(h.values[g.host])
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	v := field.ExtractBits(host, g.hostWidth, span.offset, span.width)
	if span.width == 1 {
		return v != 0, nil
	}
	return v, nil
}

// SetBit assigns a declared bit sub-field, leaving the host field's other
// bits — including ones not claimed by any declared sub-field — untouched.
// The host field's on-wire representation is unchanged except for the bits
// belonging to this sub-field.
func (h *Header) SetBit(name string, value any) error {
	g, span, ok := h.kind.findBitSpan(name)
	if !ok {
		return errtrace.Wrap(fmt.Errorf("%w: %q is not a declared bit-field", packetgen.ErrInvalidValue, name))
	}
	host, err := toHostUint(h.values[g.host])
	if err != nil {
		return errtrace.Wrap(err)
	}
	var v uint64
	switch val := value.(type) {
	case bool:
		if val {
			v = 1
		}
	case uint64:
		v = val
	case int:
		v = uint64(val)
	case uint32:
		v = uint64(val)
	case uint16:
		v = uint64(val)
	case uint8:
		v = uint64(val)
	default:
		return errtrace.Wrap(fmt.Errorf("%w: cannot assign %T to bit-field %q", packetgen.ErrInvalidValue, value, name))
	}
	if span.width < 64 && v>>uint(span.width) != 0 {
		return errtrace.Wrap(fmt.Errorf("%w: value %d does not fit %d-bit field %q", packetgen.ErrInvalidValue, v, span.width, name))
	}
	packed := field.PackBits(host, g.hostWidth, span.offset, span.width, v)
	return h.Set(g.host, hostValueFromUint(h.values[g.host], packed))
}

func toHostUint(value any) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case int64:
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("%w: bit-field host must be an integer field", packetgen.ErrInvalidValue)
	}
}

// hostValueFromUint re-wraps a packed uint64 in the same concrete type the
// host field was already stored as, so Header.Set's codec round-trip sees
// the type it expects.
func hostValueFromUint(prev any, packed uint64) any {
	switch prev.(type) {
	case uint32:
		return uint32(packed)
	case uint16:
		return uint16(packed)
	case uint8:
		return uint8(packed)
	case int64:
		return int64(packed)
	default:
		return packed
	}
}
