// Package field provides the primitive typed-value codecs that back every
// header field in the framework: fixed-width integers, enums, addresses,
// strings and arrays, each able to read itself off a byte cursor, report its
// own wire size, write itself back out, and produce a zero value.
package field

import (
	"encoding/binary"
	"fmt"

	"github.com/picatz/packetgen"
)

// Codec is a typed field's wire representation. Implementations must be
// stateless and safe for concurrent use: the same Codec value is shared by
// every Header instance of a given Kind.
type Codec interface {
	// Read decodes a value from the head of buf, parametrized by param (the
	// value a field's Builder produced, or nil for fixed-size codecs). It
	// returns the decoded value and the number of bytes consumed.
	Read(buf []byte, param any) (value any, consumed int, err error)
	// Write encodes value to bytes, parametrized the same way as Read.
	Write(value any, param any) ([]byte, error)
	// Size returns len(Write(value, param)) without allocating, where possible.
	Size(value any, param any) int
	// Default returns the zero value new instances of a field start with.
	Default() any
}

// Builder parametrizes a variable-length field's Read/Size/Write from the
// values of fields already decoded earlier in the same header. Header is
// satisfied by *header.Header; it's spelled as an interface here to avoid an
// import cycle between field and header.
type Builder func(h Header) any

// Header is the subset of *header.Header a Builder needs: read-only access
// to already-decoded field values by name.
type Header interface {
	Get(name string) (any, bool)
}

func truncated(need, have int) error {
	return fmt.Errorf("%w: need %d bytes, have %d", packetgen.ErrTruncated, need, have)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", packetgen.ErrInvalidValue, fmt.Sprintf(format, args...))
}

// intCodec implements Codec for fixed-width signed/unsigned integers.
type intCodec struct {
	width  int // bytes: 1, 2, 3, 4, 8
	signed bool
	order  binary.ByteOrder
}

// Uint8 is an 8-bit unsigned integer codec. Byte order is irrelevant at
// width 1 but kept symmetrical with the wider codecs.
var Uint8 Codec = intCodec{width: 1, order: binary.BigEndian}

// Int8 is an 8-bit signed integer codec.
var Int8 Codec = intCodec{width: 1, signed: true, order: binary.BigEndian}

// Uint16BE/Uint16LE are 16-bit unsigned integer codecs in big/little endian.
var (
	Uint16BE Codec = intCodec{width: 2, order: binary.BigEndian}
	Uint16LE Codec = intCodec{width: 2, order: binary.LittleEndian}
)

// Int16BE/Int16LE are 16-bit signed integer codecs.
var (
	Int16BE Codec = intCodec{width: 2, signed: true, order: binary.BigEndian}
	Int16LE Codec = intCodec{width: 2, signed: true, order: binary.LittleEndian}
)

// Uint24BE/Uint24LE are 24-bit unsigned integer codecs, decoded into a uint32.
var (
	Uint24BE Codec = intCodec{width: 3, order: binary.BigEndian}
	Uint24LE Codec = intCodec{width: 3, order: binary.LittleEndian}
)

// Uint32BE/Uint32LE are 32-bit unsigned integer codecs in big/little endian.
var (
	Uint32BE Codec = intCodec{width: 4, order: binary.BigEndian}
	Uint32LE Codec = intCodec{width: 4, order: binary.LittleEndian}
)

// Int32BE/Int32LE are 32-bit signed integer codecs.
var (
	Int32BE Codec = intCodec{width: 4, signed: true, order: binary.BigEndian}
	Int32LE Codec = intCodec{width: 4, signed: true, order: binary.LittleEndian}
)

// Uint64BE/Uint64LE are 64-bit unsigned integer codecs in big/little endian.
var (
	Uint64BE Codec = intCodec{width: 8, order: binary.BigEndian}
	Uint64LE Codec = intCodec{width: 8, order: binary.LittleEndian}
)

func (c intCodec) Default() any {
	zero, err := c.narrow(0)
	if err != nil {
		panic(err)
	}
	return zero
}

func (c intCodec) Size(any, any) int { return c.width }

func (c intCodec) Read(buf []byte, _ any) (any, int, error) {
	if len(buf) < c.width {
		return nil, 0, truncated(c.width, len(buf))
	}
	u := c.decodeUint(buf[:c.width])
	if c.signed {
		narrowed, err := c.narrow(uint64(signExtend(u, c.width)))
		return narrowed, c.width, err
	}
	narrowed, err := c.narrow(u)
	return narrowed, c.width, err
}

// narrow converts a 64-bit decoded value to the Go type matching this
// codec's declared width/signedness (uint8/uint16/uint32/uint64 or their
// signed counterparts), so Header.Get returns the same concrete type
// callers assign (binding predicates and field Builders compare against
// sized values, not a single blanket 64-bit type).
func (c intCodec) narrow(u uint64) (any, error) {
	switch {
	case c.signed && c.width == 1:
		return int8(u), nil
	case c.signed && c.width == 2:
		return int16(u), nil
	case c.signed && c.width == 4:
		return int32(u), nil
	case c.signed && c.width == 8:
		return int64(u), nil
	case !c.signed && c.width == 1:
		return uint8(u), nil
	case !c.signed && c.width == 2:
		return uint16(u), nil
	case !c.signed && c.width == 3:
		return uint32(u), nil
	case !c.signed && c.width == 4:
		return uint32(u), nil
	case !c.signed && c.width == 8:
		return uint64(u), nil
	default:
		return nil, fmt.Errorf("field: unsupported integer codec width %d signed=%v", c.width, c.signed)
	}
}

func (c intCodec) Write(value any, _ any) ([]byte, error) {
	u, err := toUint64(value)
	if err != nil {
		return nil, err
	}
	if bits := uint(c.width * 8); bits < 64 && u>>bits != 0 {
		// A negative value assigned to a signed field arrives sign-extended;
		// anything else with bits above the field's width does not fit.
		if !c.signed || signExtend(u&(1<<bits-1), c.width) != int64(u) {
			return nil, invalid("value %v out of range for a %d-byte integer field", value, c.width)
		}
	}
	buf := make([]byte, c.width)
	c.encodeUint(buf, u)
	return buf, nil
}

func (c intCodec) decodeUint(b []byte) uint64 {
	switch c.width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(c.order.Uint16(b))
	case 3:
		if c.order == binary.LittleEndian {
			return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16
		}
		return uint64(b[2]) | uint64(b[1])<<8 | uint64(b[0])<<16
	case 4:
		return uint64(c.order.Uint32(b))
	case 8:
		return c.order.Uint64(b)
	default:
		panic("field: unsupported integer width")
	}
}

func (c intCodec) encodeUint(b []byte, u uint64) {
	switch c.width {
	case 1:
		b[0] = byte(u)
	case 2:
		c.order.PutUint16(b, uint16(u))
	case 3:
		if c.order == binary.LittleEndian {
			b[0], b[1], b[2] = byte(u), byte(u>>8), byte(u>>16)
		} else {
			b[0], b[1], b[2] = byte(u>>16), byte(u>>8), byte(u)
		}
	case 4:
		c.order.PutUint32(b, uint32(u))
	case 8:
		c.order.PutUint64(b, u)
	default:
		panic("field: unsupported integer width")
	}
}

func signExtend(u uint64, width int) int64 {
	bits := uint(width * 8)
	shift := 64 - bits
	return int64(u<<shift) >> shift
}

// WholeReader is implemented by the variable-length codecs whose Read is
// parametrized by another field's value (Array's counter, LengthString's
// length, Opaque's bound). Header.Set canonicalizes an assignment through
// ReadAll instead of Read for these, since at assignment time the
// parametrizing field may not yet reflect the new value — its counter is
// reconciled later, by the kind's Calc hook.
type WholeReader interface {
	ReadAll(buf []byte) (any, error)
}

// EndianDeferred is an integer codec declared without an explicit byte
// order: header.Kind.DefineField resolves it against the kind's own endian
// (network order unless the kind declares otherwise), so a field list
// doesn't have to repeat BE/LE on every integer when the whole header shares
// one byte order.
type EndianDeferred interface {
	Codec
	// WithOrder returns the concrete codec this placeholder resolves to
	// under the given byte order.
	WithOrder(order binary.ByteOrder) Codec
}

type deferredInt struct {
	intCodec
}

// Uint16, Uint24, Uint32, Uint64 and Int16/Int32/Int64 are endian-deferred
// integer codecs: using one in a FieldDef adopts the declaring Kind's endian.
// Outside a Kind they behave as their big-endian counterparts.
var (
	Uint16 EndianDeferred = deferredInt{intCodec{width: 2, order: binary.BigEndian}}
	Uint24 EndianDeferred = deferredInt{intCodec{width: 3, order: binary.BigEndian}}
	Uint32 EndianDeferred = deferredInt{intCodec{width: 4, order: binary.BigEndian}}
	Uint64 EndianDeferred = deferredInt{intCodec{width: 8, order: binary.BigEndian}}
	Int16  EndianDeferred = deferredInt{intCodec{width: 2, signed: true, order: binary.BigEndian}}
	Int32  EndianDeferred = deferredInt{intCodec{width: 4, signed: true, order: binary.BigEndian}}
	Int64  EndianDeferred = deferredInt{intCodec{width: 8, signed: true, order: binary.BigEndian}}
)

func (d deferredInt) WithOrder(order binary.ByteOrder) Codec {
	return intCodec{width: d.width, signed: d.signed, order: order}
}

// toUint64 accepts the small union of Go types a header field is realistically
// assigned from: any sized int/uint, or a value already produced by Read.
func toUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint:
		return uint64(v), nil
	case int64:
		return uint64(v), nil
	case int32:
		return uint64(uint32(v)), nil
	case int16:
		return uint64(uint16(v)), nil
	case int8:
		return uint64(uint8(v)), nil
	case int:
		return uint64(v), nil
	default:
		return 0, invalid("cannot assign %T to integer field", value)
	}
}
